package models

import "time"

// Record is implemented by the admin-managed ledger types. WithKey returns
// a copy carrying the given id and creation time, which an update must
// never change.
type Record[T any] interface {
	RecordID() string
	Created() time.Time
	WithKey(id string, createdAt time.Time) T
}

func (f FundRecord) RecordID() string   { return f.ID }
func (f FundRecord) Created() time.Time { return f.CreatedAt }

func (f FundRecord) WithKey(id string, createdAt time.Time) FundRecord {
	f.ID = id
	f.CreatedAt = createdAt
	return f
}

func (p PlayerRecord) RecordID() string   { return p.ID }
func (p PlayerRecord) Created() time.Time { return p.CreatedAt }

func (p PlayerRecord) WithKey(id string, createdAt time.Time) PlayerRecord {
	p.ID = id
	p.CreatedAt = createdAt
	return p
}
