// Package records implements the admin ledgers (funds, players): a generic
// write service and a per-console editor that mirrors the live collection.
package records

import (
	"time"

	"github.com/yoockh/dojoportal/internal/models"
)

// Kind describes one record shape. T is the stored record, D the raw form
// draft.
type Kind[T models.Record[T], D any] struct {
	// Topic is the realtime topic and collection name.
	Topic string
	// Label names a single record in messages, ex: "fund".
	Label string

	// Normalize trims the draft and rejects missing required fields.
	Normalize func(D) (D, error)
	// Build makes a record from a normalized draft.
	Build func(id string, d D, createdAt, updatedAt time.Time) T
	// DraftOf loads a record back into a form draft.
	DraftOf func(T) D
}
