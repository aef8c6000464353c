package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yoockh/dojoportal/internal/models"
	pgrepo "github.com/yoockh/dojoportal/internal/repositories/postgres"
	"github.com/yoockh/dojoportal/internal/utils"
)

type RecordRepo[T models.Record[T]] struct {
	mu   sync.Mutex
	seq  int
	rows map[string]recordRow[T]

	// Writes counts successful Insert, Update and Delete calls.
	Writes int
	Err    error
}

type recordRow[T any] struct {
	rec T
	seq int
}

var (
	_ pgrepo.RecordRepository[models.FundRecord]   = (*RecordRepo[models.FundRecord])(nil)
	_ pgrepo.RecordRepository[models.PlayerRecord] = (*RecordRepo[models.PlayerRecord])(nil)
)

func NewRecordRepo[T models.Record[T]]() *RecordRepo[T] {
	return &RecordRepo[T]{rows: map[string]recordRow[T]{}}
}

func (r *RecordRepo[T]) ListNewestFirst(context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	rows := make([]recordRow[T], 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := rows[i].rec.Created(), rows[j].rec.Created()
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row.rec
	}
	return out, nil
}

func (r *RecordRepo[T]) Insert(_ context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.seq++
	r.rows[(*rec).RecordID()] = recordRow[T]{rec: *rec, seq: r.seq}
	r.Writes++
	return nil
}

func (r *RecordRepo[T]) Update(_ context.Context, id string, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cur, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	cur.rec = (*rec).WithKey(id, cur.rec.Created())
	r.rows[id] = cur
	r.Writes++
	return nil
}

func (r *RecordRepo[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.rows, id)
	r.Writes++
	return nil
}

// Get returns the stored record with id.
func (r *RecordRepo[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	return row.rec, ok
}
