package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yoockh/dojoportal/internal/models"
	mongorepo "github.com/yoockh/dojoportal/internal/repositories/mongo"
	"github.com/yoockh/dojoportal/internal/utils"
)

type MediaRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]mediaRow

	InsertErr error
	DeleteErr error
}

type mediaRow struct {
	item models.MediaItem
	seq  int
}

var _ mongorepo.MediaRepository = (*MediaRepo)(nil)

func NewMediaRepo() *MediaRepo {
	return &MediaRepo{rows: map[string]mediaRow{}}
}

func (r *MediaRepo) ListNewestFirst(context.Context) ([]models.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]mediaRow, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].item.CreatedAt.Equal(rows[j].item.CreatedAt) {
			return rows[i].item.CreatedAt.After(rows[j].item.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]models.MediaItem, len(rows))
	for i, row := range rows {
		out[i] = row.item
	}
	return out, nil
}

func (r *MediaRepo) Get(_ context.Context, id string) (*models.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	m := row.item
	return &m, nil
}

func (r *MediaRepo) Insert(_ context.Context, m *models.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return r.InsertErr
	}
	r.seq++
	r.rows[m.ID] = mediaRow{item: *m, seq: r.seq}
	return nil
}

func (r *MediaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	delete(r.rows, id)
	return nil
}

func (r *MediaRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
