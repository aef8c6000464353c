// Package memory holds in-process repository implementations used by
// tests and by DATA_BACKEND=memory local runs.
package memory

import (
	"context"
	"sync"

	"github.com/yoockh/dojoportal/internal/models"
	pgrepo "github.com/yoockh/dojoportal/internal/repositories/postgres"
	"github.com/yoockh/dojoportal/internal/utils"
)

type ProfileRepo struct {
	mu   sync.Mutex
	rows map[string]models.Profile

	// Err, when set, is returned by every call.
	Err error
}

var _ pgrepo.ProfileRepository = (*ProfileRepo)(nil)

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{rows: map[string]models.Profile{}}
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepo) CreateIfAbsent(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[p.UserID]; !ok {
		r.rows[p.UserID] = *p
	}
	return nil
}

func (r *ProfileRepo) Upsert(_ context.Context, p *models.Profile, columns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cur, ok := r.rows[p.UserID]
	if !ok {
		r.rows[p.UserID] = *p
		return nil
	}
	for _, c := range columns {
		switch c {
		case "email":
			cur.Email = p.Email
		case "role":
			cur.Role = p.Role
		case "updated_at":
			cur.UpdatedAt = p.UpdatedAt
		}
	}
	r.rows[p.UserID] = cur
	return nil
}

// Put stores p as-is.
func (r *ProfileRepo) Put(p models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.UserID] = p
}
