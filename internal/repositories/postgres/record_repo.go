package postgres

import (
	"context"

	"github.com/yoockh/dojoportal/internal/utils"
	"gorm.io/gorm"
)

// RecordRepository persists one admin-managed record table (funds,
// players). Lists are newest first.
type RecordRepository[T any] interface {
	ListNewestFirst(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, rec *T) error
	// Update overwrites every column except id and created_at.
	Update(ctx context.Context, id string, rec *T) error
	Delete(ctx context.Context, id string) error
}

type recordRepo[T any] struct {
	db *gorm.DB
}

func NewRecordRepo[T any](db *gorm.DB) RecordRepository[T] {
	return &recordRepo[T]{db: db}
}

func (r *recordRepo[T]) ListNewestFirst(ctx context.Context) ([]T, error) {
	var out []T
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *recordRepo[T]) Insert(ctx context.Context, rec *T) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recordRepo[T]) Update(ctx context.Context, id string, rec *T) error {
	// Select("*") so zero values (amount 0, null age) are written too
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *recordRepo[T]) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(new(T)).Error
}
