package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MediaCollection = "carousel_items"

type MediaRepository interface {
	ListNewestFirst(ctx context.Context) ([]models.MediaItem, error)
	Get(ctx context.Context, id string) (*models.MediaItem, error)
	Insert(ctx context.Context, m *models.MediaItem) error
	Delete(ctx context.Context, id string) error
}

type mediaRepo struct {
	col *mongo.Collection
}

func NewMediaRepo(db *mongo.Database) MediaRepository {
	return &mediaRepo{col: db.Collection(MediaCollection)}
}

func (r *mediaRepo) ListNewestFirst(ctx context.Context) ([]models.MediaItem, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.MediaItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	var m models.MediaItem
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepo) Insert(ctx context.Context, m *models.MediaItem) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

// Delete is idempotent: removing a missing item is not an error.
func (r *mediaRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
