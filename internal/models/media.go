package models

import "time"

type MediaType string

const (
	MediaImage  MediaType = "image"
	MediaVideo  MediaType = "video"
	MediaIframe MediaType = "iframe"
)

// MediaItem is one carousel slide. StoragePath is set only for uploaded
// blobs; embeds and external URLs have none.
type MediaItem struct {
	ID          string    `bson:"_id" json:"id"`
	URL         string    `bson:"url" json:"url"`
	StoragePath string    `bson:"storage_path,omitempty" json:"storage_path,omitempty"`
	Type        MediaType `bson:"type,omitempty" json:"type,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	CreatedBy   string    `bson:"created_by" json:"created_by"`
}

// Kind reports the item type, treating an absent type as an image.
func (m MediaItem) Kind() MediaType {
	switch m.Type {
	case MediaVideo, MediaIframe:
		return m.Type
	default:
		return MediaImage
	}
}
