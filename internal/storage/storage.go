package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (handle string, err error)
}

// Resolver turns an upload handle into a URL a browser can fetch.
type Resolver interface {
	URL(ctx context.Context, handle string) (string, error)
}

type Deleter interface {
	Delete(ctx context.Context, objectName string) error
}

// BlobStore is the full blob contract used by the carousel.
type BlobStore interface {
	Uploader
	Resolver
	Deleter
}
