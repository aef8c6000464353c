package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client    *gcs.Client
	bucket    string
	signedTTL time.Duration
}

// NewGCSStore opens a client. With signedTTL > 0 objects stay private and
// URL returns V4 signed URLs; otherwise uploads are made public-read.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string, signedTTL time.Duration) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: c, bucket: bucket, signedTTL: signedTTL}, nil
}

func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	if s.signedTTL <= 0 {
		if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
			return "", err
		}
	}

	return objectName, nil
}

func (s *GCSStore) URL(ctx context.Context, handle string) (string, error) {
	if s.signedTTL > 0 {
		return s.client.Bucket(s.bucket).SignedURL(handle, &gcs.SignedURLOptions{
			Scheme:  gcs.SigningSchemeV4,
			Method:  "GET",
			Expires: time.Now().Add(s.signedTTL),
		})
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, escapeObjectPath(handle)), nil
}

func (s *GCSStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func escapeObjectPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
