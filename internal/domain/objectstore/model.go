package objectstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

type Object struct {
	Path        string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// Store holds opaque objects addressed by slash separated paths.
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, path string) (Object, bool, error)
	Exists(ctx context.Context, path string) (bool, error)
}
