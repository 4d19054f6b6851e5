package document

import (
	"context"
	"errors"
	"strings"
)

const (
	CollectionUsers = "users"
	CollectionTest  = "test-collection"
)

var ErrInvalidKey = errors.New("document collection and id are required")

// Document is an untyped record inside a named collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// SetOptions controls how Set combines new fields with a stored document.
type SetOptions struct {
	// Merge keeps stored fields that are not present in the new fields.
	Merge bool
}

// Store describes document persistence needs from use cases.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error
	List(ctx context.Context, collection string) ([]Document, error)
}

func ValidateKey(collection, id string) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Apply returns the fields that Set would store given the current fields.
func Apply(current, incoming map[string]any, opts SetOptions) map[string]any {
	out := make(map[string]any, len(current)+len(incoming))
	if opts.Merge {
		for k, v := range current {
			out[k] = v
		}
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
