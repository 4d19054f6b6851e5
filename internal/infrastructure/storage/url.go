package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
)

// DownloadPathPrefix is where the HTTP API serves stored objects.
const DownloadPathPrefix = "/v1/storage/"

// URLResolver builds public download URLs for objects that exist.
type URLResolver struct {
	store   objectstore.Store
	baseURL string
}

func NewURLResolver(store objectstore.Store, baseURL string) *URLResolver {
	return &URLResolver{store: store, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (r *URLResolver) DownloadURL(ctx context.Context, objectPath string) (string, error) {
	objectPath, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	exists, err := r.store.Exists(ctx, objectPath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", objectstore.ErrNotFound, objectPath)
	}

	segments := strings.Split(objectPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return r.baseURL + DownloadPathPrefix + strings.Join(segments, "/"), nil
}

func cleanPath(raw string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", fmt.Errorf("object path is required")
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object path %q", raw)
	}
	return cleaned, nil
}
