package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
)

const (
	objectsDir = "objects"
	metaDir    = "meta"
	metaSuffix = ".json"
)

// DiskStore keeps each object as a file under root/objects and its JSON
// metadata under root/meta, so no object path can address a metadata file.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	for _, dir := range []string{objectsDir, metaDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", root, err)
		}
	}
	return &DiskStore{root: root}, nil
}

type objectMeta struct {
	ContentType string    `json:"content_type"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *DiskStore) Put(_ context.Context, obj objectstore.Object) error {
	path, err := cleanPath(obj.Path)
	if err != nil {
		return err
	}
	target, metaTarget := s.filePath(path), s.metaPath(path)
	for _, dir := range []string{filepath.Dir(target), filepath.Dir(metaTarget)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create object dir: %w", err)
		}
	}

	meta, err := sonic.Marshal(objectMeta{ContentType: obj.ContentType, UpdatedAt: obj.UpdatedAt})
	if err != nil {
		return fmt.Errorf("encode object meta: %w", err)
	}
	if err := writeFileAtomic(target, obj.Data); err != nil {
		return fmt.Errorf("write object %s: %w", path, err)
	}
	if err := writeFileAtomic(metaTarget, meta); err != nil {
		return fmt.Errorf("write object meta %s: %w", path, err)
	}
	return nil
}

func (s *DiskStore) Get(_ context.Context, path string) (objectstore.Object, bool, error) {
	path, err := cleanPath(path)
	if err != nil {
		return objectstore.Object{}, false, err
	}
	target := s.filePath(path)

	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return objectstore.Object{}, false, nil
		}
		return objectstore.Object{}, false, fmt.Errorf("read object %s: %w", path, err)
	}

	var meta objectMeta
	if raw, err := os.ReadFile(s.metaPath(path)); err == nil {
		_ = sonic.Unmarshal(raw, &meta)
	}
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}

	return objectstore.Object{
		Path:        path,
		ContentType: meta.ContentType,
		Data:        data,
		UpdatedAt:   meta.UpdatedAt,
	}, true, nil
}

func (s *DiskStore) Exists(_ context.Context, path string) (bool, error) {
	path, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(s.filePath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func (s *DiskStore) filePath(path string) string {
	return filepath.Join(s.root, objectsDir, filepath.FromSlash(path))
}

func (s *DiskStore) metaPath(path string) string {
	return filepath.Join(s.root, metaDir, filepath.FromSlash(path)+metaSuffix)
}

func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
