package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
	"github.com/riskibarqy/paintball-league/internal/domain/profile"
	"github.com/riskibarqy/paintball-league/internal/platform/cache"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
)

type ProfileServiceConfig struct {
	ReadTimeout    time.Duration
	MaxPictureSize int64
}

type ProfileService struct {
	docs     document.Store
	objects  objectstore.Store
	urls     ObjectURLResolver
	urlCache *cache.Store
	cfg      ProfileServiceConfig
	logger   *logging.Logger
	now      func() time.Time
}

// NewProfileService wires profile reads. urlCache may be nil.
func NewProfileService(
	docs document.Store,
	objects objectstore.Store,
	urls ObjectURLResolver,
	urlCache *cache.Store,
	cfg ProfileServiceConfig,
	logger *logging.Logger,
) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.MaxPictureSize <= 0 {
		cfg.MaxPictureSize = 5 << 20
	}
	return &ProfileService{
		docs:     docs,
		objects:  objects,
		urls:     urls,
		urlCache: urlCache,
		cfg:      cfg,
		logger:   logger.Named("profile"),
		now:      time.Now,
	}
}

// Fetch always returns a fully populated profile. Lookup failures are logged
// and replaced by defaults.
func (s *ProfileService) Fetch(ctx context.Context, userID string) profile.Profile {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Fetch")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Default()
	}

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	doc, exists, err := s.docs.Get(readCtx, document.CollectionUsers, userID)
	cancel()
	if err != nil {
		s.logger.WarnContext(ctx, "profile document read failed, using defaults", "user_id", userID, "error", err)
		return profile.Default()
	}
	if !exists {
		s.logger.DebugContext(ctx, "profile document not found, using defaults", "user_id", userID)
		return profile.Default()
	}

	return profile.FromDocument(doc.Fields, s.pictureURL(ctx, userID))
}

func (s *ProfileService) pictureURL(ctx context.Context, userID string) string {
	if s.urls == nil {
		return ""
	}
	path := profile.PicturePath(userID)
	load := func(ctx context.Context) (any, error) {
		return s.urls.DownloadURL(ctx, path)
	}

	var (
		v   any
		err error
	)
	if s.urlCache != nil {
		v, err = s.urlCache.GetOrLoad(ctx, pictureCacheKey(userID), load)
	} else {
		v, err = load(ctx)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "profile picture lookup failed, using default", "user_id", userID, "path", path, "error", err)
		return ""
	}
	url, _ := v.(string)
	return url
}

type UploadPictureInput struct {
	UserID string
	Data   []byte
}

// PictureContentTypes are the raster formats accepted for profile pictures.
var PictureContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// pictureContentType sniffs data; the client's declared type is ignored.
func pictureContentType(data []byte) (string, error) {
	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if _, ok := PictureContentTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: picture must be png, jpeg, gif or webp, got %s", ErrInvalidInput, contentType)
	}
	return contentType, nil
}

// UploadPicture stores the user's 200x200 picture and returns its download URL.
func (s *ProfileService) UploadPicture(ctx context.Context, input UploadPictureInput) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UploadPicture")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if len(input.Data) == 0 {
		return "", fmt.Errorf("%w: picture is empty", ErrInvalidInput)
	}
	if int64(len(input.Data)) > s.cfg.MaxPictureSize {
		return "", fmt.Errorf("%w: picture exceeds %d bytes", ErrPayloadTooLarge, s.cfg.MaxPictureSize)
	}

	contentType, err := pictureContentType(input.Data)
	if err != nil {
		return "", err
	}

	path := profile.PicturePath(input.UserID)
	err = s.objects.Put(ctx, objectstore.Object{
		Path:        path,
		ContentType: contentType,
		Data:        bytes.Clone(input.Data),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: store profile picture: %v", ErrDependencyUnavailable, err)
	}
	if s.urlCache != nil {
		s.urlCache.Delete(ctx, pictureCacheKey(input.UserID))
	}

	url, err := s.urls.DownloadURL(ctx, path)
	if err != nil {
		return "", fmt.Errorf("resolve profile picture url: %w", err)
	}
	s.logger.InfoContext(ctx, "profile picture updated", "user_id", input.UserID, "bytes", len(input.Data))
	return url, nil
}

// Picture returns a stored object for download.
func (s *ProfileService) Picture(ctx context.Context, path string) (objectstore.Object, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Picture")
	defer span.End()

	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return objectstore.Object{}, fmt.Errorf("%w: invalid object path", ErrInvalidInput)
	}
	obj, exists, err := s.objects.Get(ctx, path)
	if err != nil {
		return objectstore.Object{}, fmt.Errorf("%w: get object: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return objectstore.Object{}, fmt.Errorf("%w: object %s", ErrNotFound, path)
	}
	return obj, nil
}

func pictureCacheKey(userID string) string {
	return "profile:picture:" + userID
}
