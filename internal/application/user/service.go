package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/go-places-api/internal/domain"
	s3infra "github.com/go-places-api/internal/infrastructure/s3"
	"github.com/go-places-api/internal/pkg/id"
	"github.com/go-places-api/internal/pkg/password"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName         = "name"
	fieldPasswordHash = "password_hash"
	fieldIsAdmin      = "is_admin"
	fieldPhotoURL     = "photo_url"
)

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, allowAdminChange bool) (*domain.User, error)
	UpdatePhoto(ctx context.Context, userID, filename string, r io.Reader) (*domain.User, error)
	PhotoURL(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
	SavePlace(ctx context.Context, userID, placeID string) error
	UnsavePlace(ctx context.Context, userID, placeID string) error
	ListSaved(ctx context.Context, userID string) ([]domain.Place, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type placeStore interface {
	Get(ctx context.Context, placeID string) (*domain.Place, error)
}

type savedStore interface {
	Put(ctx context.Context, sp *domain.SavedPlace) error
	Exists(ctx context.Context, userID, placeID string) (bool, error)
	Delete(ctx context.Context, userID, placeID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.SavedPlace, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// downloadURLTTL bounds how long a handed-out photo link stays valid.
const downloadURLTTL = 15 * time.Minute

type service struct {
	repo    userStore
	places  placeStore
	saved   savedStore
	objects objectStore
}

type ServiceDeps struct {
	UserRepo    userStore
	PlaceRepo   placeStore
	SavedRepo   savedStore
	ObjectStore objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:    deps.UserRepo,
		places:  deps.PlaceRepo,
		saved:   deps.SavedRepo,
		objects: deps.ObjectStore,
	}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateProfile applies a partial self-service update. Granting or dropping
// the admin flag is only honored when allowAdminChange is true, which the
// transport layer decides through the authorization gate.
func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, allowAdminChange bool) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = hash
	}
	if req.IsAdmin != nil {
		if !allowAdminChange {
			return nil, fmt.Errorf("changing the admin flag requires the server secret: %w", domain.ErrForbidden)
		}
		updates[fieldIsAdmin] = *req.IsAdmin
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdatePhoto uploads the new profile photo, swaps the URL on the record,
// and removes the previous object. A failed cleanup is logged, not surfaced.
func (s *service) UpdatePhoto(ctx context.Context, userID, filename string, r io.Reader) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("users/%s/%s%s", userID, id.New(), path.Ext(filename))
	url, err := s.objects.Upload(ctx, key, r, s3infra.DetectContentType(filename))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldPhotoURL: url}); err != nil {
		return nil, err
	}
	if old := s3infra.KeyFromURL(u.PhotoURL); old != "" {
		if err := s.objects.Delete(ctx, old); err != nil {
			slog.Warn("failed to delete old profile photo", "user_id", userID, "key", old, "err", err)
		}
	}
	u.PhotoURL = url
	u.UpdatedAt = time.Now().UTC()
	return u, nil
}

// PhotoURL returns a short-lived download URL for the user's profile photo.
func (s *service) PhotoURL(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	key := s3infra.KeyFromURL(u.PhotoURL)
	if key == "" {
		return "", fmt.Errorf("user has no photo: %w", domain.ErrNotFound)
	}
	return s.objects.PresignedURL(ctx, key, downloadURLTTL)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

func (s *service) SavePlace(ctx context.Context, userID, placeID string) error {
	if _, err := s.places.Get(ctx, placeID); err != nil {
		return err
	}
	exists, err := s.saved.Exists(ctx, userID, placeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("place already saved: %w", domain.ErrConflict)
	}
	return s.saved.Put(ctx, &domain.SavedPlace{
		UserID:    userID,
		PlaceID:   placeID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *service) UnsavePlace(ctx context.Context, userID, placeID string) error {
	exists, err := s.saved.Exists(ctx, userID, placeID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("place not in saved list: %w", domain.ErrNotFound)
	}
	return s.saved.Delete(ctx, userID, placeID)
}

func (s *service) ListSaved(ctx context.Context, userID string) ([]domain.Place, error) {
	links, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	places := make([]domain.Place, 0, len(links))
	for _, l := range links {
		p, err := s.places.Get(ctx, l.PlaceID)
		if err != nil {
			// Place deleted since it was saved; skip the dangling link.
			continue
		}
		places = append(places, *p)
	}
	return places, nil
}
