package place

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-places-api/internal/domain"
	s3infra "github.com/go-places-api/internal/infrastructure/s3"
	"github.com/go-places-api/internal/pkg/geo"
	"github.com/go-places-api/internal/pkg/id"
)

const (
	fieldName          = "name"
	fieldNameLower     = "name_lower"
	fieldDescription   = "description"
	fieldLocationName  = "location_name"
	fieldLatitude      = "latitude"
	fieldLongitude     = "longitude"
	fieldImageURL      = "image_url"
	fieldAverageRating = "average_rating"
)

type Service interface {
	List(ctx context.Context, limit int, cursor, search string, minRating *float64) ([]domain.Place, string, error)
	Get(ctx context.Context, placeID string, userLat, userLon *float64) (*domain.Place, error)
	Create(ctx context.Context, req domain.CreatePlaceRequest) (*domain.Place, error)
	Update(ctx context.Context, placeID string, req domain.UpdatePlaceRequest) (*domain.Place, error)
	UpdateImage(ctx context.Context, placeID, filename string, r io.Reader) (*domain.Place, error)
	ImageURL(ctx context.Context, placeID string) (string, error)
	Delete(ctx context.Context, placeID string) error
	Rate(ctx context.Context, userID, placeID string, req domain.CreateRatingRequest) (*domain.Rating, error)
	Ratings(ctx context.Context, placeID string) ([]domain.Rating, error)
	RatingsByUser(ctx context.Context, userID string) ([]domain.Rating, error)
}

type placeStore interface {
	Put(ctx context.Context, p *domain.Place) error
	Get(ctx context.Context, placeID string) (*domain.Place, error)
	Update(ctx context.Context, placeID string, updates map[string]interface{}) error
	Delete(ctx context.Context, placeID string) error
	ScanPage(ctx context.Context, limit int32, cursor, search string, minRating *float64) ([]domain.Place, string, error)
}

type ratingStore interface {
	Put(ctx context.Context, r *domain.Rating) error
	ListByPlace(ctx context.Context, placeID string) ([]domain.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Rating, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// downloadURLTTL bounds how long a handed-out image link stays valid.
const downloadURLTTL = 15 * time.Minute

type service struct {
	repo    placeStore
	ratings ratingStore
	objects objectStore
}

type ServiceDeps struct {
	PlaceRepo   placeStore
	RatingRepo  ratingStore
	ObjectStore objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:    deps.PlaceRepo,
		ratings: deps.RatingRepo,
		objects: deps.ObjectStore,
	}
}

func (s *service) List(ctx context.Context, limit int, cursor, search string, minRating *float64) ([]domain.Place, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor, search, minRating)
}

// Get returns the place, with the distance from the caller's coordinates
// filled in when both are supplied.
func (s *service) Get(ctx context.Context, placeID string, userLat, userLon *float64) (*domain.Place, error) {
	p, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if userLat != nil && userLon != nil {
		d := geo.DistanceKm(p.Latitude, p.Longitude, *userLat, *userLon)
		p.Distance = &d
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, req domain.CreatePlaceRequest) (*domain.Place, error) {
	now := time.Now().UTC()
	p := &domain.Place{
		PlaceID:      id.New(),
		Name:         req.Name,
		NameLower:    strings.ToLower(req.Name),
		Description:  req.Description,
		LocationName: req.LocationName,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		ImageURL:     req.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, placeID string, req domain.UpdatePlaceRequest) (*domain.Place, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
		updates[fieldNameLower] = strings.ToLower(*req.Name)
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.LocationName != nil {
		updates[fieldLocationName] = *req.LocationName
	}
	if req.Latitude != nil {
		updates[fieldLatitude] = *req.Latitude
	}
	if req.Longitude != nil {
		updates[fieldLongitude] = *req.Longitude
	}
	if req.ImageURL != nil {
		updates[fieldImageURL] = *req.ImageURL
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, placeID)
	}
	if _, err := s.repo.Get(ctx, placeID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, placeID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, placeID)
}

// UpdateImage uploads the new image, swaps the URL, and removes the old
// object. A failed cleanup is logged, not surfaced.
func (s *service) UpdateImage(ctx context.Context, placeID, filename string, r io.Reader) (*domain.Place, error) {
	p, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("places/%s/%s%s", placeID, id.New(), path.Ext(filename))
	url, err := s.objects.Upload(ctx, key, r, s3infra.DetectContentType(filename))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, placeID, map[string]interface{}{fieldImageURL: url}); err != nil {
		return nil, err
	}
	if old := s3infra.KeyFromURL(p.ImageURL); old != "" {
		if err := s.objects.Delete(ctx, old); err != nil {
			slog.Warn("failed to delete old place image", "place_id", placeID, "key", old, "err", err)
		}
	}
	p.ImageURL = url
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// ImageURL returns a short-lived download URL for the place's image.
func (s *service) ImageURL(ctx context.Context, placeID string) (string, error) {
	p, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return "", err
	}
	key := s3infra.KeyFromURL(p.ImageURL)
	if key == "" {
		return "", fmt.Errorf("place has no image: %w", domain.ErrNotFound)
	}
	return s.objects.PresignedURL(ctx, key, downloadURLTTL)
}

func (s *service) Delete(ctx context.Context, placeID string) error {
	if _, err := s.repo.Get(ctx, placeID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, placeID)
}

// Rate records a rating and recomputes the place's stored average.
func (s *service) Rate(ctx context.Context, userID, placeID string, req domain.CreateRatingRequest) (*domain.Rating, error) {
	if _, err := s.repo.Get(ctx, placeID); err != nil {
		return nil, err
	}
	rating := &domain.Rating{
		RatingID:  id.New(),
		PlaceID:   placeID,
		UserID:    userID,
		Rating:    req.Rating,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ratings.Put(ctx, rating); err != nil {
		return nil, err
	}
	if err := s.refreshAverage(ctx, placeID); err != nil {
		slog.Warn("failed to refresh average rating", "place_id", placeID, "err", err)
	}
	return rating, nil
}

func (s *service) Ratings(ctx context.Context, placeID string) ([]domain.Rating, error) {
	return s.ratings.ListByPlace(ctx, placeID)
}

func (s *service) RatingsByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	return s.ratings.ListByUser(ctx, userID)
}

func (s *service) refreshAverage(ctx context.Context, placeID string) error {
	all, err := s.ratings.ListByPlace(ctx, placeID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return nil
	}
	var sum float64
	for _, r := range all {
		sum += r.Rating
	}
	return s.repo.Update(ctx, placeID, map[string]interface{}{
		fieldAverageRating: sum / float64(len(all)),
	})
}
