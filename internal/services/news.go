package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"relief-backend/internal/geo"
	"relief-backend/internal/models"
	"relief-backend/internal/repository"
)

const (
	// DefaultNewsRadiusKm is the search radius used when none is given
	DefaultNewsRadiusKm = 5.0

	newsMaxAge   = 72 * time.Hour
	newsMaxItems = 100
)

// NewsStore is the persistence needed by NewsService
type NewsStore interface {
	Create(ctx context.Context, n *models.News) error
	List(ctx context.Context) ([]*models.News, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.News, error)
	GetOwned(ctx context.Context, id, userID int64) (*models.News, error)
	Update(ctx context.Context, n *models.News) error
	Delete(ctx context.Context, id int64) error
}

// NewsService handles news-related business logic
type NewsService struct {
	news     NewsStore
	uploader ImageUploader
	local    LocalImages
	now      func() time.Time
}

// NewNewsService creates a new news service
func NewNewsService(news NewsStore, uploader ImageUploader, local LocalImages) *NewsService {
	return &NewsService{
		news:     news,
		uploader: uploader,
		local:    local,
		now:      time.Now,
	}
}

// NewsInput holds the form fields of a news create or update
type NewsInput struct {
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
}

// ListNearby returns recent news within dist km, closest first. Each item's
// distance is set relative to the query point. Items older than three days
// are dropped after sorting and the result is capped at 100.
func (s *NewsService) ListNearby(ctx context.Context, latitude, longitude, dist float64) ([]*models.News, error) {
	items, err := s.news.List(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*models.News, 0)
	for _, item := range items {
		d := geo.Haversine(latitude, longitude, item.Latitude, item.Longitude)
		if d <= dist {
			item.Distance = d
			nearby = append(nearby, item)
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	now := s.now().UTC()
	recent := nearby[:0]
	for _, item := range nearby {
		if now.Sub(item.CreatedAt) <= newsMaxAge {
			recent = append(recent, item)
		}
	}
	if len(recent) > newsMaxItems {
		recent = recent[:newsMaxItems]
	}

	if len(recent) == 0 {
		return nil, notFound("No news found within the specified distance.")
	}
	return recent, nil
}

// Create uploads the image and stores a news item owned by user
func (s *NewsService) Create(ctx context.Context, user *models.User, in NewsInput, img *Image) (*models.News, error) {
	now := s.now().UTC()

	url, err := requireImage(ctx, s.uploader, "news", img, now)
	if err != nil {
		return nil, err
	}

	item := &models.News{
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Images:      &url,
		UserID:      &user.ID,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Distance:    0,
	}

	if err := s.news.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// ListMine returns the caller's news, newest first
func (s *NewsService) ListMine(ctx context.Context, user *models.User) ([]*models.News, error) {
	items, err := s.news.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("No news found for this user.")
	}
	return items, nil
}

// Update overwrites a news item owned by user. A new image is written locally.
func (s *NewsService) Update(ctx context.Context, user *models.User, id int64, in NewsInput, img *Image) (*models.News, error) {
	item, err := s.getOwned(ctx, user, id, "News not found or not authorized to update.")
	if err != nil {
		return nil, err
	}

	if img != nil && len(img.Data) > 0 {
		path, err := s.local.Save(img.Filename, img.Data)
		if err != nil {
			return nil, err
		}
		item.Images = &path
	}

	item.Title = in.Title
	item.Description = in.Description
	item.Latitude = in.Latitude
	item.Longitude = in.Longitude
	item.UpdatedAt = s.now().UTC()

	if err := s.news.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes a news item owned by user
func (s *NewsService) Delete(ctx context.Context, user *models.User, id int64) error {
	if _, err := s.getOwned(ctx, user, id, "News not found or not authorized to delete."); err != nil {
		return err
	}
	return s.news.Delete(ctx, id)
}

func (s *NewsService) getOwned(ctx context.Context, user *models.User, id int64, msg string) (*models.News, error) {
	item, err := s.news.GetOwned(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(msg)
		}
		return nil, err
	}
	return item, nil
}
