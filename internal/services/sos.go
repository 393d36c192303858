package services

import (
	"context"
	"errors"
	"time"

	"relief-backend/internal/geo"
	"relief-backend/internal/models"
	"relief-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultSOSRadiusKm is the admin search radius used when none is given
	DefaultSOSRadiusKm = 10.0

	sosDefaultWindowDays = 2
	dateLayout           = "2006-01-02"
)

// SOSStore is the persistence needed by SOSService
type SOSStore interface {
	Create(ctx context.Context, s *models.SOS) error
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.SOS, error)
	ListResolved(ctx context.Context) ([]*models.SOS, error)
	GetByID(ctx context.Context, id int64) (*models.SOS, error)
	MarkResolved(ctx context.Context, id int64, at time.Time) error
}

// SOSNotifier is told about SOS lifecycle changes after they are stored.
// Implementations must not block the request for long.
type SOSNotifier interface {
	SOSRaised(ctx context.Context, alert *models.SOS)
	SOSResolved(ctx context.Context, alert *models.SOS)
}

// SOSService handles distress signals
type SOSService struct {
	alerts    SOSStore
	notifiers []SOSNotifier
	now       func() time.Time
}

// NewSOSService creates a new SOS service
func NewSOSService(alerts SOSStore, notifiers ...SOSNotifier) *SOSService {
	return &SOSService{
		alerts:    alerts,
		notifiers: notifiers,
		now:       time.Now,
	}
}

// SOSQuery filters active alerts. Dates use YYYY-MM-DD; the default window
// runs from the start of the day two days ago until now.
type SOSQuery struct {
	AdminLatitude  *float64
	AdminLongitude *float64
	Radius         float64
	StartDate      string
	EndDate        string
}

// Raise stores a new unresolved alert. Anonymous callers are allowed and
// a non-positive person count is stored as 1.
func (s *SOSService) Raise(ctx context.Context, identity Identity, persons int, latitude, longitude float64) (*models.SOS, error) {
	if persons <= 0 {
		persons = 1
	}

	alert := &models.SOS{
		CreatedAt: s.now().UTC(),
		Latitude:  latitude,
		Longitude: longitude,
		Persons:   &persons,
	}
	if user, ok := identity.User(); ok {
		alert.UserID = &user.ID
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	log.Info().
		Int64("sos_id", alert.ID).
		Bool("anonymous", identity.IsAnonymous()).
		Int("persons", persons).
		Msg("SOS raised")

	for _, n := range s.notifiers {
		n.SOSRaised(ctx, alert)
	}

	return alert, nil
}

// ListActive returns unresolved alerts created within the date range. With
// admin coordinates only alerts within Radius km are kept and each carries
// its distance rounded to two decimals. An empty result is not an error.
func (s *SOSService) ListActive(ctx context.Context, q SOSQuery) ([]*models.SOS, error) {
	from, to, err := s.window(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	if q.Radius < 0 {
		return nil, badRequest("radius must not be negative")
	}
	radius := q.Radius

	alerts, err := s.alerts.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	withinRadius := make([]*models.SOS, 0, len(alerts))
	for _, alert := range alerts {
		if q.AdminLatitude != nil && q.AdminLongitude != nil {
			d := geo.Round2(geo.Haversine(*q.AdminLatitude, *q.AdminLongitude, alert.Latitude, alert.Longitude))
			if d > radius {
				continue
			}
			alert.Distance = &d
		}
		withinRadius = append(withinRadius, alert)
	}

	active := make([]*models.SOS, 0, len(withinRadius))
	for _, alert := range withinRadius {
		if !alert.Resolved {
			active = append(active, alert)
		}
	}

	return active, nil
}

// Resolve marks an alert resolved. Resolving twice is an error.
//
// The check and the write are separate statements without a lock, so two
// concurrent calls for the same id can both pass the check and both succeed.
func (s *SOSService) Resolve(ctx context.Context, id int64) (*models.SOS, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("SOS alert not found")
		}
		return nil, err
	}

	if alert.Resolved {
		return nil, badRequest("SOS alert already resolved")
	}

	now := s.now().UTC()
	if err := s.alerts.MarkResolved(ctx, id, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("SOS alert not found")
		}
		return nil, err
	}
	alert.Resolved = true
	alert.ResolvedAt = &now

	for _, n := range s.notifiers {
		n.SOSResolved(ctx, alert)
	}

	return alert, nil
}

// ListResolved returns every resolved alert
func (s *SOSService) ListResolved(ctx context.Context) ([]*models.SOS, error) {
	alerts, err := s.alerts.ListResolved(ctx)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []*models.SOS{}
	}
	return alerts, nil
}

func (s *SOSService) window(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		now := s.now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return today.AddDate(0, 0, -sosDefaultWindowDays), now, nil
	}

	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, badRequest("start_date must be in YYYY-MM-DD format")
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, badRequest("end_date must be in YYYY-MM-DD format")
	}

	// the end date is inclusive
	return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
