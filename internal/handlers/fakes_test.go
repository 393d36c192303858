package handlers

import (
	"context"
	"time"

	"relief-backend/internal/models"
	"relief-backend/internal/repository"
)

type memUsers struct {
	rows []*models.User
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range m.rows {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = int64(len(m.rows) + 1)
	cp := *user
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdateLocation(_ context.Context, userID int64, latitude, longitude float64) error {
	for _, u := range m.rows {
		if u.ID == userID {
			u.Latitude, u.Longitude = &latitude, &longitude
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) UpdatePushToken(_ context.Context, userID int64, pushToken *string) error {
	for _, u := range m.rows {
		if u.ID == userID {
			u.PushToken = pushToken
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) AdminPushTokens(context.Context) ([]string, error) {
	return nil, nil
}

type memSOS struct {
	rows []*models.SOS
}

func (m *memSOS) Create(_ context.Context, s *models.SOS) error {
	s.ID = int64(len(m.rows) + 1)
	cp := *s
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memSOS) ListCreatedBetween(_ context.Context, from, to time.Time) ([]*models.SOS, error) {
	var out []*models.SOS
	for _, r := range m.rows {
		if !r.CreatedAt.Before(from) && !r.CreatedAt.After(to) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSOS) ListResolved(context.Context) ([]*models.SOS, error) {
	var out []*models.SOS
	for _, r := range m.rows {
		if r.Resolved {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSOS) GetByID(_ context.Context, id int64) (*models.SOS, error) {
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSOS) MarkResolved(_ context.Context, id int64, at time.Time) error {
	for _, r := range m.rows {
		if r.ID == id {
			r.Resolved, r.ResolvedAt = true, &at
			return nil
		}
	}
	return repository.ErrNotFound
}

type memShelters struct {
	rows []*models.Shelter
}

func (m *memShelters) Create(_ context.Context, s *models.Shelter) error {
	s.ID = int64(len(m.rows) + 1)
	cp := *s
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memShelters) List(context.Context) ([]*models.Shelter, error) {
	return m.rows, nil
}

func (m *memShelters) ListByUser(_ context.Context, userID int64) ([]*models.Shelter, error) {
	var out []*models.Shelter
	for _, r := range m.rows {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memShelters) GetOwned(_ context.Context, id, userID int64) (*models.Shelter, error) {
	for _, r := range m.rows {
		if r.ID == id && r.UserID != nil && *r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memShelters) Update(_ context.Context, s *models.Shelter) error {
	for i, r := range m.rows {
		if r.ID == s.ID {
			cp := *s
			m.rows[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memShelters) Delete(_ context.Context, id int64) error {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubUploader struct {
	err error
}

func (s stubUploader) Upload(_ context.Context, _ []byte, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

type stubLocal struct{}

func (stubLocal) Save(filename string, _ []byte) (string, error) { return "images/" + filename, nil }
func (stubLocal) Remove(string) error                            { return nil }

type memFood struct {
	rows []*models.FoodRegion
}

func (m *memFood) Create(_ context.Context, f *models.FoodRegion) error {
	f.ID = int64(len(m.rows) + 1)
	cp := *f
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memFood) List(context.Context) ([]*models.FoodRegion, error) {
	return m.rows, nil
}

func (m *memFood) ListByUser(_ context.Context, userID int64) ([]*models.FoodRegion, error) {
	var out []*models.FoodRegion
	for _, r := range m.rows {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memFood) GetByID(_ context.Context, id int64) (*models.FoodRegion, error) {
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memFood) Update(_ context.Context, f *models.FoodRegion) error {
	for i, r := range m.rows {
		if r.ID == f.ID {
			cp := *f
			m.rows[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memFood) Delete(_ context.Context, id int64) error {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memNews struct {
	rows []*models.News
}

func (m *memNews) Create(_ context.Context, n *models.News) error {
	n.ID = int64(len(m.rows) + 1)
	cp := *n
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memNews) List(context.Context) ([]*models.News, error) {
	out := make([]*models.News, 0, len(m.rows))
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memNews) ListByUser(_ context.Context, userID int64) ([]*models.News, error) {
	var out []*models.News
	for _, r := range m.rows {
		if r.UserID != nil && *r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memNews) GetOwned(_ context.Context, id, userID int64) (*models.News, error) {
	for _, r := range m.rows {
		if r.ID == id && r.UserID != nil && *r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memNews) Update(_ context.Context, n *models.News) error {
	for i, r := range m.rows {
		if r.ID == n.ID {
			cp := *n
			m.rows[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memNews) Delete(_ context.Context, id int64) error {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
