package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"relief-backend/internal/models"
	"relief-backend/internal/repository"
)

var fixedNow = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*models.User)}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) byID(id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdateLocation(_ context.Context, userID int64, latitude, longitude float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Latitude = &latitude
	u.Longitude = &longitude
	return nil
}

func (m *memUsers) UpdatePushToken(_ context.Context, userID int64, pushToken *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PushToken = pushToken
	return nil
}

func (m *memUsers) AdminPushTokens(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for _, u := range m.users {
		if u.Admin && u.PushToken != nil {
			tokens = append(tokens, *u.PushToken)
		}
	}
	sort.Strings(tokens)
	return tokens, nil
}

type memShelters struct {
	nextID int64
	rows   []*models.Shelter
}

func (m *memShelters) Create(_ context.Context, s *models.Shelter) error {
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memShelters) List(context.Context) ([]*models.Shelter, error) {
	out := make([]*models.Shelter, 0, len(m.rows))
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memShelters) ListByUser(_ context.Context, userID int64) ([]*models.Shelter, error) {
	var out []*models.Shelter
	for _, r := range m.rows {
		if r.UserID != nil && *r.UserID == userID {
			cp := *r
			out = append(out, &cp)
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

type memFood struct {
	nextID int64
	rows   []*models.FoodRegion
}

func (m *memFood) Create(_ context.Context, f *models.FoodRegion) error {
	m.nextID++
	f.ID = m.nextID
	cp := *f
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memFood) List(context.Context) ([]*models.FoodRegion, error) {
	out := make([]*models.FoodRegion, 0, len(m.rows))
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memFood) ListByUser(_ context.Context, userID int64) ([]*models.FoodRegion, error) {
	var out []*models.FoodRegion
	for _, r := range m.rows {
		if r.UserID != nil && *r.UserID == userID {
			cp := *r
			out = append(out, &cp)
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
	nextID int64
	rows   []*models.News
}

func (m *memNews) Create(_ context.Context, n *models.News) error {
	m.nextID++
	n.ID = m.nextID
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

type memSOS struct {
	nextID int64
	rows   []*models.SOS
}

func (m *memSOS) Create(_ context.Context, s *models.SOS) error {
	m.nextID++
	s.ID = m.nextID
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
			r.Resolved = true
			r.ResolvedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

type fakeLocal struct {
	saved   []string
	removed []string
}

func (f *fakeLocal) Save(filename string, _ []byte) (string, error) {
	path := "images/" + filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeLocal) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type recordingNotifier struct {
	raised   []*models.SOS
	resolved []*models.SOS
}

func (r *recordingNotifier) SOSRaised(_ context.Context, alert *models.SOS) {
	r.raised = append(r.raised, alert)
}

func (r *recordingNotifier) SOSResolved(_ context.Context, alert *models.SOS) {
	r.resolved = append(r.resolved, alert)
}

var errUploadFailed = errors.New("s3 unavailable")

func jpeg() *Image {
	return &Image{Filename: "photo.jpg", Data: []byte{0xff, 0xd8, 0xff}}
}
