package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"relief-backend/internal/models"
	"relief-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// UserStore is the persistence needed by AuthService
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLocation(ctx context.Context, userID int64, latitude, longitude float64) error
	UpdatePushToken(ctx context.Context, userID int64, pushToken *string) error
	AdminPushTokens(ctx context.Context) ([]string, error)
}

// AuthService issues and validates bearer tokens and resolves them to users
type AuthService struct {
	users      UserStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Coordinates is a latitude/longitude pair sent by clients
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	FullName    string       `json:"fullName"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	PhoneNumber string       `json:"phoneNumber"`
	Address     string       `json:"address"`
	Pincode     string       `json:"pincode"`
	Coordinates *Coordinates `json:"coordinates"`
}

// LoginRequest represents a sign-in request
type LoginRequest struct {
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	Coordinates *Coordinates `json:"coordinates"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Username     string `json:"username,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	Admin        bool   `json:"admin"`
	Status       int    `json:"status"`
}

// GenerateJWT signs an HS256 token whose subject is the user's email
func (s *AuthService) GenerateJWT(email, kind string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": email,
		"typ": kind,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a token and returns the email in its subject.
// Tokens without a typ claim are treated as access tokens.
func (s *AuthService) ValidateJWT(tokenString, kind string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	typ, _ := claims["typ"].(string)
	if typ == "" {
		typ = tokenTypeAccess
	}
	if typ != kind {
		return "", fmt.Errorf("unexpected token type %q", typ)
	}

	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return "", fmt.Errorf("sub not found in token")
	}

	return email, nil
}

// Authenticate resolves a bearer token to its user. Token problems yield
// ErrUnauthorized and a valid token for an unknown email yields ErrNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthorized("Authentication token is required")
	}

	email, err := s.ValidateJWT(token, tokenTypeAccess)
	if err != nil {
		return nil, unauthorized("Invalid token")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// AuthenticateAdmin is Authenticate restricted to admins
func (s *AuthService) AuthenticateAdmin(ctx context.Context, token string) (*models.User, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.Admin {
		return nil, forbidden("Admin access required")
	}
	return user, nil
}

// Identify is the lenient form of Authenticate: any failure is Anonymous
func (s *AuthService) Identify(ctx context.Context, token string) Identity {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return Anonymous
	}
	return Authenticated(user)
}

// Register creates a user with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, badRequest("Email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:    req.FullName,
		Password:    string(hash),
		Email:       req.Email,
		PhoneNumber: optionalString(req.PhoneNumber),
		CreatedAt:   s.now().UTC(),
		Address:     optionalString(req.Address),
		Pincode:     optionalString(req.Pincode),
	}
	if req.Coordinates != nil {
		user.Latitude = &req.Coordinates.Latitude
		user.Longitude = &req.Coordinates.Longitude
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Email or phone number already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login checks credentials, records the reported location and issues tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, unauthorized("Invalid credentials")
	}

	if req.Coordinates != nil {
		if err := s.users.UpdateLocation(ctx, user.ID, req.Coordinates.Latitude, req.Coordinates.Longitude); err != nil {
			return nil, fmt.Errorf("failed to update location: %w", err)
		}
	}

	resp, err := s.issueTokens(user.Email)
	if err != nil {
		return nil, err
	}
	resp.Username = user.FullName
	resp.UserID = user.ID
	resp.Admin = user.Admin

	return resp, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	email, err := s.ValidateJWT(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, unauthorized("Invalid refresh token")
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issueTokens(email)
}

// UpdatePushToken stores the APNs device token of a user. An empty token clears it.
func (s *AuthService) UpdatePushToken(ctx context.Context, user *models.User, token string) error {
	return s.users.UpdatePushToken(ctx, user.ID, optionalString(token))
}

func (s *AuthService) issueTokens(email string) (*TokenResponse, error) {
	access, err := s.GenerateJWT(email, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateJWT(email, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		Status:       200,
	}, nil
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
