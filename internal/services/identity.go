package services

import "relief-backend/internal/models"

// Identity is the outcome of optional authentication: either an
// authenticated user or anonymous. The zero value is Anonymous.
type Identity struct {
	user *models.User
}

// Anonymous is the identity of a caller without a usable token
var Anonymous = Identity{}

// Authenticated wraps a resolved user
func Authenticated(user *models.User) Identity {
	return Identity{user: user}
}

// User returns the authenticated user, if any
func (i Identity) User() (*models.User, bool) {
	return i.user, i.user != nil
}

// IsAnonymous reports whether no user is attached
func (i Identity) IsAnonymous() bool {
	return i.user == nil
}
