package models

import "time"

// User represents a registered user
type User struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"fullName"`
	Password    string    `json:"-"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"createdAt"`
	Address     *string   `json:"address,omitempty"`
	Pincode     *string   `json:"pincode,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Admin       bool      `json:"admin"`
	PushToken   *string   `json:"-"`
}

// Shelter represents a shelter registered by a user.
// Distance is measured from the submitter's location at write time.
type Shelter struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Pincode     string    `json:"pincode"`
	Images      *string   `json:"images"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	UserID      *int64    `json:"userId"`
	Distance    *float64  `json:"distance"`
}

// SOS represents a distress signal. UserID is nil for anonymous alerts.
type SOS struct {
	ID             int64      `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	IssueRectified bool       `json:"issue_rectified"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Persons        *int       `json:"persons"`
	UserID         *int64     `json:"userId"`
	Resolved       bool       `json:"resolved"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`

	// Distance is only set when alerts are listed relative to an admin location
	Distance *float64 `json:"distance,omitempty"`
}

// FoodRegion represents a food providing region
type FoodRegion struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Address     string    `json:"address"`
	Pincode     string    `json:"pincode"`
	Description *string   `json:"description"`
	Images      *string   `json:"images"`
	UserID      *int64    `json:"userId"`
	Distance    *float64  `json:"distance"`
}

// News represents a news item or local alert.
// Distance is a placeholder on write and recomputed per query.
type News struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Images      *string   `json:"images"`
	UserID      *int64    `json:"userId"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Distance    float64   `json:"distance"`
}
