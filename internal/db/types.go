package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an account row.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavedCV is a named snapshot of a CV document owned by a user.
type SavedCV struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	CVData    json.RawMessage `json:"cv_data"`
	ThemeData json.RawMessage `json:"theme_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SavedCVSummary is a list row without the document body.
type SavedCVSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageRecord is one generation call in the usage log.
type UsageRecord struct {
	UserID         *uuid.UUID
	IPAddress      string
	GenerationType string
}
