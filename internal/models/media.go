package models

import (
	"time"

	"github.com/google/uuid"
)

// Collections the media repository serves.
const (
	CollectionSermons = "sermons"
	CollectionMedia   = "media"
)

// MediaRecord is a sermon or general media entry. Counters are only ever
// mutated through atomic increments, never read-modify-write.
type MediaRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Collection    string    `json:"collection" db:"collection"`
	Title         string    `json:"title" db:"title"`
	Preacher      *string   `json:"preacher,omitempty" db:"preacher"`
	Category      *string   `json:"category,omitempty" db:"category"`
	Description   *string   `json:"description,omitempty" db:"description"`
	MediaType     string    `json:"media_type" db:"media_type"`
	MediaURL      string    `json:"media_url" db:"media_url"`
	FilePath      *string   `json:"file_path,omitempty" db:"file_path"`
	ShowOnSermons bool      `json:"show_on_sermons" db:"show_on_sermons"`
	Views         int       `json:"views" db:"views"`
	Downloads     int       `json:"downloads" db:"downloads"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type CreateMediaRequest struct {
	Title         string  `json:"title" binding:"required"`
	Preacher      *string `json:"preacher,omitempty"`
	Category      *string `json:"category,omitempty"`
	Description   *string `json:"description,omitempty"`
	MediaType     string  `json:"media_type" binding:"required"`
	MediaURL      string  `json:"media_url" binding:"required"`
	FilePath      *string `json:"file_path,omitempty"`
	ShowOnSermons *bool   `json:"show_on_sermons,omitempty"`
}
