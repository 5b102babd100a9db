package models

import (
	"time"

	"github.com/google/uuid"
)

// CurrentStreamID keys the singleton livestream state row.
const CurrentStreamID = "current"

// LivestreamSettingsID keys the singleton livestream settings row.
const LivestreamSettingsID = "livestream"

// PlatformYouTube gets embed-URL synthesis; every other platform falls
// through to the raw stream URL.
const PlatformYouTube = "youtube"

// Destinations selects which site pages a stream or recording appears on.
// Unset fields mean "use the default", which is why they are pointers.
type Destinations struct {
	Sermons *bool `json:"sermons,omitempty"`
	Live    *bool `json:"live,omitempty"`
	Home    *bool `json:"home,omitempty"`
}

// LiveStreamState is the singleton "current" stream record. Version guards
// conditional writes: a stale writer loses instead of clobbering a
// concurrent go-live.
type LiveStreamState struct {
	ID           string       `json:"id" db:"id"`
	IsLive       bool         `json:"is_live" db:"is_live"`
	Platform     string       `json:"platform" db:"platform"`
	VideoID      string       `json:"video_id" db:"video_id"`
	StreamURL    string       `json:"stream_url" db:"stream_url"`
	EmbedURL     string       `json:"embed_url" db:"embed_url"`
	Title        string       `json:"title" db:"title"`
	Preacher     string       `json:"preacher" db:"preacher"`
	Category     string       `json:"category" db:"category"`
	Quality      string       `json:"quality" db:"quality"`
	Description  string       `json:"description" db:"description"`
	AutoSave     bool         `json:"auto_save" db:"auto_save"`
	Destinations Destinations `json:"destinations" db:"destinations"`
	Version      int          `json:"version" db:"version"`
	StartedAt    *time.Time   `json:"started_at,omitempty" db:"started_at"`
	EndedAt      *time.Time   `json:"ended_at,omitempty" db:"ended_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// StreamHistoryEntry is an append-only snapshot of a stream taken when it
// stopped, ordered by EndedAt.
type StreamHistoryEntry struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Platform      string     `json:"platform" db:"platform"`
	VideoID       string     `json:"video_id" db:"video_id"`
	StreamURL     string     `json:"stream_url" db:"stream_url"`
	EmbedURL      string     `json:"embed_url" db:"embed_url"`
	Title         string     `json:"title" db:"title"`
	Preacher      string     `json:"preacher" db:"preacher"`
	Category      string     `json:"category" db:"category"`
	Quality       string     `json:"quality" db:"quality"`
	Description   string     `json:"description" db:"description"`
	SavedAsSermon bool       `json:"saved_as_sermon" db:"saved_as_sermon"`
	SermonID      *uuid.UUID `json:"sermon_id,omitempty" db:"sermon_id"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt       time.Time  `json:"ended_at" db:"ended_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Settings is a singleton free-form document; updates merge into it rather
// than replacing it.
type Settings struct {
	ID        string                 `json:"id" db:"id"`
	Data      map[string]interface{} `json:"data" db:"data"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

type GoLiveRequest struct {
	Platform     string       `json:"platform" binding:"required"`
	VideoID      string       `json:"video_id"`
	StreamURL    string       `json:"stream_url"`
	Title        string       `json:"title"`
	Preacher     string       `json:"preacher"`
	Category     string       `json:"category"`
	Quality      string       `json:"quality"`
	Description  string       `json:"description"`
	AutoSave     bool         `json:"auto_save"`
	Destinations Destinations `json:"destinations"`
}

// RecordingData describes a finished stream to materialize as a MediaRecord.
type RecordingData struct {
	Platform     string       `json:"platform"`
	VideoID      string       `json:"video_id"`
	StreamURL    string       `json:"stream_url"`
	Title        string       `json:"title" binding:"required"`
	Preacher     string       `json:"preacher"`
	Category     string       `json:"category"`
	Description  string       `json:"description"`
	Destinations Destinations `json:"destinations"`
}
