package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/database"
	"github.com/bougzy/cojf/internal/models"
)

// ErrStaleStream is returned when a conditional write on the current stream
// loses to a concurrent writer.
var ErrStaleStream = errors.New("livestream state changed concurrently")

type LivestreamRepository struct {
	db *database.DB
}

func NewLivestreamRepository(db *database.DB) *LivestreamRepository {
	return &LivestreamRepository{db: db}
}

// GetCurrent retrieves the singleton current stream state, or (nil, nil)
// when none has ever been written.
func (r *LivestreamRepository) GetCurrent() (*models.LiveStreamState, error) {
	query := `
		SELECT id, is_live, platform, video_id, stream_url, embed_url, title, preacher, category, quality, description, auto_save, destinations, version, started_at, ended_at, updated_at
		FROM livestream_state
		WHERE id = $1
	`

	s := &models.LiveStreamState{}
	var rawDest []byte
	err := r.db.QueryRow(query, models.CurrentStreamID).Scan(
		&s.ID,
		&s.IsLive,
		&s.Platform,
		&s.VideoID,
		&s.StreamURL,
		&s.EmbedURL,
		&s.Title,
		&s.Preacher,
		&s.Category,
		&s.Quality,
		&s.Description,
		&s.AutoSave,
		&rawDest,
		&s.Version,
		&s.StartedAt,
		&s.EndedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current stream: %w", err)
	}

	if len(rawDest) > 0 {
		if err := json.Unmarshal(rawDest, &s.Destinations); err != nil {
			return nil, fmt.Errorf("failed to decode destinations: %w", err)
		}
	}

	return s, nil
}

// PutCurrent writes the singleton state conditionally: the write only lands
// when the stored version still equals expectedVersion (0 for a first-ever
// write). A lost race returns ErrStaleStream. On success s.Version holds the
// new version.
func (r *LivestreamRepository) PutCurrent(s *models.LiveStreamState, expectedVersion int) error {
	s.ID = models.CurrentStreamID

	rawDest, err := json.Marshal(s.Destinations)
	if err != nil {
		return fmt.Errorf("failed to encode destinations: %w", err)
	}

	query := `
		INSERT INTO livestream_state (id, is_live, platform, video_id, stream_url, embed_url, title, preacher, category, quality, description, auto_save, destinations, version, started_at, ended_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (id) DO UPDATE SET
			is_live = EXCLUDED.is_live,
			platform = EXCLUDED.platform,
			video_id = EXCLUDED.video_id,
			stream_url = EXCLUDED.stream_url,
			embed_url = EXCLUDED.embed_url,
			title = EXCLUDED.title,
			preacher = EXCLUDED.preacher,
			category = EXCLUDED.category,
			quality = EXCLUDED.quality,
			description = EXCLUDED.description,
			auto_save = EXCLUDED.auto_save,
			destinations = EXCLUDED.destinations,
			version = livestream_state.version + 1,
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at,
			updated_at = NOW()
		WHERE livestream_state.version = $17
		RETURNING version, updated_at
	`

	err = r.db.QueryRow(
		query,
		s.ID,
		s.IsLive,
		s.Platform,
		s.VideoID,
		s.StreamURL,
		s.EmbedURL,
		s.Title,
		s.Preacher,
		s.Category,
		s.Quality,
		s.Description,
		s.AutoSave,
		rawDest,
		expectedVersion+1,
		s.StartedAt,
		s.EndedAt,
		expectedVersion,
	).Scan(&s.Version, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return ErrStaleStream
	}
	if err != nil {
		return fmt.Errorf("failed to write current stream: %w", err)
	}

	return nil
}

// AppendHistory archives a stream snapshot
func (r *LivestreamRepository) AppendHistory(e *models.StreamHistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO stream_history (id, platform, video_id, stream_url, embed_url, title, preacher, category, quality, description, saved_as_sermon, sermon_id, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		e.ID,
		e.Platform,
		e.VideoID,
		e.StreamURL,
		e.EmbedURL,
		e.Title,
		e.Preacher,
		e.Category,
		e.Quality,
		e.Description,
		e.SavedAsSermon,
		e.SermonID,
		e.StartedAt,
		e.EndedAt,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append stream history: %w", err)
	}

	return nil
}

// ListHistory returns archived streams, most recently ended first
func (r *LivestreamRepository) ListHistory(limit int) ([]models.StreamHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, platform, video_id, stream_url, embed_url, title, preacher, category, quality, description, saved_as_sermon, sermon_id, started_at, ended_at, created_at
		FROM stream_history
		ORDER BY ended_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stream history: %w", err)
	}
	defer rows.Close()

	entries := []models.StreamHistoryEntry{}
	for rows.Next() {
		var e models.StreamHistoryEntry
		err := rows.Scan(
			&e.ID,
			&e.Platform,
			&e.VideoID,
			&e.StreamURL,
			&e.EmbedURL,
			&e.Title,
			&e.Preacher,
			&e.Category,
			&e.Quality,
			&e.Description,
			&e.SavedAsSermon,
			&e.SermonID,
			&e.StartedAt,
			&e.EndedAt,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stream history: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// LatestEnded returns the most recently ended history entry, or (nil, nil)
// when the history is empty.
func (r *LivestreamRepository) LatestEnded() (*models.StreamHistoryEntry, error) {
	entries, err := r.ListHistory(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// MarkSavedAsSermon back-references a materialized recording from a history
// entry.
func (r *LivestreamRepository) MarkSavedAsSermon(historyID, sermonID uuid.UUID) error {
	query := `UPDATE stream_history SET saved_as_sermon = true, sermon_id = $1 WHERE id = $2`
	result, err := r.db.Exec(query, sermonID, historyID)
	if err != nil {
		return fmt.Errorf("failed to mark history entry saved: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("history entry not found")
	}

	return nil
}
