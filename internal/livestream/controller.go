package livestream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bougzy/cojf/internal/models"
)

// StreamStore is the persistence the controller drives. Satisfied by
// *repository.LivestreamRepository.
type StreamStore interface {
	GetCurrent() (*models.LiveStreamState, error)
	PutCurrent(s *models.LiveStreamState, expectedVersion int) error
	AppendHistory(e *models.StreamHistoryEntry) error
	ListHistory(limit int) ([]models.StreamHistoryEntry, error)
	LatestEnded() (*models.StreamHistoryEntry, error)
	MarkSavedAsSermon(historyID, sermonID uuid.UUID) error
}

// MediaStore materializes recordings. Satisfied by *repository.MediaRepository.
type MediaStore interface {
	Create(m *models.MediaRecord) error
}

// SettingsStore holds the livestream settings singleton. Satisfied by
// *repository.SettingsRepository.
type SettingsStore interface {
	Get(id string) (*models.Settings, error)
	Merge(id string, data map[string]interface{}) (*models.Settings, error)
}

// StatusBus publishes and subscribes stream transitions. Satisfied by
// *cache.RedisClient; nil disables status push and subscriptions.
type StatusBus interface {
	PublishStreamStatus(stream *models.LiveStreamState) error
	SubscribeToStreamStatus() *redis.PubSub
}

// Controller is the livestream state machine: OFFLINE and LIVE over a
// singleton current-stream record, with an append-only history.
type Controller struct {
	streams  StreamStore
	media    MediaStore
	settings SettingsStore
	bus      StatusBus

	now func() time.Time
}

func NewController(streams StreamStore, media MediaStore, settings SettingsStore, bus StatusBus) *Controller {
	return &Controller{
		streams:  streams,
		media:    media,
		settings: settings,
		bus:      bus,
		now:      time.Now,
	}
}

// GoLive transitions to LIVE from any state. Any prior live stream is
// force-stopped and archived first; the final write is conditional on the
// version observed after the stop, so a concurrent go-live cannot be
// silently clobbered (the loser gets repository.ErrStaleStream).
func (c *Controller) GoLive(data models.GoLiveRequest) (*models.LiveStreamState, error) {
	if err := c.StopStream(); err != nil {
		return nil, fmt.Errorf("failed to stop previous stream: %w", err)
	}

	cur, err := c.streams.GetCurrent()
	if err != nil {
		return nil, fmt.Errorf("failed to read current stream: %w", err)
	}
	version := 0
	if cur != nil {
		version = cur.Version
	}

	now := c.now()
	state := &models.LiveStreamState{
		ID:           models.CurrentStreamID,
		IsLive:       true,
		Platform:     data.Platform,
		VideoID:      data.VideoID,
		StreamURL:    data.StreamURL,
		Title:        data.Title,
		Preacher:     data.Preacher,
		Category:     data.Category,
		Quality:      data.Quality,
		Description:  data.Description,
		AutoSave:     data.AutoSave,
		Destinations: data.Destinations,
		StartedAt:    &now,
	}

	if err := c.streams.PutCurrent(state, version); err != nil {
		return nil, err
	}

	c.publish(state)
	return state, nil
}

// StopStream transitions to OFFLINE. When live, the stream is archived to
// history with endedAt set before the current record is cleared. An absent
// current record or a failed read is a successful no-op, so stopping twice
// is harmless. When the stream asked for auto-save, the archived stream is
// also materialized as a sermon recording.
func (c *Controller) StopStream() error {
	cur, err := c.streams.GetCurrent()
	if err != nil {
		log.Printf("Stop stream: failed to read current state, treating as offline: %v", err)
		return nil
	}
	if cur == nil || !cur.IsLive {
		return nil
	}

	now := c.now()
	entry := &models.StreamHistoryEntry{
		Platform:    cur.Platform,
		VideoID:     cur.VideoID,
		StreamURL:   cur.StreamURL,
		EmbedURL:    cur.EmbedURL,
		Title:       cur.Title,
		Preacher:    cur.Preacher,
		Category:    cur.Category,
		Quality:     cur.Quality,
		Description: cur.Description,
		StartedAt:   cur.StartedAt,
		EndedAt:     now,
	}
	if err := c.streams.AppendHistory(entry); err != nil {
		return fmt.Errorf("failed to archive stream: %w", err)
	}

	cur.IsLive = false
	cur.EndedAt = &now
	if err := c.streams.PutCurrent(cur, cur.Version); err != nil {
		return err
	}

	c.publish(cur)

	if cur.AutoSave {
		_, err := c.SaveRecording(models.RecordingData{
			Platform:     cur.Platform,
			VideoID:      cur.VideoID,
			StreamURL:    cur.StreamURL,
			Title:        cur.Title,
			Preacher:     cur.Preacher,
			Category:     cur.Category,
			Description:  cur.Description,
			Destinations: cur.Destinations,
		})
		if err != nil {
			return fmt.Errorf("failed to auto-save recording: %w", err)
		}
	}

	return nil
}

// SaveRecording materializes a finished stream as a permanent media record
// and back-references it from the history.
//
// Known limitation: the history entry updated is whichever one ended most
// recently, not necessarily the one this recording came from. Overlapping
// stop events can attach a recording to the wrong entry. Correlating stop
// and save by an explicit session id would close this; callers relying on
// the back-reference under concurrent streams should not.
func (c *Controller) SaveRecording(data models.RecordingData) (*models.MediaRecord, error) {
	showOnSermons := true
	if data.Destinations.Sermons != nil && !*data.Destinations.Sermons {
		showOnSermons = false
	}

	record := &models.MediaRecord{
		Collection:    models.CollectionSermons,
		Title:         data.Title,
		Preacher:      optional(data.Preacher),
		Category:      optional(data.Category),
		Description:   optional(data.Description),
		MediaType:     "livestream",
		MediaURL:      PlaybackURL(data.Platform, data.VideoID, data.StreamURL),
		ShowOnSermons: showOnSermons,
	}

	if err := c.media.Create(record); err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	latest, err := c.streams.LatestEnded()
	if err != nil {
		return nil, fmt.Errorf("failed to find history entry for recording: %w", err)
	}
	if latest != nil {
		if err := c.streams.MarkSavedAsSermon(latest.ID, record.ID); err != nil {
			return nil, fmt.Errorf("failed to link recording to history: %w", err)
		}
	}

	return record, nil
}

// CurrentStream returns the current stream state, or nil on absence or any
// read failure.
func (c *Controller) CurrentStream() *models.LiveStreamState {
	cur, err := c.streams.GetCurrent()
	if err != nil {
		log.Printf("Failed to read current stream: %v", err)
		return nil
	}
	return cur
}

// PastStreams returns archived streams newest first, or an empty slice on
// any read failure.
func (c *Controller) PastStreams(limit int) []models.StreamHistoryEntry {
	entries, err := c.streams.ListHistory(limit)
	if err != nil {
		log.Printf("Failed to read stream history: %v", err)
		return []models.StreamHistoryEntry{}
	}
	return entries
}

// Settings returns the livestream settings, or nil on absence or failure
func (c *Controller) Settings() *models.Settings {
	s, err := c.settings.Get(models.LivestreamSettingsID)
	if err != nil {
		log.Printf("Failed to read livestream settings: %v", err)
		return nil
	}
	return s
}

// UpdateSettings merges fields into the settings singleton
func (c *Controller) UpdateSettings(data map[string]interface{}) (*models.Settings, error) {
	return c.settings.Merge(models.LivestreamSettingsID, data)
}

// OnStatusChange subscribes cb to stream transitions. cb fires once with the
// current state immediately, then on every published change (nil payload
// means no current stream). The returned func cancels the subscription.
func (c *Controller) OnStatusChange(ctx context.Context, cb func(*models.LiveStreamState)) (func(), error) {
	if c.bus == nil {
		return nil, fmt.Errorf("status subscriptions require redis")
	}

	cb(c.CurrentStream())

	sub := c.bus.SubscribeToStreamStatus()
	done := make(chan struct{})

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var env models.WSMessage
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				if env.Event != models.EventStreamStatus {
					continue
				}

				raw, _ := json.Marshal(env.Payload)
				var payload models.StreamStatusPayload
				if err := json.Unmarshal(raw, &payload); err != nil {
					continue
				}

				cb(payload.Stream)
			}
		}
	}()

	unsubscribe := func() {
		close(done)
		sub.Close()
	}
	return unsubscribe, nil
}

func (c *Controller) publish(state *models.LiveStreamState) {
	if c.bus == nil {
		return
	}
	if err := c.bus.PublishStreamStatus(state); err != nil {
		log.Printf("Failed to publish stream status: %v", err)
	}
}

// PlaybackURL derives the playable URL for a recording. YouTube video ids
// get an embed URL; everything else falls through to the raw stream URL.
func PlaybackURL(platform, videoID, streamURL string) string {
	if strings.EqualFold(platform, models.PlatformYouTube) && videoID != "" {
		return "https://www.youtube.com/embed/" + videoID
	}
	return streamURL
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
