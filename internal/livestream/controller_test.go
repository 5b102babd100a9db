package livestream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/repository"
)

// fakeStreamStore keeps the singleton state and history in memory with the
// same conditional-write semantics as the real repository.
type fakeStreamStore struct {
	current *models.LiveStreamState
	history []models.StreamHistoryEntry

	getErr    error
	appendErr error
}

func (f *fakeStreamStore) GetCurrent() (*models.LiveStreamState, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.current == nil {
		return nil, nil
	}
	cp := *f.current
	return &cp, nil
}

func (f *fakeStreamStore) PutCurrent(s *models.LiveStreamState, expectedVersion int) error {
	have := 0
	if f.current != nil {
		have = f.current.Version
	}
	if have != expectedVersion {
		return repository.ErrStaleStream
	}
	cp := *s
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now()
	f.current = &cp
	s.Version = cp.Version
	s.UpdatedAt = cp.UpdatedAt
	return nil
}

func (f *fakeStreamStore) AppendHistory(e *models.StreamHistoryEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.history = append(f.history, *e)
	return nil
}

func (f *fakeStreamStore) ListHistory(limit int) ([]models.StreamHistoryEntry, error) {
	out := make([]models.StreamHistoryEntry, 0, len(f.history))
	for i := len(f.history) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, f.history[i])
	}
	return out, nil
}

func (f *fakeStreamStore) LatestEnded() (*models.StreamHistoryEntry, error) {
	if len(f.history) == 0 {
		return nil, nil
	}
	cp := f.history[len(f.history)-1]
	return &cp, nil
}

func (f *fakeStreamStore) MarkSavedAsSermon(historyID, sermonID uuid.UUID) error {
	for i := range f.history {
		if f.history[i].ID == historyID {
			f.history[i].SavedAsSermon = true
			id := sermonID
			f.history[i].SermonID = &id
			return nil
		}
	}
	return errors.New("history entry not found")
}

type fakeMediaStore struct {
	records   []*models.MediaRecord
	createErr error
}

func (f *fakeMediaStore) Create(m *models.MediaRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.records = append(f.records, m)
	return nil
}

type fakeSettingsStore struct {
	data map[string]interface{}
}

func (f *fakeSettingsStore) Get(id string) (*models.Settings, error) {
	if f.data == nil {
		return nil, nil
	}
	return &models.Settings{ID: id, Data: f.data}, nil
}

func (f *fakeSettingsStore) Merge(id string, data map[string]interface{}) (*models.Settings, error) {
	if f.data == nil {
		f.data = map[string]interface{}{}
	}
	for k, v := range data {
		f.data[k] = v
	}
	return &models.Settings{ID: id, Data: f.data}, nil
}

func newTestController(streams *fakeStreamStore, media *fakeMediaStore) *Controller {
	c := NewController(streams, media, &fakeSettingsStore{}, nil)
	c.now = func() time.Time { return time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC) }
	return c
}

func TestController_GoLive(t *testing.T) {
	streams := &fakeStreamStore{}
	c := newTestController(streams, &fakeMediaStore{})

	state, err := c.GoLive(models.GoLiveRequest{
		Platform: "youtube",
		VideoID:  "abc123",
		Title:    "Sunday Service",
		Preacher: "Pastor John",
	})
	if err != nil {
		t.Fatalf("GoLive failed: %v", err)
	}

	if !state.IsLive {
		t.Error("Expected state to be live")
	}
	if state.ID != models.CurrentStreamID {
		t.Errorf("Expected id %q, got %q", models.CurrentStreamID, state.ID)
	}
	if state.StartedAt == nil {
		t.Error("Expected started_at to be set")
	}
	if len(streams.history) != 0 {
		t.Errorf("Expected no history for a fresh go-live, got %d entries", len(streams.history))
	}

	cur := c.CurrentStream()
	if cur == nil || !cur.IsLive || cur.Title != "Sunday Service" {
		t.Errorf("Expected live current stream, got %+v", cur)
	}
}

func TestController_StopWhenOfflineIsNoop(t *testing.T) {
	streams := &fakeStreamStore{}
	c := newTestController(streams, &fakeMediaStore{})

	if err := c.StopStream(); err != nil {
		t.Fatalf("Stop on empty state failed: %v", err)
	}
	if err := c.StopStream(); err != nil {
		t.Fatalf("Second stop failed: %v", err)
	}

	if len(streams.history) != 0 {
		t.Errorf("Expected no history entries from offline stops, got %d", len(streams.history))
	}
}

func TestController_StopReadFailureDegradesToNoop(t *testing.T) {
	streams := &fakeStreamStore{getErr: errors.New("connection refused")}
	c := newTestController(streams, &fakeMediaStore{})

	if err := c.StopStream(); err != nil {
		t.Fatalf("Expected stop to swallow read failure, got %v", err)
	}
}

func TestController_GoLiveThenStop(t *testing.T) {
	streams := &fakeStreamStore{}
	c := newTestController(streams, &fakeMediaStore{})

	if _, err := c.GoLive(models.GoLiveRequest{
		Platform: "youtube",
		VideoID:  "abc123",
		Title:    "Sunday Service",
	}); err != nil {
		t.Fatalf("GoLive failed: %v", err)
	}

	if err := c.StopStream(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(streams.history) != 1 {
		t.Fatalf("Expected exactly one history entry, got %d", len(streams.history))
	}
	entry := streams.history[0]
	if entry.Title != "Sunday Service" || entry.VideoID != "abc123" {
		t.Errorf("History entry does not match stopped stream: %+v", entry)
	}
	if entry.EndedAt.IsZero() {
		t.Error("Expected ended_at to be set on history entry")
	}

	cur := c.CurrentStream()
	if cur == nil {
		t.Fatal("Expected current record to survive stop")
	}
	if cur.IsLive {
		t.Error("Expected current stream to be offline after stop")
	}
	if cur.EndedAt == nil {
		t.Error("Expected ended_at on stopped current record")
	}

	// Stopping again must not grow the history
	if err := c.StopStream(); err != nil {
		t.Fatalf("Second stop failed: %v", err)
	}
	if len(streams.history) != 1 {
		t.Errorf("Expected history unchanged after redundant stop, got %d entries", len(streams.history))
	}
}

func TestController_GoLiveReplacesLiveStream(t *testing.T) {
	streams := &fakeStreamStore{}
	c := newTestController(streams, &fakeMediaStore{})

	if _, err := c.GoLive(models.GoLiveRequest{Platform: "youtube", Title: "First"}); err != nil {
		t.Fatalf("First GoLive failed: %v", err)
	}
	if _, err := c.GoLive(models.GoLiveRequest{Platform: "facebook", Title: "Second"}); err != nil {
		t.Fatalf("Second GoLive failed: %v", err)
	}

	if len(streams.history) != 1 {
		t.Fatalf("Expected one archived stream, got %d", len(streams.history))
	}
	if streams.history[0].Title != "First" {
		t.Errorf("Expected first stream archived, got %q", streams.history[0].Title)
	}

	cur := c.CurrentStream()
	if cur == nil || !cur.IsLive || cur.Title != "Second" {
		t.Errorf("Expected second stream live, got %+v", cur)
	}
}

func TestController_StopAutoSavesRecording(t *testing.T) {
	streams := &fakeStreamStore{}
	media := &fakeMediaStore{}
	c := newTestController(streams, media)

	if _, err := c.GoLive(models.GoLiveRequest{
		Platform: "youtube",
		VideoID:  "abc123",
		Title:    "Sunday Service",
		AutoSave: true,
	}); err != nil {
		t.Fatalf("GoLive failed: %v", err)
	}

	if err := c.StopStream(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(media.records) != 1 {
		t.Fatalf("Expected one auto-saved recording, got %d", len(media.records))
	}
	record := media.records[0]
	if record.Collection != models.CollectionSermons {
		t.Errorf("Expected sermons collection, got %q", record.Collection)
	}
	if record.MediaURL != "https://www.youtube.com/embed/abc123" {
		t.Errorf("Expected embed URL, got %q", record.MediaURL)
	}

	if len(streams.history) != 1 {
		t.Fatalf("Expected one history entry, got %d", len(streams.history))
	}
	if !streams.history[0].SavedAsSermon {
		t.Error("Expected history entry marked saved_as_sermon")
	}
	if streams.history[0].SermonID == nil || *streams.history[0].SermonID != record.ID {
		t.Error("Expected history entry linked to the saved recording")
	}
}

func TestController_SaveRecordingDestinations(t *testing.T) {
	f := false
	tr := true
	tests := []struct {
		name     string
		dest     models.Destinations
		wantShow bool
	}{
		{"Unset defaults to sermons page", models.Destinations{}, true},
		{"Explicit true", models.Destinations{Sermons: &tr}, true},
		{"Explicit false suppresses", models.Destinations{Sermons: &f}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &fakeMediaStore{}
			c := newTestController(&fakeStreamStore{}, media)

			record, err := c.SaveRecording(models.RecordingData{
				Title:        "Sunday Service",
				Platform:     "youtube",
				VideoID:      "abc123",
				Destinations: tt.dest,
			})
			if err != nil {
				t.Fatalf("SaveRecording failed: %v", err)
			}
			if record.ShowOnSermons != tt.wantShow {
				t.Errorf("Expected show_on_sermons=%v, got %v", tt.wantShow, record.ShowOnSermons)
			}
		})
	}
}

func TestController_SaveRecordingWithoutHistory(t *testing.T) {
	media := &fakeMediaStore{}
	c := newTestController(&fakeStreamStore{}, media)

	// No archived stream to link; the record must still be created
	record, err := c.SaveRecording(models.RecordingData{Title: "Imported Recording"})
	if err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}
	if record.ID == uuid.Nil {
		t.Error("Expected record to be persisted")
	}
}

func TestController_GoLivePropagatesArchiveFailure(t *testing.T) {
	streams := &fakeStreamStore{appendErr: errors.New("disk full")}
	c := newTestController(streams, &fakeMediaStore{})

	if _, err := c.GoLive(models.GoLiveRequest{Platform: "youtube", Title: "First"}); err != nil {
		t.Fatalf("First GoLive failed: %v", err)
	}

	if _, err := c.GoLive(models.GoLiveRequest{Platform: "youtube", Title: "Second"}); err == nil {
		t.Fatal("Expected second GoLive to fail when archiving fails")
	}

	cur := c.CurrentStream()
	if cur == nil || cur.Title != "First" {
		t.Errorf("Expected first stream left untouched, got %+v", cur)
	}
}

func TestPlaybackURL(t *testing.T) {
	tests := []struct {
		name      string
		platform  string
		videoID   string
		streamURL string
		want      string
	}{
		{"YouTube with video id", "youtube", "abc123", "", "https://www.youtube.com/embed/abc123"},
		{"YouTube case insensitive", "YouTube", "abc123", "", "https://www.youtube.com/embed/abc123"},
		{"YouTube without video id", "youtube", "", "https://youtu.be/raw", "https://youtu.be/raw"},
		{"Facebook falls through", "facebook", "abc123", "https://fb.watch/x", "https://fb.watch/x"},
		{"Custom platform", "custom", "", "rtmp://example.com/live", "rtmp://example.com/live"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaybackURL(tt.platform, tt.videoID, tt.streamURL)
			if got != tt.want {
				t.Errorf("PlaybackURL(%q, %q, %q) = %q, want %q", tt.platform, tt.videoID, tt.streamURL, got, tt.want)
			}
		})
	}
}

func TestController_UpdateSettingsMerges(t *testing.T) {
	settings := &fakeSettingsStore{}
	c := NewController(&fakeStreamStore{}, &fakeMediaStore{}, settings, nil)

	if _, err := c.UpdateSettings(map[string]interface{}{"defaultQuality": "1080p", "chatEnabled": true}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	merged, err := c.UpdateSettings(map[string]interface{}{"chatEnabled": false})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	if merged.Data["defaultQuality"] != "1080p" {
		t.Errorf("Expected earlier field preserved, got %v", merged.Data["defaultQuality"])
	}
	if merged.Data["chatEnabled"] != false {
		t.Errorf("Expected overwritten field, got %v", merged.Data["chatEnabled"])
	}
}

func TestController_OnStatusChangeRequiresBus(t *testing.T) {
	c := newTestController(&fakeStreamStore{}, &fakeMediaStore{})

	if _, err := c.OnStatusChange(context.Background(), func(*models.LiveStreamState) {}); err == nil {
		t.Fatal("Expected error when no status bus is configured")
	}
}
