package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/storage"
)

type fakeMediaStore struct {
	records map[uuid.UUID]*models.MediaRecord
	views   map[uuid.UUID]int

	deleteErr error
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{
		records: map[uuid.UUID]*models.MediaRecord{},
		views:   map[uuid.UUID]int{},
	}
}

func (f *fakeMediaStore) Create(m *models.MediaRecord) error {
	m.ID = uuid.New()
	f.records[m.ID] = m
	return nil
}

func (f *fakeMediaStore) GetByID(id uuid.UUID) (*models.MediaRecord, error) {
	return f.records[id], nil
}

func (f *fakeMediaStore) List(collection string, limit int) ([]models.MediaRecord, error) {
	out := []models.MediaRecord{}
	for _, r := range f.records {
		if r.Collection == collection {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeMediaStore) IncrementViews(id uuid.UUID) error {
	f.views[id]++
	return nil
}

func (f *fakeMediaStore) IncrementDownloads(id uuid.UUID) error { return nil }

func (f *fakeMediaStore) Delete(id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[id]; !ok {
		return errors.New("record not found")
	}
	delete(f.records, id)
	return nil
}

type fakeBlobStore struct {
	deleted   []string
	deleteErr error
}

func (f *fakeBlobStore) Upload(_ context.Context, r io.Reader, size int64, filename, folder string, progress storage.ProgressFunc) (*storage.UploadResult, error) {
	io.Copy(io.Discard, r)
	if progress != nil {
		progress(100)
	}
	return &storage.UploadResult{URL: "http://x/" + folder + "/" + filename, FileName: filename, Path: folder + "/" + filename}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return f.deleteErr
}

func setupMediaRouter(media *fakeMediaStore, blobs *fakeBlobStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMediaHandler(media, blobs, nil, 10, 3)

	router := gin.New()
	router.GET("/sermons", h.ListSermons)
	router.GET("/sermons/:id", h.GetSermon)
	router.POST("/sermons", h.CreateSermon)
	router.POST("/sermons/:id/views", h.IncrementViews)
	router.DELETE("/sermons/:id", h.DeleteSermon)
	return router
}

func TestMediaHandler_GetSermonNotFound(t *testing.T) {
	router := setupMediaRouter(newFakeMediaStore(), &fakeBlobStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sermons/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing record, got %d", w.Code)
	}
}

func TestMediaHandler_CreateSermonDefaultsShowOnSermons(t *testing.T) {
	media := newFakeMediaStore()
	router := setupMediaRouter(media, &fakeBlobStore{})

	body := `{"title": "Sunday Service", "media_type": "video", "media_url": "http://x/v"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sermons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(media.records) != 1 {
		t.Fatalf("Expected one record, got %d", len(media.records))
	}
	for _, r := range media.records {
		if !r.ShowOnSermons {
			t.Error("Expected show_on_sermons to default to true")
		}
	}
}

func TestMediaHandler_DeleteSermonSwallowsBlobFailure(t *testing.T) {
	media := newFakeMediaStore()
	record := &models.MediaRecord{Collection: models.CollectionSermons, Title: "Old"}
	media.Create(record)

	blobs := &fakeBlobStore{deleteErr: errors.New("blob not found")}
	router := setupMediaRouter(media, blobs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/sermons/"+record.ID.String()+"?file_path=sermons/old.mp3", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 despite blob failure, got %d: %s", w.Code, w.Body.String())
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "sermons/old.mp3" {
		t.Errorf("Expected blob delete attempted, got %v", blobs.deleted)
	}
	if _, ok := media.records[record.ID]; ok {
		t.Error("Expected document deleted even when blob delete failed")
	}
}

func TestMediaHandler_DeleteSermonWithoutFilePath(t *testing.T) {
	media := newFakeMediaStore()
	record := &models.MediaRecord{Collection: models.CollectionSermons, Title: "Old"}
	media.Create(record)

	blobs := &fakeBlobStore{}
	router := setupMediaRouter(media, blobs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/sermons/"+record.ID.String(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(blobs.deleted) != 0 {
		t.Errorf("Expected no blob delete without file_path, got %v", blobs.deleted)
	}
}

func TestMediaHandler_IncrementViews(t *testing.T) {
	media := newFakeMediaStore()
	record := &models.MediaRecord{Collection: models.CollectionSermons, Title: "Hit"}
	media.Create(record)

	router := setupMediaRouter(media, &fakeBlobStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sermons/"+record.ID.String()+"/views", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if media.views[record.ID] != 1 {
		t.Errorf("Expected one view, got %d", media.views[record.ID])
	}
}

func TestMediaHandler_InvalidID(t *testing.T) {
	router := setupMediaRouter(newFakeMediaStore(), &fakeBlobStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sermons/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", w.Code)
	}
}
