package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popreel/internal/auth"
	"popreel/internal/config"
	"popreel/internal/models"
	"popreel/internal/store"
)

// MockRepository implements Repository for testing
type MockRepository struct {
	created    []*models.Video
	createFunc func(ctx context.Context, v *models.Video) error
	getFunc    func(ctx context.Context, id string) (*models.Video, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]models.Video, error)
	lastLimit  int
	lastOffset int
}

func (m *MockRepository) CreateVideo(ctx context.Context, v *models.Video) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, v); err != nil {
			return err
		}
	}
	m.created = append(m.created, v)
	return nil
}

func (m *MockRepository) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockRepository) ListVideos(ctx context.Context, limit, offset int) ([]models.Video, error) {
	m.lastLimit, m.lastOffset = limit, offset
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []models.Video{}, nil
}

const endpoint = "https://ik.imagekit.io/demo"

var defaults = config.Transformation{Height: 1920, Width: 1080, Quality: 80}

func TestService_Create(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name        string
		req         models.CreateVideoRequest
		expectError string
	}{
		{
			name: "Valid record",
			req:  models.CreateVideoRequest{Title: " T ", Description: " D ", VideoURL: endpoint + "/videos/a.mp4"},
		},
		{
			name:        "Blank title",
			req:         models.CreateVideoRequest{Title: "   ", Description: "D", VideoURL: endpoint + "/videos/a.mp4"},
			expectError: "Title is required",
		},
		{
			name:        "Blank description",
			req:         models.CreateVideoRequest{Title: "T", Description: "\t", VideoURL: endpoint + "/videos/a.mp4"},
			expectError: "Description is required",
		},
		{
			name:        "Missing video URL",
			req:         models.CreateVideoRequest{Title: "T", Description: "D"},
			expectError: "Video URL is required",
		},
		{
			name:        "Foreign host",
			req:         models.CreateVideoRequest{Title: "T", Description: "D", VideoURL: "https://evil.example.com/a.mp4"},
			expectError: "Video URL must point to the configured storage endpoint",
		},
		{
			name:        "Prefix lookalike",
			req:         models.CreateVideoRequest{Title: "T", Description: "D", VideoURL: endpoint + "-other/a.mp4"},
			expectError: "Video URL must point to the configured storage endpoint",
		},
		{
			name: "Out of range quality",
			req: models.CreateVideoRequest{Title: "T", Description: "D", VideoURL: endpoint + "/a.mp4",
				Transformation: &models.Transformation{Quality: 101}},
			expectError: "Quality must be between 1 and 100",
		},
		{
			name: "Explicit controls off",
			req:  models.CreateVideoRequest{Title: "T", Description: "D", VideoURL: endpoint + "/a.mp4", Controls: boolPtr(false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{}
			svc := NewService(repo, endpoint+"/", defaults)

			v, err := svc.Create(context.Background(), &tt.req, "owner-1")
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectError, err.Error())
				assert.Empty(t, repo.created, "store must not be called on invalid input")
				return
			}
			require.NoError(t, err)
			require.Len(t, repo.created, 1)
			assert.Equal(t, "owner-1", v.OwnerID)
			assert.Equal(t, v.VideoURL, v.ThumbnailURL)
			assert.Equal(t, tt.req.Controls == nil, v.Controls)
			assert.Equal(t, models.Transformation{Height: 1920, Width: 1080, Quality: 80}, v.Transformation)
		})
	}
}

func TestService_FromStorage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{endpoint + "/videos/a.mp4", true},
		{"https://IK.ImageKit.io/demo/videos/a.mp4", true},
		{endpoint + "/videos/./a.mp4", true},
		{endpoint + "/../other/x.mp4", false},
		{endpoint + "/videos/../../other/x.mp4", false},
		{endpoint + "/%2e%2e/other/x.mp4", false},
		{"https://ik.imagekit.io/demo-other/a.mp4", false},
		{"https://ik.imagekit.io.evil.com/demo/a.mp4", false},
		{"ftp://ik.imagekit.io/demo/a.mp4", false},
		{"/demo/a.mp4", false},
	}

	svc := NewService(&MockRepository{}, endpoint+"/", defaults)
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.fromStorage(tt.url), tt.url)
	}

	open := NewService(&MockRepository{}, "", defaults)
	assert.True(t, open.fromStorage("https://cdn.example.com/a.mp4"))
	assert.False(t, open.fromStorage("not a url"))
}

func TestService_CreateTrimsFields(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, endpoint, defaults)

	v, err := svc.Create(context.Background(), &models.CreateVideoRequest{
		Title: "  My Reel ", Description: " fun\n", VideoURL: endpoint + "/videos/a.mp4", ThumbnailURL: endpoint + "/posters/a.jpg",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "My Reel", v.Title)
	assert.Equal(t, "fun", v.Description)
	assert.Equal(t, endpoint+"/posters/a.jpg", v.ThumbnailURL)
}

func TestService_CreateStoreFailure(t *testing.T) {
	repo := &MockRepository{createFunc: func(ctx context.Context, v *models.Video) error {
		return errors.New("database is locked")
	}}
	svc := NewService(repo, endpoint, defaults)

	_, err := svc.Create(context.Background(), &models.CreateVideoRequest{Title: "T", Description: "D", VideoURL: endpoint + "/a.mp4"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to save video")
}

func TestService_FeedClampsPaging(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, endpoint, defaults)

	_, err := svc.Feed(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, err = svc.Feed(context.Background(), 1000, 3)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, repo.lastLimit)
	assert.Equal(t, 3, repo.lastOffset)
}

func TestHandlers(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	h := NewHandler(NewService(s, endpoint, defaults))
	r := mux.NewRouter()
	r.HandleFunc("/api/video", h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/videos", h.HandleFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/videos/{id}", h.HandleGet).Methods(http.MethodGet)

	body, _ := json.Marshal(map[string]any{
		"title":          "T",
		"description":    "D",
		"videoUrl":       endpoint + "/videos/clip.mp4",
		"thumbnailUrl":   endpoint + "/videos/clip.mp4",
		"controls":       true,
		"transformation": map[string]int{"height": 1920, "width": 1080, "quality": 80},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/video", bytes.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), &models.User{ID: "u1"}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.Video
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "u1", created.OwnerID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/videos/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Video not found"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/videos?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/videos?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var feed []models.Video
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "T", feed[0].Title)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/video", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
