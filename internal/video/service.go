package video

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"popreel/internal/config"
	"popreel/internal/models"
	"popreel/internal/response"
	"popreel/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Repository interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context, limit, offset int) ([]models.Video, error)
}

type Service struct {
	repo           Repository
	urlEndpoint    string
	transformation models.Transformation
	now            func() time.Time
}

// NewService accepts only video URLs under urlEndpoint; an empty endpoint disables that check.
func NewService(repo Repository, urlEndpoint string, defaults config.Transformation) *Service {
	return &Service{
		repo:        repo,
		urlEndpoint: strings.TrimRight(urlEndpoint, "/"),
		transformation: models.Transformation{
			Height:  defaults.Height,
			Width:   defaults.Width,
			Quality: defaults.Quality,
		},
		now: time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *models.CreateVideoRequest, ownerID string) (*models.Video, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	videoURL := strings.TrimSpace(req.VideoURL)

	if title == "" {
		return nil, response.NewAppError(http.StatusBadRequest, "Title is required", nil)
	}
	if description == "" {
		return nil, response.NewAppError(http.StatusBadRequest, "Description is required", nil)
	}
	if videoURL == "" {
		return nil, response.NewAppError(http.StatusBadRequest, "Video URL is required", nil)
	}
	if !s.fromStorage(videoURL) {
		return nil, response.NewAppError(http.StatusBadRequest, "Video URL must point to the configured storage endpoint", nil)
	}

	thumbnailURL := strings.TrimSpace(req.ThumbnailURL)
	if thumbnailURL == "" {
		thumbnailURL = videoURL
	}

	controls := true
	if req.Controls != nil {
		controls = *req.Controls
	}

	t := s.transformation
	if req.Transformation != nil {
		if req.Transformation.Height > 0 {
			t.Height = req.Transformation.Height
		}
		if req.Transformation.Width > 0 {
			t.Width = req.Transformation.Width
		}
		if req.Transformation.Quality != 0 {
			t.Quality = req.Transformation.Quality
		}
	}
	if t.Quality < 1 || t.Quality > 100 {
		return nil, response.NewAppError(http.StatusBadRequest, "Quality must be between 1 and 100", nil)
	}

	now := s.now().UTC()
	v := &models.Video{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		VideoURL:       videoURL,
		ThumbnailURL:   thumbnailURL,
		Controls:       controls,
		Transformation: t,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateVideo(ctx, v); err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Failed to save video", err)
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Video, error) {
	v, err := s.repo.GetVideo(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NewAppError(http.StatusNotFound, "Video not found", err)
	}
	if err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Failed to load video", err)
	}
	return v, nil
}

func (s *Service) Feed(ctx context.Context, limit, offset int) ([]models.Video, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	videos, err := s.repo.ListVideos(ctx, limit, offset)
	if err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Failed to load videos", err)
	}
	return videos, nil
}

func (s *Service) fromStorage(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	if s.urlEndpoint == "" {
		return true
	}

	base, err := url.Parse(s.urlEndpoint)
	if err != nil || !strings.EqualFold(u.Host, base.Host) {
		return false
	}
	prefix := strings.TrimRight(path.Clean("/"+base.Path), "/")
	p := path.Clean("/" + u.Path)
	return prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/")
}
