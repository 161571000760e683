package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	utils "popreel/internal"
	"popreel/internal/config"
)

var (
	ErrPosterNotFound = errors.New("poster not found")
	ErrUnknownSize    = errors.New("size is not configured")
)

// ObjectStore is the subset of the S3 client the poster pipeline needs.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error)
}

type PosterService struct {
	store   ObjectStore
	opts    config.PosterOptions
	baseURL string
}

// NewPosterService stores posters in store. When baseURL is set, poster URLs
// point straight at it (a CDN or public bucket) instead of at the API.
func NewPosterService(store ObjectStore, opts config.PosterOptions, baseURL string) *PosterService {
	return &PosterService{
		store:   store,
		opts:    opts,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *PosterService) Options() config.PosterOptions {
	return s.opts
}

// UploadPoster stores the original and one resized copy per configured width.
// It returns the object key of the default-size copy.
func (s *PosterService) UploadPoster(ctx context.Context, imageData []byte, mimeType, name string) (string, error) {
	baseName := utils.BaseName(name)
	if baseName == "" || baseName == "." {
		return "", fmt.Errorf("invalid poster name %q", name)
	}

	origPath := fmt.Sprintf("%s/%s", s.opts.OriginFolder, baseName)
	if err := s.store.PutObject(ctx, origPath, bytes.NewReader(imageData), mimeType); err != nil {
		return "", fmt.Errorf("failed to upload original poster to S3: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	for _, sizeStr := range s.opts.Sizes {
		width, err := strconv.Atoi(sizeStr)
		if err != nil || width <= 0 {
			return "", fmt.Errorf("invalid size format: %s", sizeStr)
		}

		thumbnailData, err := s.generateThumbnail(img, width)
		if err != nil {
			return "", fmt.Errorf("failed to generate poster for size %d: %w", width, err)
		}

		err = s.store.PutObject(ctx, s.ThumbKey(baseName, sizeStr), bytes.NewReader(thumbnailData), s.ContentType())
		if err != nil {
			return "", fmt.Errorf("failed to upload poster for size %d: %w", width, err)
		}
	}

	return s.ThumbKey(baseName, s.opts.DefaultSize), nil
}

func (s *PosterService) generateThumbnail(img image.Image, width int) ([]byte, error) {
	resizedImg := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	var err error
	switch s.format() {
	case "png":
		err = png.Encode(&buf, resizedImg)
	case "webp":
		err = webp.Encode(&buf, resizedImg, &webp.Options{Quality: float32(s.opts.Quality)})
	default:
		err = jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: s.opts.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}

	return buf.Bytes(), nil
}

// ThumbKey builds the object key of a resized copy: folder/name_size.ext
func (s *PosterService) ThumbKey(baseName, size string) string {
	return fmt.Sprintf("%s/%s_%s.%s", s.opts.ThumbFolder, baseName, size, s.format())
}

func (s *PosterService) OriginalKey(baseName string) string {
	return fmt.Sprintf("%s/%s", s.opts.OriginFolder, baseName)
}

// ResolveSize picks the stored width for a request; empty means the default size.
func (s *PosterService) ResolveSize(size string) (string, error) {
	if size == "" {
		return s.opts.DefaultSize, nil
	}
	for _, configured := range s.opts.Sizes {
		if configured == size {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSize, size)
}

// GetPoster reads a resized copy, or the original when original is set.
func (s *PosterService) GetPoster(ctx context.Context, name, size string, original bool) ([]byte, error) {
	baseName := utils.BaseName(name)

	key := s.OriginalKey(baseName)
	if !original {
		resolved, err := s.ResolveSize(size)
		if err != nil {
			return nil, err
		}
		key = s.ThumbKey(baseName, resolved)
	}

	data, err := s.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPosterNotFound
		}
		return nil, fmt.Errorf("failed to get poster from S3: %w", err)
	}
	return data, nil
}

// SignedURL returns a temporary direct link to a resized copy.
func (s *PosterService) SignedURL(ctx context.Context, name, size string) (string, error) {
	resolved, err := s.ResolveSize(size)
	if err != nil {
		return "", err
	}
	return s.store.PresignGetObject(ctx, s.ThumbKey(utils.BaseName(name), resolved), time.Duration(s.cacheDuration())*time.Second)
}

// PublicURL is the URL recorded as a video's thumbnail. apiBase is used when
// no public base URL is configured.
func (s *PosterService) PublicURL(apiBase, name string) string {
	baseName := utils.BaseName(name)
	if s.baseURL != "" {
		return s.baseURL + "/" + s.ThumbKey(baseName, s.opts.DefaultSize)
	}
	return strings.TrimRight(apiBase, "/") + "/api/posters/" + baseName
}

func (s *PosterService) ContentType() string {
	return "image/" + s.format()
}

func (s *PosterService) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d", s.cacheDuration())
}

func (s *PosterService) cacheDuration() int {
	if s.opts.CacheDuration <= 0 {
		// 24 hours
		return 86400
	}
	return s.opts.CacheDuration
}

func (s *PosterService) format() string {
	switch f := strings.ToLower(s.opts.ConvertTo); f {
	case "png", "webp":
		return f
	}
	return "jpeg"
}

// Read the first 512 bytes to determine the MIME type
func DetermineMimeType(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	// Reset the file pointer to the beginning
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}
