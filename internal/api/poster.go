package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	utils "popreel/internal"
	"popreel/internal/logger"
	"popreel/internal/response"
	"popreel/internal/service"
)

const maxPosterBytes = 10 << 20

type PosterAPI struct {
	posterService *service.PosterService
}

func NewPosterAPI(posterService *service.PosterService) *PosterAPI {
	return &PosterAPI{posterService: posterService}
}

type posterUploadResponse struct {
	URL   string   `json:"url"`
	Key   string   `json:"key"`
	Sizes []string `json:"sizes"`
}

// HandleUpload handles POST /api/posters/{name}
func (h *PosterAPI) HandleUpload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	r.Body = http.MaxBytesReader(w, r.Body, maxPosterBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		response.ErrorWithDetails("Invalid poster upload", err.Error()).WriteError(w, http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType, err := service.DetermineMimeType(file)
	if err != nil {
		response.Error(err.Error()).WriteError(w, http.StatusBadRequest)
		return
	}
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		response.ErrorWithDetails("Invalid file type", "Poster must be a JPEG or PNG image").WriteError(w, http.StatusBadRequest)
		return
	}
	imageData, err := io.ReadAll(file)
	if err != nil {
		response.Error(err.Error()).WriteError(w, http.StatusBadRequest)
		return
	}

	key, err := h.posterService.UploadPoster(r.Context(), imageData, mimeType, name)
	if err != nil {
		logger.Errorf("poster %s: %v", name, err)
		response.ErrorWithDetails("Failed to store poster", err.Error()).WriteError(w, http.StatusInternalServerError)
		return
	}

	logger.Infof("poster stored: %s", key)
	response.Data(w, http.StatusCreated, posterUploadResponse{
		URL:   h.posterService.PublicURL(requestBase(r), name),
		Key:   key,
		Sizes: h.posterService.Options().Sizes,
	})
}

// HandleGet handles GET /api/posters/{name}?width=&original=&redirect=
func (h *PosterAPI) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	width, original, redirect, err := parseQueryParams(r)
	if err != nil {
		response.Error(err.Error()).WriteError(w, http.StatusBadRequest)
		return
	}

	if redirect && !original {
		url, err := h.posterService.SignedURL(r.Context(), name, width)
		if err != nil {
			writePosterError(w, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	imageData, err := h.posterService.GetPoster(r.Context(), name, width, original)
	if err != nil {
		writePosterError(w, err)
		return
	}

	contentType := h.posterService.ContentType()
	if original {
		contentType = http.DetectContentType(imageData)
	}
	resolved, _ := h.posterService.ResolveSize(width)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", h.posterService.CacheControl())
	w.Header().Set("ETag", fmt.Sprintf(`"%s_%s"`, utils.BaseName(name), resolved))
	w.Write(imageData)
}

func writePosterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPosterNotFound):
		response.Error("Poster not found").WriteError(w, http.StatusNotFound)
	case errors.Is(err, service.ErrUnknownSize):
		response.Error(err.Error()).WriteError(w, http.StatusBadRequest)
	default:
		logger.Errorf("poster: %v", err)
		response.Error("Failed to load poster").WriteError(w, http.StatusInternalServerError)
	}
}

// Parse query params for width, original and redirect
func parseQueryParams(r *http.Request) (width string, original, redirect bool, err error) {
	q := r.URL.Query()

	if width = q.Get("width"); width != "" {
		w, convErr := strconv.Atoi(width)
		if convErr != nil {
			return "", false, false, fmt.Errorf("invalid width parameter")
		}
		if w <= 0 || w > 2048 {
			return "", false, false, fmt.Errorf("width must be between 1 and 2048")
		}
	}

	if v := q.Get("original"); v != "" {
		if original, err = strconv.ParseBool(v); err != nil {
			return "", false, false, fmt.Errorf("invalid original parameter")
		}
	}
	if v := q.Get("redirect"); v != "" {
		if redirect, err = strconv.ParseBool(v); err != nil {
			return "", false, false, fmt.Errorf("invalid redirect parameter")
		}
	}

	return width, original, redirect, nil
}

func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
