package video

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"popreel/internal/auth"
	"popreel/internal/logger"
	"popreel/internal/models"
	"popreel/internal/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /api/video
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error("Invalid request body").WriteError(w, http.StatusBadRequest)
		return
	}

	var ownerID string
	if u := auth.UserFrom(r.Context()); u != nil {
		ownerID = u.ID
	}

	v, err := h.service.Create(r.Context(), &req, ownerID)
	if err != nil {
		logger.Debugf("create video rejected: %v", err)
		response.WriteAppError(w, err)
		return
	}

	logger.Infof("video saved: id=%s owner=%s", v.ID, ownerID)
	response.Data(w, http.StatusCreated, v)
}

// HandleFeed handles GET /api/videos?limit=&offset=
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.Error("invalid limit parameter").WriteError(w, http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		response.Error("invalid offset parameter").WriteError(w, http.StatusBadRequest)
		return
	}

	videos, err := h.service.Feed(r.Context(), limit, offset)
	if err != nil {
		logger.Errorf("feed: %v", err)
		response.WriteAppError(w, err)
		return
	}
	response.Data(w, http.StatusOK, videos)
}

// HandleGet handles GET /api/videos/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.WriteAppError(w, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
