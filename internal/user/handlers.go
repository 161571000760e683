package user

import (
	"encoding/json"
	"net/http"

	"popreel/internal/auth"
	"popreel/internal/logger"
	"popreel/internal/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// HandleRegister handles POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error("Invalid request body").WriteError(w, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error("Email and password are required").WriteError(w, http.StatusBadRequest)
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		response.Error("Passwords do not match").WriteError(w, http.StatusBadRequest)
		return
	}

	u, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Debugf("register %s: %v", req.Email, err)
		response.WriteAppError(w, err)
		return
	}

	logger.Infof("user registered: %s", u.ID)
	response.Data(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// HandleLogin handles POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error("Invalid request body").WriteError(w, http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteAppError(w, err)
		return
	}
	response.Data(w, http.StatusOK, result)
}

// HandleMe handles GET /api/auth/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	if u == nil {
		response.Error("Unauthorized").WriteError(w, http.StatusUnauthorized)
		return
	}
	response.Data(w, http.StatusOK, u)
}
