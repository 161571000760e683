package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"popreel/internal/models"
	"popreel/internal/response"
	"popreel/internal/store"
)

const (
	MinPasswordLength = 6
	DefaultSessionTTL = 30 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid or expired session")

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, sess *models.AuthSession) error
	GetSession(ctx context.Context, token string) (*models.AuthSession, error)
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type Service struct {
	repo       Repository
	now        func() time.Time
	sessionTTL time.Duration
	bcryptCost int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:       repo,
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, response.NewAppError(http.StatusBadRequest, "A valid email is required", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, response.NewAppError(http.StatusBadRequest, "Password must be at least 6 characters long", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Registration failed", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, response.NewAppError(http.StatusConflict, "Email is already registered", err)
		}
		return nil, response.NewAppError(http.StatusInternalServerError, "Registration failed", err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := response.NewAppError(http.StatusUnauthorized, "Invalid email or password", nil)

	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Login failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}

	sess := &models.AuthSession{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.sessionTTL).UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, response.NewAppError(http.StatusInternalServerError, "Login failed", err)
	}
	return &LoginResult{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

// Authenticate implements auth.TokenVerifier.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if !s.now().Before(sess.ExpiresAt) {
		return nil, ErrInvalidSession
	}
	return s.repo.GetUserByID(ctx, sess.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
