package credential

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"popreel/internal/config"
	"popreel/internal/logger"
	"popreel/internal/response"
)

// Issuer is satisfied by *Signer.
type Issuer interface {
	Issue() Credential
}

type Handler struct {
	issuer  Issuer
	missing []string
}

// NewHandler builds the credential endpoint. Missing configuration does not fail
// start-up: the endpoint answers with a configuration error instead.
func NewHandler(cfg *config.Config, policy config.UploadPolicy, opts ...Option) *Handler {
	h := &Handler{missing: cfg.MissingImageKit()}
	if len(h.missing) > 0 {
		logger.Errorf("credential endpoint disabled, missing %s", strings.Join(h.missing, ", "))
		return h
	}

	opts = append([]Option{WithTTL(policyTTL(policy))}, opts...)
	signer, err := NewSigner(cfg.ImageKitPrivateKey, cfg.ImageKitPublicKey, cfg.ImageKitURLEndpoint, opts...)
	if err != nil {
		logger.Errorf("credential signer: %v", err)
		return h
	}
	h.issuer = signer
	return h
}

func NewHandlerWithIssuer(issuer Issuer) *Handler {
	return &Handler{issuer: issuer}
}

// HandleIssue handles GET /api/auth/imagekit-auth
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error("Method not allowed").WriteError(w, http.StatusMethodNotAllowed)
		return
	}
	if h.issuer == nil {
		details := "upload signing is not configured"
		if len(h.missing) > 0 {
			details = fmt.Sprintf("missing environment: %s", strings.Join(h.missing, ", "))
		}
		response.ErrorWithDetails("ImageKit credentials are not configured", details).
			WriteError(w, http.StatusInternalServerError)
		return
	}

	cred := h.issuer.Issue()
	logger.Debugf("issued upload credential expiring at %d", cred.Expire)

	w.Header().Set("Cache-Control", "no-store")
	response.Data(w, http.StatusOK, cred)
}

func policyTTL(policy config.UploadPolicy) time.Duration {
	if policy.CredentialTTLSeconds <= 0 {
		return DefaultTTL
	}
	return time.Duration(policy.CredentialTTLSeconds) * time.Second
}
