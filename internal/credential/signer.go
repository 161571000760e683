// Package credential mints the short-lived signed token sets that let a client
// upload straight to the media CDN without ever seeing the private key.
package credential

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

var (
	ErrNotConfigured    = errors.New("credential signer is not configured")
	ErrExpired          = errors.New("credential expired")
	ErrSignatureInvalid = errors.New("credential signature invalid")
)

// Credential is the flat wire shape returned by GET /api/auth/imagekit-auth.
type Credential struct {
	Token       string `json:"token"`
	Expire      int64  `json:"expire"`
	Signature   string `json:"signature"`
	PublicKey   string `json:"publicKey"`
	URLEndpoint string `json:"urlEndpoint"`
}

// ExpiresAt converts the unix-seconds expiry.
func (c Credential) ExpiresAt() time.Time {
	return time.Unix(c.Expire, 0)
}

type Signer struct {
	privateKey  []byte
	publicKey   string
	urlEndpoint string
	ttl         time.Duration
	now         func() time.Time
	newToken    func() string
}

type Option func(*Signer)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Signer) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Signer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTokenSource overrides uuid generation.
func WithTokenSource(fn func() string) Option {
	return func(s *Signer) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

func NewSigner(privateKey, publicKey, urlEndpoint string, opts ...Option) (*Signer, error) {
	if privateKey == "" || publicKey == "" || urlEndpoint == "" {
		return nil, ErrNotConfigured
	}

	s := &Signer{
		privateKey:  []byte(privateKey),
		publicKey:   publicKey,
		urlEndpoint: urlEndpoint,
		ttl:         DefaultTTL,
		now:         time.Now,
		newToken:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a fresh credential. Each call yields a new token.
func (s *Signer) Issue() Credential {
	token := s.newToken()
	expire := s.now().Add(s.ttl).Unix()

	return Credential{
		Token:       token,
		Expire:      expire,
		Signature:   Sign(s.privateKey, token, expire),
		PublicKey:   s.publicKey,
		URLEndpoint: s.urlEndpoint,
	}
}

// Verify checks a token/expire/signature triple the way the CDN does.
func (s *Signer) Verify(token string, expire int64, signature string) error {
	expected := Sign(s.privateKey, token, expire)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}
	if s.now().Unix() >= expire {
		return ErrExpired
	}
	return nil
}

// Sign computes hex(HMAC-SHA1(privateKey, token+expire)).
func Sign(privateKey []byte, token string, expire int64) string {
	mac := hmac.New(sha1.New, privateKey)
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
