package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"popreel/internal/credential"
	"popreel/internal/models"
	"popreel/internal/response"
)

const (
	credentialPath = "/api/auth/imagekit-auth"
	videoPath      = "/api/video"
	loginPath      = "/api/auth/login"
	posterPath     = "/api/posters"
)

// CredentialClient fetches upload credentials from the PopReel API.
type CredentialClient struct {
	c *resty.Client
}

func NewCredentialClient(baseURL string) *CredentialClient {
	return &CredentialClient{c: newAPIClient(baseURL)}
}

// WithToken makes the credential request on behalf of a signed-in user.
func (c *CredentialClient) WithToken(token string) *CredentialClient {
	if token != "" {
		c.c.SetAuthToken(token)
	}
	return c
}

// legacyCredential is the older nested response shape.
type legacyCredential struct {
	AuthenticationParams struct {
		Token     string `json:"token"`
		Expire    int64  `json:"expire"`
		Signature string `json:"signature"`
	} `json:"authenticationParams"`
	PublicKey   string `json:"publicKey"`
	URLEndpoint string `json:"urlEndpoint"`
}

func (c *CredentialClient) Credential(ctx context.Context) (*credential.Credential, error) {
	var apiErr response.ErrorResponse
	resp, err := c.c.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetError(&apiErr).
		Get(credentialPath)
	if err != nil {
		return nil, fmt.Errorf("request credential: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), apiErr)
	}
	return decodeCredential(resp.Body())
}

func decodeCredential(body []byte) (*credential.Credential, error) {
	var cred credential.Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if cred.Token != "" {
		return &cred, nil
	}

	var legacy legacyCredential
	if err := json.Unmarshal(body, &legacy); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &credential.Credential{
		Token:       legacy.AuthenticationParams.Token,
		Expire:      legacy.AuthenticationParams.Expire,
		Signature:   legacy.AuthenticationParams.Signature,
		PublicKey:   legacy.PublicKey,
		URLEndpoint: legacy.URLEndpoint,
	}, nil
}

// MetadataClient saves committed videos through POST /api/video.
type MetadataClient struct {
	c *resty.Client
}

func NewMetadataClient(baseURL, token string) *MetadataClient {
	c := newAPIClient(baseURL)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &MetadataClient{c: c}
}

func (m *MetadataClient) CreateVideo(ctx context.Context, req *models.CreateVideoRequest) (*models.Video, error) {
	var (
		video  models.Video
		apiErr response.ErrorResponse
	)
	resp, err := m.c.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&video).
		SetError(&apiErr).
		Post(videoPath)
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), apiErr)
	}
	return &video, nil
}

// Login exchanges email and password for a session token.
func Login(ctx context.Context, baseURL, email, password string) (string, error) {
	var (
		result struct {
			Token string `json:"token"`
		}
		apiErr response.ErrorResponse
	)
	resp, err := newAPIClient(baseURL).R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		SetError(&apiErr).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp.StatusCode(), apiErr)
	}
	if result.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return result.Token, nil
}

// PosterClient uploads a poster image through the PopReel API.
type PosterClient struct {
	c *resty.Client
}

func NewPosterClient(baseURL, token string) *PosterClient {
	c := newAPIClient(baseURL)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &PosterClient{c: c}
}

// Upload sends the image at path and returns the public URL of the stored poster.
func (p *PosterClient) Upload(ctx context.Context, name, path string) (string, error) {
	var (
		result struct {
			URL string `json:"url"`
		}
		apiErr response.ErrorResponse
	)
	resp, err := p.c.R().
		SetContext(ctx).
		SetFile("file", path).
		SetResult(&result).
		SetError(&apiErr).
		Post(posterPath + "/" + name)
	if err != nil {
		return "", fmt.Errorf("upload poster: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp.StatusCode(), apiErr)
	}
	return result.URL, nil
}

func newAPIClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
}

func apiError(status int, body response.ErrorResponse) error {
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	if body.Details != "" {
		msg += ": " + body.Details
	}
	return fmt.Errorf("%s (status %d)", msg, status)
}

// StorageTransferer streams files to the CDN upload endpoint as multipart form data.
type StorageTransferer struct {
	endpoint string
	client   *http.Client
}

func NewStorageTransferer(endpoint string, client *http.Client) *StorageTransferer {
	if client == nil {
		client = &http.Client{}
	}
	return &StorageTransferer{endpoint: endpoint, client: client}
}

func (t *StorageTransferer) Transfer(ctx context.Context, req TransferRequest, progress func(sent, total int64)) (string, error) {
	src, err := req.File.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", req.File.Name(), err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})

	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, req, NewCountingReader(src, req.File.Size(), progress)))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, pr)
	if err != nil {
		pr.Close()
		<-done
		return "", err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	// stop the writer before returning so no progress arrives afterwards
	pr.CloseWithError(io.ErrClosedPipe)
	<-done
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &failure)
		return "", &StorageError{StatusCode: resp.StatusCode, Message: failure.Message}
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode storage response: %w", err)
	}
	return result.URL, nil
}

func writeForm(mw *multipart.Writer, req TransferRequest, src io.Reader) error {
	fields := []struct{ key, value string }{
		{"fileName", req.File.Name()},
		{"publicKey", req.Credential.PublicKey},
		{"signature", req.Credential.Signature},
		{"expire", strconv.FormatInt(req.Credential.Expire, 10)},
		{"token", req.Credential.Token},
		{"useUniqueFileName", "true"},
	}
	if req.Folder != "" {
		fields = append(fields, struct{ key, value string }{"folder", req.Folder})
	}
	for _, f := range fields {
		if err := mw.WriteField(f.key, f.value); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", req.File.Name())
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}
