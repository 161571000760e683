package upload

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"popreel/internal/credential"
	"popreel/internal/logger"
	"popreel/internal/models"
)

// Orchestrator drives exactly one upload session from file selection to the
// committed video record. All methods are safe for concurrent use; Cancel and
// Reset are meant to be called while Transfer blocks on another goroutine.
type Orchestrator struct {
	policy      Policy
	credentials CredentialSource
	transferer  Transferer
	store       MetadataStore
	observers   []Observer
	now         func() time.Time

	// deliver is held across a progress check and its callback; Cancel and
	// Reset take it before mu so no callback outlives them.
	deliver sync.Mutex

	mu         sync.Mutex
	session    Session
	epoch      uint64
	cancel     context.CancelFunc
	committing bool
	lastSent   int
}

type Option func(*Orchestrator)

func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithClock overrides the time source used for credential expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.now = clock
		}
	}
}

func NewOrchestrator(policy Policy, credentials CredentialSource, transferer Transferer, store MetadataStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		policy:      policy,
		credentials: credentials,
		transferer:  transferer,
		store:       store,
		now:         time.Now,
		session:     Session{State: StateIdle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns a snapshot of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Validate checks file against the policy and makes it the selected file.
// A rejected file leaves the current session untouched.
func (o *Orchestrator) Validate(file File) error {
	o.mu.Lock()
	if o.busyLocked() {
		o.mu.Unlock()
		return ErrBusy
	}
	if err := o.policy.check(file); err != nil {
		o.mu.Unlock()
		return err
	}

	o.epoch++
	o.session = Session{File: file, State: StateValidated}
	snap := o.session
	o.mu.Unlock()

	logger.Debugf("upload validated: %s (%d bytes, %s)", file.Name(), file.Size(), file.MediaType())
	o.notify(snap)
	return nil
}

// RequestCredential asks the token provider for a signed credential. It is
// allowed from Validated and, as a retry, from Failed.
func (o *Orchestrator) RequestCredential(ctx context.Context) error {
	o.mu.Lock()
	switch {
	case o.busyLocked():
		o.mu.Unlock()
		return ErrBusy
	case o.session.File == nil || (o.session.State != StateValidated && o.session.State != StateFailed):
		o.mu.Unlock()
		return ErrInvalidState
	}

	o.epoch++
	epoch := o.epoch
	o.session.State = StateCredentialRequested
	o.session.Credential = nil
	o.session.Progress = 0
	o.session.Err = nil
	snap := o.session
	o.mu.Unlock()
	o.notify(snap)

	cred, err := o.credentials.Credential(ctx)
	if err == nil {
		err = checkCredential(cred)
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return ErrTransferAborted
	}
	if err != nil {
		err = &OpError{Kind: ErrAuthFailed, Err: err}
		o.session.State = StateFailed
		o.session.Err = err
		snap = o.session
		o.mu.Unlock()

		logger.Errorf("upload credential: %v", err)
		o.notify(snap)
		return err
	}
	o.session.Credential = cred
	snap = o.session
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// Transfer streams the selected file to storage and blocks until it completes,
// fails, or is cancelled. On success it returns the storage URL.
func (o *Orchestrator) Transfer(ctx context.Context, onProgress ProgressFunc) (string, error) {
	o.mu.Lock()
	if o.session.State == StateTransferring {
		o.mu.Unlock()
		return "", ErrBusy
	}
	if o.session.State != StateCredentialRequested || o.session.Credential == nil {
		o.mu.Unlock()
		return "", ErrInvalidState
	}

	cred := *o.session.Credential
	if !o.now().Before(cred.ExpiresAt()) {
		err := &OpError{Kind: ErrUploadFailed, Err: errors.Join(ErrAuthFailed, credential.ErrExpired)}
		o.session.State = StateFailed
		o.session.Err = err
		snap := o.session
		o.mu.Unlock()
		o.notify(snap)
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.epoch++
	epoch := o.epoch
	o.cancel = cancel
	o.lastSent = -1
	o.session.State = StateTransferring
	o.session.Progress = 0
	req := TransferRequest{File: o.session.File, Credential: cred, Folder: o.policy.Folder}
	snap := o.session
	o.mu.Unlock()
	o.notify(snap)

	o.report(epoch, 0, onProgress)
	url, err := o.transferer.Transfer(ctx, req, func(sent, total int64) {
		o.report(epoch, percent(sent, total), onProgress)
	})

	if err == nil && strings.TrimSpace(url) == "" {
		err = errors.New("storage returned no file URL")
	}
	if err == nil {
		o.report(epoch, 100, onProgress)
	}

	o.mu.Lock()
	if o.epoch != epoch {
		// cancelled or reset while in flight; the session already went back to Idle
		o.mu.Unlock()
		return "", ErrTransferAborted
	}
	o.cancel = nil

	if err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
		o.epoch++
		o.session = Session{State: StateIdle}
		snap = o.session
		o.mu.Unlock()

		logger.Infof("upload cancelled: %s", req.File.Name())
		o.notify(snap)
		return "", ErrTransferAborted
	}
	if err != nil {
		err = transferFailure(err)
		o.session.State = StateFailed
		o.session.Err = err
		snap = o.session
		o.mu.Unlock()

		logger.Errorf("upload %s: %v", req.File.Name(), err)
		o.notify(snap)
		return "", err
	}

	o.session.State = StateCompleted
	o.session.Progress = 100
	o.session.URL = url
	snap = o.session
	o.mu.Unlock()

	logger.Infof("upload complete: %s -> %s", req.File.Name(), url)
	o.notify(snap)
	return url, nil
}

// Upload runs Validate, RequestCredential and Transfer in sequence.
func (o *Orchestrator) Upload(ctx context.Context, file File, onProgress ProgressFunc) (string, error) {
	if err := o.Validate(file); err != nil {
		return "", err
	}
	return o.resume(ctx, onProgress)
}

// Retry restarts credential retrieval and transfer for the file of a failed session.
func (o *Orchestrator) Retry(ctx context.Context, onProgress ProgressFunc) (string, error) {
	o.mu.Lock()
	failed := o.session.State == StateFailed && o.session.File != nil
	o.mu.Unlock()
	if !failed {
		return "", ErrInvalidState
	}
	return o.resume(ctx, onProgress)
}

func (o *Orchestrator) resume(ctx context.Context, onProgress ProgressFunc) (string, error) {
	if err := o.RequestCredential(ctx); err != nil {
		return "", err
	}
	return o.Transfer(ctx, onProgress)
}

// Cancel aborts an in-flight transfer and returns the session to Idle. It waits
// for a progress callback that is already running, and no callback is issued
// after it returns. It reports whether a transfer was running. Cancel must not
// be called from a progress callback or observer.
func (o *Orchestrator) Cancel() bool {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	if o.session.State != StateTransferring {
		o.mu.Unlock()
		return false
	}
	o.resetLocked()
	snap := o.session
	o.mu.Unlock()

	o.notify(snap)
	return true
}

// Reset returns to Idle from any state, aborting an in-flight transfer.
func (o *Orchestrator) Reset() {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	o.resetLocked()
	snap := o.session
	o.mu.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) resetLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.epoch++
	o.committing = false
	o.session = Session{State: StateIdle}
}

// SetThumbnail attaches a poster URL to a completed session.
func (o *Orchestrator) SetThumbnail(url string) error {
	o.mu.Lock()
	if o.session.State != StateCompleted {
		o.mu.Unlock()
		return ErrNotReady
	}
	o.session.ThumbnailURL = strings.TrimSpace(url)
	snap := o.session
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// Commit saves the video record. It requires a completed transfer and a
// non-blank title and description. Details are kept on the session on every
// failure so the user can fix them and retry. A successful commit resets the
// session to Idle.
func (o *Orchestrator) Commit(ctx context.Context, title, description string) (*models.Video, error) {
	o.mu.Lock()
	if o.session.State != StateCompleted || o.session.URL == "" {
		o.mu.Unlock()
		return nil, ErrNotReady
	}
	if o.committing {
		o.mu.Unlock()
		return nil, ErrBusy
	}

	o.session.Title = title
	o.session.Description = description
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)

	var verr error
	switch {
	case title == "":
		verr = &ValidationError{Field: FieldTitle}
	case description == "":
		verr = &ValidationError{Field: FieldDescription}
	}
	if verr != nil {
		o.session.Err = verr
		snap := o.session
		o.mu.Unlock()
		o.notify(snap)
		return nil, verr
	}

	thumbnail := o.session.ThumbnailURL
	if thumbnail == "" {
		thumbnail = o.session.URL
	}
	controls := true
	transformation := o.policy.Transformation
	req := &models.CreateVideoRequest{
		Title:          title,
		Description:    description,
		VideoURL:       o.session.URL,
		ThumbnailURL:   thumbnail,
		Controls:       &controls,
		Transformation: &transformation,
	}
	o.committing = true
	o.session.Err = nil
	epoch := o.epoch
	o.mu.Unlock()

	video, err := o.store.CreateVideo(ctx, req)

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		if err != nil {
			return nil, &OpError{Kind: ErrCommitFailed, Err: err}
		}
		return video, nil
	}
	o.committing = false
	if err != nil {
		err = &OpError{Kind: ErrCommitFailed, Err: err}
		o.session.Err = err
		snap := o.session
		o.mu.Unlock()

		logger.Errorf("commit %q: %v", title, err)
		o.notify(snap)
		return nil, err
	}

	o.session.State = StateCommitted
	snap := o.session
	o.mu.Unlock()

	logger.Infof("video published: %q", title)
	o.notify(snap)
	o.Reset()
	return video, nil
}

// report delivers a progress value if it belongs to the active transfer and
// moves forward. Deliveries are serialized, so concurrent reports can not
// reach onProgress out of order.
func (o *Orchestrator) report(epoch uint64, pct int, onProgress ProgressFunc) {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	if o.epoch != epoch || o.session.State != StateTransferring || pct <= o.lastSent {
		o.mu.Unlock()
		return
	}
	o.lastSent = pct
	o.session.Progress = pct
	snap := o.session
	o.mu.Unlock()

	if onProgress != nil {
		onProgress(pct)
	}
	o.notify(snap)
}

func (o *Orchestrator) notify(snap Session) {
	for _, observer := range o.observers {
		observer(snap)
	}
}

func (o *Orchestrator) busyLocked() bool {
	return o.session.State == StateCredentialRequested || o.session.State == StateTransferring || o.committing
}

func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(sent) / float64(total) * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func checkCredential(cred *credential.Credential) error {
	if cred == nil {
		return errors.New("empty credential response")
	}
	var missing []string
	if cred.Token == "" {
		missing = append(missing, "token")
	}
	if cred.Signature == "" {
		missing = append(missing, "signature")
	}
	if cred.Expire == 0 {
		missing = append(missing, "expire")
	}
	if cred.PublicKey == "" {
		missing = append(missing, "publicKey")
	}
	if len(missing) > 0 {
		return errors.New("malformed credential: missing " + strings.Join(missing, ", "))
	}
	return nil
}

func transferFailure(err error) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) &&
		(storageErr.StatusCode == http.StatusUnauthorized || storageErr.StatusCode == http.StatusForbidden) {
		return &OpError{Kind: ErrUploadFailed, Err: errors.Join(ErrAuthFailed, err)}
	}
	return &OpError{Kind: ErrUploadFailed, Err: err}
}
