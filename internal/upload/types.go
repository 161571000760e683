package upload

import (
	"io"
	"mime"
	"strings"

	"popreel/internal/config"
	"popreel/internal/credential"
	"popreel/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateValidated
	StateCredentialRequested
	StateTransferring
	StateCompleted
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidated:
		return "validated"
	case StateCredentialRequested:
		return "credential_requested"
	case StateTransferring:
		return "transferring"
	case StateCompleted:
		return "completed"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// File is a single selected video.
type File interface {
	Name() string
	Size() int64
	MediaType() string
	Open() (io.ReadCloser, error)
}

// Session is a snapshot of the one upload the orchestrator owns.
type Session struct {
	File         File
	State        State
	Progress     int
	URL          string
	ThumbnailURL string
	Title        string
	Description  string
	Credential   *credential.Credential
	Err          error
}

// ProgressFunc receives whole percentages in [0,100], never decreasing.
type ProgressFunc func(percent int)

// Observer is called with a fresh snapshot after every session change.
type Observer func(Session)

// TransferRequest is what a Transferer needs to push one file to storage.
type TransferRequest struct {
	File       File
	Credential credential.Credential
	Folder     string
}

// Policy holds the client-side limits, mirrored from the YAML upload policy.
type Policy struct {
	MaxSizeBytes   int64
	AcceptedMimes  []string
	Folder         string
	Transformation models.Transformation
}

func PolicyFrom(p config.UploadPolicy) Policy {
	return Policy{
		MaxSizeBytes:  p.MaxSizeBytes,
		AcceptedMimes: p.AcceptedMimes,
		Folder:        p.Folder,
		Transformation: models.Transformation{
			Height:  p.Transformation.Height,
			Width:   p.Transformation.Width,
			Quality: p.Transformation.Quality,
		},
	}
}

func (p Policy) check(f File) error {
	if f == nil {
		return &TypeError{}
	}

	mediaType := f.MediaType()
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(mediaType)

	if p.MaxSizeBytes > 0 && f.Size() > p.MaxSizeBytes {
		return &SizeError{Size: f.Size(), Limit: p.MaxSizeBytes}
	}
	if !strings.HasPrefix(mediaType, "video/") || !p.isMimeAllowed(mediaType) {
		return &TypeError{MediaType: f.MediaType()}
	}
	if f.Size() <= 0 {
		return &TypeError{MediaType: f.MediaType(), Empty: true}
	}
	return nil
}

func (p Policy) isMimeAllowed(mediaType string) bool {
	if len(p.AcceptedMimes) == 0 {
		return true
	}
	for _, allowed := range p.AcceptedMimes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}
