package upload

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

var (
	ErrInvalidType     = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrTransferAborted = errors.New("upload cancelled")
	ErrUploadFailed    = errors.New("upload failed")
	ErrValidation      = errors.New("invalid video details")
	ErrNotReady        = errors.New("video not uploaded")
	ErrCommitFailed    = errors.New("failed to save video")
	ErrBusy            = errors.New("an upload is already in progress")
	ErrInvalidState    = errors.New("operation not allowed in current state")

	ErrMissingTitle       = errors.New("title required")
	ErrMissingDescription = errors.New("description required")
)

type SizeError struct {
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("file too large: %s exceeds %s", humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

func (e *SizeError) Is(target error) bool { return target == ErrFileTooLarge }

type TypeError struct {
	MediaType string
	Empty     bool
}

func (e *TypeError) Error() string {
	if e.Empty {
		return "invalid file type: file is empty"
	}
	if e.MediaType == "" {
		return "invalid file type: unknown media type"
	}
	return "invalid file type: " + e.MediaType
}

func (e *TypeError) Is(target error) bool { return target == ErrInvalidType }

type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// ValidationError reports a blank title or description.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid video details: %s is required", e.Field)
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrMissingTitle:
		return e.Field == FieldTitle
	case ErrMissingDescription:
		return e.Field == FieldDescription
	}
	return false
}

// OpError ties a failure kind (ErrAuthFailed, ErrUploadFailed, ErrCommitFailed) to its cause.
type OpError struct {
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StorageError is a non-2xx answer from the storage upload endpoint.
type StorageError struct {
	StatusCode int
	Message    string
}

func (e *StorageError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storage responded %d", e.StatusCode)
	}
	return fmt.Sprintf("storage responded %d: %s", e.StatusCode, e.Message)
}

// Describe renders err as the short title and description shown to the user.
func Describe(err error) (title, description string) {
	var sizeErr *SizeError

	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &sizeErr):
		return "File too large", "Maximum file size is " + humanize.IBytes(uint64(sizeErr.Limit))
	case errors.Is(err, ErrInvalidType):
		return "Invalid file type", "Please select a video file"
	case errors.Is(err, ErrTransferAborted):
		return "Upload cancelled", ""
	case errors.Is(err, ErrMissingTitle):
		return "Title required", "Please enter a title for your video"
	case errors.Is(err, ErrMissingDescription):
		return "Description required", "Please enter a description for your video"
	case errors.Is(err, ErrNotReady):
		return "Video not uploaded", "Please wait for upload to complete"
	case errors.Is(err, ErrBusy):
		return "Upload in progress", "Cancel the current upload before selecting another file"
	case errors.Is(err, ErrUploadFailed):
		return "Upload failed", causeOf(err)
	case errors.Is(err, ErrAuthFailed):
		return "Authentication failed", causeOf(err)
	case errors.Is(err, ErrCommitFailed):
		return "Failed to save video", causeOf(err)
	}
	return "Something went wrong", err.Error()
}

func causeOf(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return "Please try again"
}
