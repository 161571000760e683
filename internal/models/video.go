package models

import "time"

type Transformation struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

// Video is the durable record created once a transfer is confirmed and the user commits details.
type Video struct {
	ID             string         `json:"_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	VideoURL       string         `json:"videoUrl"`
	ThumbnailURL   string         `json:"thumbnailUrl"`
	Controls       bool           `json:"controls"`
	Transformation Transformation `json:"transformation"`
	OwnerID        string         `json:"ownerId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CreateVideoRequest is the body of POST /api/video.
type CreateVideoRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	VideoURL       string          `json:"videoUrl"`
	ThumbnailURL   string          `json:"thumbnailUrl"`
	Controls       *bool           `json:"controls,omitempty"`
	Transformation *Transformation `json:"transformation,omitempty"`
}
