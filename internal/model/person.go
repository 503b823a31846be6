package model

import "time"

// PersonRecord links a subject's name and source image to a face indexed in the
// recognition collection. Records are only ever appended.
type PersonRecord struct {
	Name            string    `json:"name"`
	Image           string    `json:"image"`
	FaceID          string    `json:"faceId"`
	ExternalImageID string    `json:"externalImageId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FaceIndexResult holds the fields of a recognition response the pipelines use.
type FaceIndexResult struct {
	FaceID          string `json:"faceId"`
	ExternalImageID string `json:"externalImageId,omitempty"`
}
