// Package recognition wraps the managed face recognition service.
// Every operation is scoped to a single collection fixed at construction.
package recognition

import (
	"context"
	"errors"

	"faceindex/internal/model"
)

var (
	// ErrRecognition marks a transport or service failure. The cause is wrapped alongside it.
	ErrRecognition = errors.New("recognition service error")
	// ErrNoFaceDetected means the call succeeded but returned no usable face.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrNoFaceMatch means a face was found but nothing in the collection matched it.
	ErrNoFaceMatch = errors.New("no matching face in collection")
)

// ObjectRef locates an image already stored in the object store.
type ObjectRef struct {
	Bucket string
	Key    string
}

// Recognizer indexes and matches faces against one collection.
type Recognizer interface {
	// IndexFromStoredObject adds the face found in a stored object to the collection,
	// tagging it with externalID.
	IndexFromStoredObject(ctx context.Context, ref ObjectRef, externalID string) (model.FaceIndexResult, error)

	// IndexFromBytes adds the face found in raw image bytes to the collection.
	IndexFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error)

	// MatchFromBytes finds the closest face in the collection without modifying it.
	MatchFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error)
}
