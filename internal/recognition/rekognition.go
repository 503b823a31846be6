package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"faceindex/internal/model"
)

// RekognitionAPI is the subset of *rekognition.Client used by this package.
type RekognitionAPI interface {
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
}

// Options tune the requests sent to Rekognition. Zero values leave the service defaults.
type Options struct {
	MaxFaces       int32
	QualityFilter  string
	MatchThreshold float32
}

type rekognitionRecognizer struct {
	api          RekognitionAPI
	collectionID string
	opts         Options
}

var _ Recognizer = (*rekognitionRecognizer)(nil)

// NewRekognition returns a Recognizer backed by Amazon Rekognition.
// The client is safe for concurrent use and meant to live for the whole process.
func NewRekognition(api RekognitionAPI, collectionID string, opts Options) (Recognizer, error) {
	if api == nil {
		return nil, fmt.Errorf("rekognition client is required")
	}
	if collectionID == "" {
		return nil, fmt.Errorf("rekognition collection id is required")
	}
	if opts.MatchThreshold < 0 || opts.MatchThreshold > 100 {
		return nil, fmt.Errorf("rekognition match threshold %v outside [0, 100]", opts.MatchThreshold)
	}
	if opts.MaxFaces < 0 {
		return nil, fmt.Errorf("rekognition max faces %d is negative", opts.MaxFaces)
	}
	return &rekognitionRecognizer{api: api, collectionID: collectionID, opts: opts}, nil
}

func (r *rekognitionRecognizer) IndexFromStoredObject(ctx context.Context, ref ObjectRef, externalID string) (model.FaceIndexResult, error) {
	in := r.indexInput(&types.Image{
		S3Object: &types.S3Object{
			Bucket: aws.String(ref.Bucket),
			Name:   aws.String(ref.Key),
		},
	})
	if externalID != "" {
		in.ExternalImageId = aws.String(externalID)
	}
	return r.index(ctx, in)
}

func (r *rekognitionRecognizer) IndexFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error) {
	return r.index(ctx, r.indexInput(&types.Image{Bytes: image}))
}

func (r *rekognitionRecognizer) MatchFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error) {
	in := &rekognition.SearchFacesByImageInput{
		CollectionId: aws.String(r.collectionID),
		Image:        &types.Image{Bytes: image},
		MaxFaces:     aws.Int32(1),
	}
	if r.opts.MatchThreshold > 0 {
		in.FaceMatchThreshold = aws.Float32(r.opts.MatchThreshold)
	}
	if r.opts.QualityFilter != "" {
		in.QualityFilter = types.QualityFilter(r.opts.QualityFilter)
	}

	out, err := r.api.SearchFacesByImage(ctx, in)
	if err != nil {
		var invalid *types.InvalidParameterException
		if errors.As(err, &invalid) && noFacesInImage(invalid) {
			return model.FaceIndexResult{}, fmt.Errorf("%w: %w", ErrNoFaceDetected, err)
		}
		return model.FaceIndexResult{}, fmt.Errorf("%w: search faces by image: %w", ErrRecognition, err)
	}
	if len(out.FaceMatches) == 0 {
		return model.FaceIndexResult{}, ErrNoFaceMatch
	}
	return faceResult(out.FaceMatches[0].Face)
}

func (r *rekognitionRecognizer) indexInput(img *types.Image) *rekognition.IndexFacesInput {
	in := &rekognition.IndexFacesInput{
		CollectionId: aws.String(r.collectionID),
		Image:        img,
	}
	if r.opts.MaxFaces > 0 {
		in.MaxFaces = aws.Int32(r.opts.MaxFaces)
	}
	if r.opts.QualityFilter != "" {
		in.QualityFilter = types.QualityFilter(r.opts.QualityFilter)
	}
	return in
}

func (r *rekognitionRecognizer) index(ctx context.Context, in *rekognition.IndexFacesInput) (model.FaceIndexResult, error) {
	out, err := r.api.IndexFaces(ctx, in)
	if err != nil {
		return model.FaceIndexResult{}, fmt.Errorf("%w: index faces: %w", ErrRecognition, err)
	}
	if len(out.FaceRecords) == 0 {
		return model.FaceIndexResult{}, ErrNoFaceDetected
	}
	return faceResult(out.FaceRecords[0].Face)
}

func faceResult(f *types.Face) (model.FaceIndexResult, error) {
	if f == nil || aws.ToString(f.FaceId) == "" {
		return model.FaceIndexResult{}, ErrNoFaceDetected
	}
	return model.FaceIndexResult{
		FaceID:          aws.ToString(f.FaceId),
		ExternalImageID: aws.ToString(f.ExternalImageId),
	}, nil
}

// noFacesInImage reports whether Rekognition rejected the image because it holds
// no face. The same exception type is used for any other bad parameter.
func noFacesInImage(e *types.InvalidParameterException) bool {
	return strings.Contains(strings.ToLower(e.ErrorMessage()), "no faces")
}
