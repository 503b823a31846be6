package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"faceindex/internal/event"
	"faceindex/internal/identity"
	"faceindex/internal/model"
	"faceindex/internal/recognition"
	"faceindex/internal/repository"
)

var tracer = otel.Tracer("faceindex/internal/service")

// UploadService indexes newly stored images and records who they belong to.
type UploadService interface {
	// Index validates evt, indexes the stored image into the collection and appends
	// a person record. Validation happens before any external call. Nothing is retried.
	Index(ctx context.Context, evt model.UploadEvent) (*model.FaceIndexResult, error)
}

type uploadService struct {
	recognizer recognition.Recognizer
	repo       repository.PersonRepository
	log        *slog.Logger
	now        func() time.Time
}

// NewUploadService constructs a new UploadService. A nil logger uses slog.Default.
func NewUploadService(recognizer recognition.Recognizer, repo repository.PersonRepository, log *slog.Logger) UploadService {
	if log == nil {
		log = slog.Default()
	}
	return &uploadService{recognizer: recognizer, repo: repo, log: log, now: time.Now}
}

func (s *uploadService) Index(ctx context.Context, evt model.UploadEvent) (*model.FaceIndexResult, error) {
	ctx, span := tracer.Start(ctx, "upload.index", trace.WithAttributes(
		attribute.String("s3.bucket", evt.Bucket),
		attribute.String("s3.key", evt.ObjectKey),
	))
	defer span.End()

	name := event.SubjectName(evt.ObjectKey)
	if evt.Bucket == "" || name == "" {
		return nil, s.fail(span, StageValidate, fmt.Errorf("%w: bucket %q, key %q", event.ErrInvalidEvent, evt.Bucket, evt.ObjectKey))
	}

	externalID := identity.DeriveExternalID(evt.Bucket, evt.ObjectKey)
	res, err := s.recognizer.IndexFromStoredObject(ctx, recognition.ObjectRef{Bucket: evt.Bucket, Key: evt.ObjectKey}, externalID)
	if err != nil {
		return nil, s.fail(span, StageIndex, err)
	}
	s.log.InfoContext(ctx, "indexed face", "key", evt.ObjectKey, "face_id", res.FaceID)

	rec := &model.PersonRecord{
		Name:            name,
		Image:           event.ObjectARN(evt.Bucket, evt.ObjectKey),
		FaceID:          res.FaceID,
		ExternalImageID: res.ExternalImageID,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, s.fail(span, StagePersist, err)
	}
	s.log.InfoContext(ctx, "stored person record", "key", evt.ObjectKey, "name", name, "face_id", res.FaceID)

	span.SetAttributes(attribute.String("face.id", res.FaceID))
	return &res, nil
}

func (s *uploadService) fail(span trace.Span, stage Stage, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(stage))
	return &StageError{Pipeline: PipelineUpload, Stage: stage, Err: err}
}
