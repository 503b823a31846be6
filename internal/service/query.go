package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"faceindex/internal/config"
	"faceindex/internal/event"
	"faceindex/internal/fetch"
	"faceindex/internal/model"
	"faceindex/internal/recognition"
	"faceindex/internal/repository"
)

// QueryService finds the person records associated with the face in an image.
type QueryService interface {
	// Match downloads the image, resolves its face id and returns matching records
	// in store order. The steps run strictly in sequence.
	Match(ctx context.Context, req model.QueryRequest) ([]model.PersonRecord, error)
}

type queryService struct {
	fetcher    fetch.Fetcher
	recognizer recognition.Recognizer
	repo       repository.PersonRepository
	mode       string
	log        *slog.Logger
}

// NewQueryService constructs a new QueryService.
// mode is config.MatchModeSearch (no collection writes) or config.MatchModeIndex,
// which indexes the queried face like the upload pipeline does.
func NewQueryService(fetcher fetch.Fetcher, recognizer recognition.Recognizer, repo repository.PersonRepository, mode string, log *slog.Logger) (QueryService, error) {
	switch mode {
	case config.MatchModeSearch, config.MatchModeIndex:
	default:
		return nil, fmt.Errorf("unknown match mode %q", mode)
	}
	if log == nil {
		log = slog.Default()
	}
	return &queryService{fetcher: fetcher, recognizer: recognizer, repo: repo, mode: mode, log: log}, nil
}

func (s *queryService) Match(ctx context.Context, req model.QueryRequest) ([]model.PersonRecord, error) {
	ctx, span := tracer.Start(ctx, "query.match", trace.WithAttributes(
		attribute.String("match.mode", s.mode),
	))
	defer span.End()

	if req.ImageURL == "" {
		return nil, s.fail(span, StageValidate, fmt.Errorf("%w: imageURL is required", event.ErrInvalidRequest))
	}

	img, err := s.fetcher.Fetch(ctx, req.ImageURL)
	if err != nil {
		return nil, s.fail(span, StageFetch, err)
	}
	s.log.DebugContext(ctx, "fetched image", "bytes", len(img))

	res, err := s.recognize(ctx, img)
	if errors.Is(err, recognition.ErrNoFaceMatch) {
		s.log.InfoContext(ctx, "no matching face in collection")
		return []model.PersonRecord{}, nil
	}
	if err != nil {
		return nil, s.fail(span, StageIndex, err)
	}
	span.SetAttributes(attribute.String("face.id", res.FaceID))

	records, err := s.repo.FindByFaceID(ctx, res.FaceID)
	if err != nil {
		return nil, s.fail(span, StageLookup, err)
	}
	if records == nil {
		records = []model.PersonRecord{}
	}
	s.log.InfoContext(ctx, "matched face", "face_id", res.FaceID, "records", len(records))
	return records, nil
}

func (s *queryService) recognize(ctx context.Context, img []byte) (model.FaceIndexResult, error) {
	if s.mode == config.MatchModeIndex {
		return s.recognizer.IndexFromBytes(ctx, img)
	}
	return s.recognizer.MatchFromBytes(ctx, img)
}

func (s *queryService) fail(span trace.Span, stage Stage, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(stage))
	return &StageError{Pipeline: PipelineQuery, Stage: stage, Err: err}
}
