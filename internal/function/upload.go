package function

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"faceindex/internal/event"
	"faceindex/internal/model"
	"faceindex/internal/observability"
	"faceindex/internal/service"
)

// UploadHandler adapts UploadService to the S3 notification runtime signature.
// Failures are returned unchanged so the runtime records the invocation as failed.
func UploadHandler(svc service.UploadService, metrics *observability.Metrics, log *slog.Logger) func(context.Context, events.S3Event) (*model.FaceIndexResult, error) {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, evt events.S3Event) (*model.FaceIndexResult, error) {
		start := time.Now()
		l := log.With("pipeline", service.PipelineUpload, "request_id", requestID(ctx))

		upload, err := event.ParseS3Event(evt)
		if err != nil {
			err = &service.StageError{Pipeline: service.PipelineUpload, Stage: service.StageValidate, Err: err}
			metrics.Observe(service.PipelineUpload, start, err)
			l.ErrorContext(ctx, "rejected event", "records", len(evt.Records), "error", err)
			return nil, err
		}
		l = l.With("bucket", upload.Bucket, "key", upload.ObjectKey)
		l.InfoContext(ctx, "indexing uploaded object")

		res, err := svc.Index(ctx, upload)
		metrics.Observe(service.PipelineUpload, start, err)
		if err != nil {
			l.ErrorContext(ctx, "upload pipeline failed", "outcome", observability.Outcome(err), "error", err)
			return nil, err
		}

		l.InfoContext(ctx, "indexed face", "face_id", res.FaceID, "duration_ms", time.Since(start).Milliseconds())
		return res, nil
	}
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return ""
}
