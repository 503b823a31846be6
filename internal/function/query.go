package function

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"faceindex/internal/event"
	"faceindex/internal/model"
	"faceindex/internal/observability"
	"faceindex/internal/service"
)

// QueryHandler adapts QueryService to the API Gateway proxy runtime signature.
// Pipeline errors are returned to the runtime; no HTTP status is derived from them here.
func QueryHandler(svc service.QueryService, metrics *observability.Metrics, log *slog.Logger) func(context.Context, model.QueryEvent) (events.APIGatewayProxyResponse, error) {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, evt model.QueryEvent) (events.APIGatewayProxyResponse, error) {
		start := time.Now()
		l := log.With("pipeline", service.PipelineQuery, "request_id", requestID(ctx))

		req, err := event.ParseQueryEvent(evt)
		if err != nil {
			err = &service.StageError{Pipeline: service.PipelineQuery, Stage: service.StageValidate, Err: err}
			metrics.Observe(service.PipelineQuery, start, err)
			l.ErrorContext(ctx, "rejected request", "error", err)
			return events.APIGatewayProxyResponse{}, err
		}
		l.InfoContext(ctx, "matching image", "image_url", req.ImageURL)

		records, err := svc.Match(ctx, req)
		metrics.Observe(service.PipelineQuery, start, err)
		if err != nil {
			l.ErrorContext(ctx, "query pipeline failed", "outcome", observability.Outcome(err), "error", err)
			return events.APIGatewayProxyResponse{}, err
		}

		l.InfoContext(ctx, "matched records", "records", len(records), "duration_ms", time.Since(start).Milliseconds())
		return FormatResponse(records)
	}
}

// FormatResponse renders records as a 200 proxy response with a JSON array body.
// A nil slice is rendered as [].
func FormatResponse(records []model.PersonRecord) (events.APIGatewayProxyResponse, error) {
	if records == nil {
		records = []model.PersonRecord{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
