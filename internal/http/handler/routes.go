package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"faceindex/internal/event"
	"faceindex/internal/fetch"
	"faceindex/internal/observability"
	"faceindex/internal/recognition"
	"faceindex/internal/service"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Pipeline runs on the match and ingest routes are recorded on metrics.
func RegisterRoutes(app *fiber.App, store Pinger, uploadSvc service.UploadService, querySvc service.QueryService, metrics *observability.Metrics) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", Liveness())
	app.Post("/faces/match", MatchFaces(querySvc, metrics))
	app.Post("/events/s3", IngestS3Event(uploadSvc, metrics))
}

// HealthCheck godoc
// @Summary Store readiness
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness always answers 200 while the process is serving.
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// MatchFaces godoc
// @Summary Find person records matching the face in an image
// @Accept json
// @Produce json
// @Param request body model.QueryRequest true "image to match"
// @Success 200 {array} model.PersonRecord
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /faces/match [post]
func MatchFaces(svc service.QueryService, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		req, err := event.DecodeQueryRequest(c.Body())
		if err != nil {
			metrics.Observe(service.PipelineQuery, start, &service.StageError{Pipeline: service.PipelineQuery, Stage: service.StageValidate, Err: err})
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "body must be {\"imageURL\": \"<absolute url>\"}")
		}

		records, err := svc.Match(c.UserContext(), req)
		metrics.Observe(service.PipelineQuery, start, err)
		if err != nil {
			return writePipelineError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(records)
	}
}

// IngestS3Event godoc
// @Summary Index the object named by an S3 notification
// @Accept json
// @Produce json
// @Success 201 {object} model.FaceIndexResult
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /events/s3 [post]
func IngestS3Event(svc service.UploadService, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		evt, err := event.DecodeS3Event(c.Body())
		if err != nil {
			metrics.Observe(service.PipelineUpload, start, &service.StageError{Pipeline: service.PipelineUpload, Stage: service.StageValidate, Err: err})
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", "invalid S3 notification")
		}

		res, err := svc.Index(c.UserContext(), evt)
		metrics.Observe(service.PipelineUpload, start, err)
		if err != nil {
			return writePipelineError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// writePipelineError maps a pipeline failure to a status and a safe message.
func writePipelineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, event.ErrInvalidEvent):
		return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", "invalid S3 notification")
	case errors.Is(err, event.ErrInvalidRequest):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request")
	case errors.Is(err, fetch.ErrFetch):
		return writeError(c, fiber.StatusBadGateway, "IMAGE_FETCH_FAILED", "image could not be downloaded")
	case errors.Is(err, recognition.ErrNoFaceDetected):
		return writeError(c, fiber.StatusUnprocessableEntity, "NO_FACE_DETECTED", "no face detected in image")
	case errors.Is(err, recognition.ErrRecognition):
		return writeError(c, fiber.StatusBadGateway, "RECOGNITION_FAILED", "recognition service error")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
