// Command indexer is the object-created notification function. Each uploaded
// image is indexed into the face collection and recorded against its subject.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"faceindex/internal/bootstrap"
	"faceindex/internal/config"
	"faceindex/internal/function"
	"faceindex/internal/logging"
	"faceindex/internal/observability"
	"faceindex/internal/otel"
)

func main() {
	cfg := config.Load()
	log := logging.Setup(cfg.Log)
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, "faceindex-indexer", log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	app, err := bootstrap.New(ctx, cfg, reg, log)
	if err != nil {
		log.Error("failed to build pipelines", "error", err)
		os.Exit(1)
	}

	lambda.StartWithOptions(
		function.UploadHandler(app.Upload, app.Metrics, log),
		lambda.WithEnableSIGTERM(func() {
			if err := observability.LogGathered(context.Background(), reg, log); err != nil {
				log.Error("failed to export pipeline metrics", "error", err)
			}
			_ = shutdownTracing(context.Background())
			_ = app.Close()
		}),
	)
}
