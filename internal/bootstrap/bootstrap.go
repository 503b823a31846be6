// Package bootstrap builds the long-lived clients and pipelines shared by every binary.
// Everything here is constructed once per process and reused across invocations.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"faceindex/internal/config"
	"faceindex/internal/database"
	"faceindex/internal/database/migration"
	"faceindex/internal/fetch"
	"faceindex/internal/observability"
	"faceindex/internal/recognition"
	"faceindex/internal/repository"
	"faceindex/internal/repository/dynamo"
	"faceindex/internal/repository/postgres"
	"faceindex/internal/service"
	"faceindex/internal/storage"
)

// App holds the wired pipelines and the dependencies a transport may need directly.
type App struct {
	Upload  service.UploadService
	Query   service.QueryService
	Store   repository.PersonRepository
	Metrics *observability.Metrics

	closers []func() error
}

// New wires the recognition client, record store, image fetcher and both pipelines.
func New(ctx context.Context, cfg *config.AppConfig, reg prometheus.Registerer, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	recognizer, err := recognition.NewRekognition(rekognition.NewFromConfig(awsCfg), cfg.Recognition.CollectionID, recognition.Options{
		MaxFaces:       int32(cfg.Recognition.MaxFaces),
		QualityFilter:  cfg.Recognition.QualityFilter,
		MatchThreshold: float32(cfg.Recognition.MatchThreshold),
	})
	if err != nil {
		return nil, err
	}

	app := &App{}

	store, closeStore, err := NewStore(ctx, cfg, awsCfg, log)
	if err != nil {
		return nil, err
	}
	app.Store = store
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	fetcher, err := NewFetcher(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Upload = service.NewUploadService(recognizer, store, log)
	app.Query, err = service.NewQueryService(fetcher, recognizer, store, cfg.Recognition.MatchMode, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Metrics, err = observability.NewMetrics(reg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("register pipeline metrics: %w", err)
	}

	log.InfoContext(ctx, "pipelines ready",
		"store_backend", cfg.Store.Backend,
		"match_mode", cfg.Recognition.MatchMode,
		"collection", cfg.Recognition.CollectionID,
		"region", awsCfg.Region,
	)
	return app, nil
}

// Close releases the store connection, if any.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LoadAWSConfig resolves credentials from the default chain and instruments every
// client built from the result with OpenTelemetry.
func LoadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if c.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(c.EndpointURL)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	return awsCfg, nil
}

// NewStore builds the configured record store. The returned close func is nil
// when the backend holds no connection of its own.
func NewStore(ctx context.Context, cfg *config.AppConfig, awsCfg aws.Config, log *slog.Logger) (repository.PersonRepository, func() error, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendDynamoDB, "":
		repo, err := dynamo.NewPersonDynamo(dynamodb.NewFromConfig(awsCfg), cfg.Store.TableName)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil

	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewPersonPostgres(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NewFetcher serves http(s) URLs directly and s3:// URLs through the object store
// when an endpoint is configured.
func NewFetcher(cfg *config.AppConfig) (fetch.Fetcher, error) {
	web := fetch.NewHTTPFetcher(cfg.Fetch)
	if cfg.ObjectStore.Endpoint == "" {
		return fetch.NewRouter(web, nil), nil
	}

	reader, err := storage.NewMinIO(cfg.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}
	return fetch.NewRouter(web, fetch.NewObjectFetcher(reader, cfg.Fetch.MaxBytes)), nil
}
