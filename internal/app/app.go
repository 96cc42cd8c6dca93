package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Erkin33/Platform-sub000/internal/config"
	"github.com/Erkin33/Platform-sub000/internal/database"
	"github.com/Erkin33/Platform-sub000/internal/delivery/httpd"
	"github.com/Erkin33/Platform-sub000/internal/events"
	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/internal/service"
	"github.com/Erkin33/Platform-sub000/internal/service/integration"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/Erkin33/Platform-sub000/pkg/hash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type App struct {
	server         *http.Server
	logger         zerolog.Logger
	config         *config.Config
	db             *sql.DB
	rabbitmqClient integration.RabbitMQClient
	stopRelay      context.CancelFunc
}

type stores struct {
	criteria    repository.CriterionRepository
	submissions repository.SubmissionRepository
	adjustments repository.AdjustmentRepository
	history     repository.ReviewHistoryRepository
	pinger      httpd.Pinger
	db          *sql.DB
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobStore(cfg, log)
	if err != nil {
		closeDB(st.db, log)
		return nil, err
	}

	a := &App{
		logger: log,
		config: cfg,
		db:     st.db,
	}

	// Change events always reach in-process subscribers; RabbitMQ adds the
	// other instances when enabled.
	broker := events.NewBroker()
	var publisher events.Publisher = broker

	if cfg.RabbitMQ.Enabled {
		client, err := integration.NewRabbitMQClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create RabbitMQ client, continuing with local events only")
		} else {
			a.rabbitmqClient = client
			publisher = events.Fanout{broker, client}

			relayCtx, cancel := context.WithCancel(context.Background())
			a.stopRelay = cancel
			relay := integration.NewEventRelay(
				client.Channel(),
				cfg.RabbitMQ.Exchange,
				"social-relay-"+cfg.Server.InstanceID,
				cfg.Server.InstanceID,
				broker,
				log,
			)
			if err := relay.Start(relayCtx); err != nil {
				log.Error().Err(err).Msg("Failed to start event relay")
			}
		}
	}

	notifier := service.NewNotifier(publisher, m, cfg.Server.InstanceID, log)

	criterionService := service.NewCriterionService(st.criteria, log)
	if err := criterionService.Seed(ctx, cfg.Catalog.Criteria); err != nil {
		a.close()
		return nil, err
	}

	algorithm, err := hash.ParseAlgorithm(cfg.Storage.HashAlgorithm)
	if err != nil {
		a.close()
		return nil, err
	}

	fileService := service.NewFileService(blobs, hash.NewFileHasher(algorithm), log)
	submissionService := service.NewSubmissionService(st.submissions, fileService, notifier, m, log)
	reviewService := service.NewReviewService(
		st.submissions,
		st.history,
		review.Policy{
			AllowSkipStageReject:    cfg.Review.AllowSkipStageReject,
			IgnoreUnknownSubmission: cfg.Review.IgnoreUnknownSubmission,
		},
		notifier,
		m,
		log,
	)
	scoreService := service.NewScoreService(st.criteria, st.submissions, st.adjustments, log)
	adjustmentService := service.NewAdjustmentService(st.adjustments, notifier, m, log)

	var actor httpd.ActorResolver = httpd.HeaderActor
	if cfg.Auth.Mode == "jwt" {
		actor = httpd.JWTActor([]byte(cfg.Auth.JWTSecret))
	}

	handler := httpd.NewHandler(
		criterionService,
		submissionService,
		reviewService,
		scoreService,
		adjustmentService,
		fileService,
		broker,
		httpd.Options{
			Actor:          actor,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxUploadSize:  cfg.Server.MaxUploadSize,
			Pinger:         st.pinger,
		},
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	handler.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		db := repository.NewMemoryDB()
		return &stores{
			criteria:    repository.NewMemoryCriterionRepository(db),
			submissions: repository.NewMemorySubmissionRepository(db),
			adjustments: repository.NewMemoryAdjustmentRepository(db),
			history:     repository.NewMemoryReviewHistoryRepository(db),
		}, nil

	case "postgres":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}

		base := repository.NewPostgresRepository(db, log)
		if err := base.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Msg("Database connection established")

		return &stores{
			criteria:    repository.NewCriterionRepository(db, log),
			submissions: repository.NewSubmissionRepository(db, log),
			adjustments: repository.NewAdjustmentRepository(db, log),
			history:     repository.NewReviewHistoryRepository(db, log),
			pinger:      base,
			db:          db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openBlobStore(cfg *config.Config, log zerolog.Logger) (repository.BlobStore, error) {
	switch cfg.Storage.Blob {
	case "memory":
		return repository.NewMemoryBlobStore(), nil
	case "minio":
		return repository.NewMinIOBlobStore(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.Storage.BucketName,
			cfg.Storage.Region,
			cfg.MinIO.UseSSL,
			cfg.MinIO.Timeout,
			log,
		)
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.Storage.Blob)
	}
}

func closeDB(db *sql.DB, log zerolog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
	}
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting social review service on %s", a.config.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down social review service...")

	err := a.server.Shutdown(ctx)
	a.close()
	return err
}

func (a *App) close() {
	if a.stopRelay != nil {
		a.stopRelay()
	}

	if a.rabbitmqClient != nil {
		if err := a.rabbitmqClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	closeDB(a.db, a.logger)
}
