package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/config"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/memory"
	pgstore "assessment-engine/internal/infra/postgres"
	redisstore "assessment-engine/internal/infra/redis"
	"assessment-engine/internal/logging"
	"assessment-engine/internal/observability"
	transport "assessment-engine/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) must be set")
	}

	logger := logging.Must(cfg.Log.Mode, cfg.Log.File)
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader
	switch {
	case pool != nil:
		loader = pgstore.NewCatalogLoader(pool)
	case cfg.Catalog.Path != "":
		loader, err = memory.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}
	default:
		logger.Warn("no catalog configured, serving the built-in sample catalog")
		loader = memory.NewStaticCatalogLoader(sampleCatalog())
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.QuestionCatalog
	if redisClient != nil {
		catalog = redisstore.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	switch {
	case cfg.Postgres.URL != "":
		db := openBun(cfg.Postgres.URL)
		defer db.Close()
		store = pgstore.NewSessionStore(db)
	case redisClient != nil:
		store = redisstore.NewSessionStore(redisClient)
	default:
		store = memory.NewSessionStore()
	}

	metrics := observability.New()
	opts := []app.Option{
		app.WithLogger(logger),
		app.WithRecorder(metrics),
		app.WithQuestionCounts(cfg.Engine.DefaultQuestionCount, cfg.Engine.MaxQuestionCount),
	}
	if d := cfg.Engine.Distribution; d != nil {
		opts = append(opts, app.WithDistribution(app.Distribution{
			Beginner:     d.Beginner,
			Intermediate: d.Intermediate,
			Advanced:     d.Advanced,
		}))
	}
	service := app.NewAssessmentService(store, catalog, domain.NewRegistry(domain.DefaultDomains()...), opts...)

	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}
	router := transport.NewRouter(service, transport.NewAuthenticator(cfg.Auth.JWTSecret), metrics, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		logger.Info("starting assessment engine", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
