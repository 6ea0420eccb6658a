package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/database"
	"edu-resources/internal/infrastructure/logger"
	"edu-resources/internal/infrastructure/observability"
	repo "edu-resources/internal/infrastructure/repository/resource"
	"edu-resources/internal/infrastructure/storage"
	"edu-resources/internal/interfaces/httpserver"
)

// @title Educational Resource API
// @version 1.0
// @description Upload and registry service for video, slide deck and AI-interactive teaching resources
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	resourceRepository, closeRepository, err := provideRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize registry")
	}
	defer closeRepository()

	resourceStorage, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	resourceService := domain.NewService(cfg, resourceRepository, resourceStorage, log)

	httpServer := httpserver.New(cfg, log, resourceService, resourceStorage)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideRepository selects the registry backend. The memory registry keeps
// nothing across restarts. The returned func releases the database handle.
func provideRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Repository, func(), error) {
	if cfg.IsMemoryRegistry() {
		log.Warn().Msg("using in-memory registry; resources are lost on restart")
		return repo.NewInMemoryRepository(), func() {}, nil
	}

	db, err := database.Connect(newDatabaseConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return repo.NewRepository(db), cleanup, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
