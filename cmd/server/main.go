package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tradelens/internal/comparison"
	"tradelens/internal/config"
	"tradelens/internal/domain"
	"tradelens/internal/handler"
	"tradelens/internal/middleware"
	"tradelens/internal/parser"
	"tradelens/internal/parser/claude"
	"tradelens/internal/parser/passthrough"
	"tradelens/internal/port"
	"tradelens/internal/repository/sqlstore"
	"tradelens/internal/router"
	"tradelens/internal/service"
	"tradelens/internal/storage/local"
	s3storage "tradelens/internal/storage/s3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := buildEngine(&cfg.Comparison)
	if err != nil {
		return fmt.Errorf("failed to build comparison engine: %w", err)
	}

	db, err := sqlstore.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	sessionRepo := sqlstore.NewSessionRepo(db)

	storage, err := newStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	extractor, err := newExtractor(&cfg.Parser, engine.Fields())
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	// Initialize services
	comparisonSvc := service.NewComparisonService(engine, extractor, storage, sessionRepo, service.ComparisonServiceConfig{
		Bucket:        cfg.S3.Bucket,
		MaxFileSizeMB: cfg.Storage.MaxFileSizeMB,
		TraceFields:   cfg.Log.Level == "debug",
	})
	reportSvc := service.NewReportService(sessionRepo, storage, cfg.S3.Bucket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Retention.Enabled {
		janitor := service.NewSessionJanitor(sessionRepo, storage, service.JanitorConfig{
			Schedule:  cfg.Retention.Schedule,
			MaxAge:    cfg.Retention.MaxAge,
			BatchSize: cfg.Retention.BatchSize,
			Bucket:    cfg.S3.Bucket,
		})
		if err := janitor.Start(ctx); err != nil {
			return err
		}
		defer janitor.Stop()
	}

	// Initialize handlers
	comparisonH := handler.NewComparisonHandler(comparisonSvc)
	exportH := handler.NewExportHandler(reportSvc)
	healthH := handler.NewHealthHandler(sessionRepo, version)

	opts := router.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.Auth.Enabled {
		opts.Verifier = middleware.NewTokenVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	}
	r := router.Setup(opts, comparisonH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (db=%s, storage=%s, extractor=%s)",
			cfg.Server.Port, cfg.DB.Driver, cfg.Storage.Provider, cfg.Parser.Primary.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildEngine(cfg *config.ComparisonConfig) (*comparison.Engine, error) {
	fc, err := comparison.LoadFieldConfig(cfg.FieldsFile)
	if err != nil {
		return nil, err
	}
	return comparison.NewEngine(fc.Fields,
		comparison.WithThresholds(fc.Thresholds),
		comparison.WithRiskBands(comparison.RiskBands{Medium: cfg.RiskMedium, High: cfg.RiskHigh}),
	)
}

func newStorage(cfg *config.Config) (port.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "s3":
		return s3storage.NewStorage(&cfg.S3)
	case "local":
		return local.NewStorage(cfg.Storage.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

// newExtractor builds the configured extraction chain. Uploaded JSON documents
// are already extracted and always go to the passthrough extractor.
func newExtractor(cfg *config.ParserConfig, fields comparison.FieldTable) (port.DocumentExtractor, error) {
	parser.RegisterProvider("claude", claude.Factory)
	parser.RegisterProvider("passthrough", passthrough.Factory)

	schema := parser.Schema{
		domain.DocumentTypeInvoice:      fields.SourceFields(true),
		domain.DocumentTypeBillOfLading: fields.SourceFields(false),
	}
	primary, err := parser.NewFromConfig(cfg, schema)
	if err != nil {
		return nil, err
	}
	log.Printf("extraction providers registered: %v", parser.Providers())

	return parser.NewContentTypeRouter(primary, map[string]port.DocumentExtractor{
		domain.AllowedFileTypes[domain.FileTypeJSON]: passthrough.Extractor{},
	}), nil
}
