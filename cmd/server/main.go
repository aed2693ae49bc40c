package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cms-server/internal/auth"
	"cms-server/internal/config"
	apphttp "cms-server/internal/http"
	"cms-server/internal/repository/sqlite"
	"cms-server/internal/service"
	"cms-server/internal/storage"
	"cms-server/internal/telemetry"
)

const serviceName = "cms-server"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger)
	stop()
	os.Exit(code)
}

// run serves until ctx is done or the listener fails. Startup failures after
// resources are acquired return 1 so the deferred cleanup still runs; a
// listener failure drains in-flight requests before returning 1.
func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) int {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry.Endpoint)
	if err != nil {
		logger.Errorf("setup tracing: %v", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
	}()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Errorf("open database: %v", err)
		return 1
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		logger.Errorf("migrate database: %v", err)
		return 1
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Errorf("token service: %v", err)
		return 1
	}

	userService := service.NewUserService(sqlite.NewUserRepository(db))
	if cfg.Auth.AdminEmail != "" {
		admin, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			logger.Errorf("bootstrap admin: %v", err)
			return 1
		}
		logger.WithField("email", admin.Email).Info("admin account ready")
	}

	var (
		archiver service.Archiver
		lister   apphttp.ArchiveLister
	)
	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Errorf("setup storage: %v", err)
			return 1
		}
		archive := storage.NewContentArchive(storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
		archiver, lister = archive, archive
	} else {
		logger.Info("storage bucket not set, content archive disabled")
	}

	contentService := service.NewContentService(sqlite.NewContentRepository(db), archiver, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(userService, contentService, tokens, lister, apphttp.Options{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (%s)", cfg.Server.Addr, cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-serveErr:
		logger.Errorf("http server: %v", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
	return exitCode
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
