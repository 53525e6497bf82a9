package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mellowmark/internal/auth"
	"mellowmark/internal/config"
	apphttp "mellowmark/internal/http"
	"mellowmark/internal/readme"
	"mellowmark/internal/repository"
	"mellowmark/internal/repository/sqlite"
	"mellowmark/internal/service"
	"mellowmark/internal/storage"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "mellowmark",
	Short:        "Markdown notes backend",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

// loadConfig reads configuration and builds the logger at the configured level.
func loadConfig() (config.Config, *logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	return cfg, logger, nil
}

func openDatabase(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*sql.DB, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	version, err := sqlite.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Debugf("database %s at schema version %d", cfg.Database.Path, version)
	return db, nil
}

func runServe(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	docRepo := sqlite.NewDocumentRepository(db)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return fmt.Errorf("setup tokens: %w", err)
	}
	logger.Infof("session tokens valid for %s", tokens.TTL())

	archive, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	userService, err := service.NewUserService(userRepo, tokens, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("setup users: %w", err)
	}
	docService := service.NewDocumentService(docRepo, archive, cfg.Upload.MaxBytes)
	readmeService := buildReadme(cfg, docRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	handler := apphttp.NewHandler(userService, docService, readmeService, tokens, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           apphttp.NewRouter(handler, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		// README generation may take up to the configured timeout
		WriteTimeout: cfg.ReadmeTimeout() + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("bye")
	return nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Driver == "local" {
		logger.Infof("archiving uploads under %s", cfg.Storage.LocalDir)
		local, err := storage.NewLocalService(cfg.Storage.LocalDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving uploads to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	remote, err := storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	if err != nil {
		return nil, err
	}
	return remote, nil
}

func buildReadme(cfg config.Config, docs repository.DocumentRepository, logger *logrus.Logger) service.ReadmeService {
	timeout := cfg.ReadmeTimeout()
	source := readme.NewGitHubClient(cfg.Readme.GitHubAPIURL, cfg.Readme.GitHubToken, timeout)

	var generator service.TextGenerator
	gemini, err := readme.NewGeminiClient(cfg.Readme.GeminiAPIURL, cfg.Readme.GeminiAPIKey, cfg.Readme.GeminiModel, timeout)
	if err != nil {
		logger.Warnf("README generation disabled: %v", err)
	} else {
		generator = gemini
	}
	return service.NewReadmeService(source, generator, docs, timeout)
}
