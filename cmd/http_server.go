package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/analytics"
	analyticsstore "github.com/compliancehq/compliance-management/internal/analytics/postgres"
	"github.com/compliancehq/compliance-management/internal/assessment"
	assessmentstore "github.com/compliancehq/compliance-management/internal/assessment/postgres"
	"github.com/compliancehq/compliance-management/internal/auth"
	authstore "github.com/compliancehq/compliance-management/internal/auth/postgres"
	"github.com/compliancehq/compliance-management/internal/content"
	contentstore "github.com/compliancehq/compliance-management/internal/content/postgres"
	"github.com/compliancehq/compliance-management/internal/core/events"
	"github.com/compliancehq/compliance-management/internal/directory"
	directorystore "github.com/compliancehq/compliance-management/internal/directory/postgres"
	"github.com/compliancehq/compliance-management/internal/employee"
	employeestore "github.com/compliancehq/compliance-management/internal/employee/postgres"
	"github.com/compliancehq/compliance-management/internal/notification"
	notificationstore "github.com/compliancehq/compliance-management/internal/notification/postgres"
	"github.com/compliancehq/compliance-management/internal/performance"
	performancestore "github.com/compliancehq/compliance-management/internal/performance/postgres"
	"github.com/compliancehq/compliance-management/internal/transport/rest"
	"github.com/compliancehq/compliance-management/internal/upload"
	"github.com/compliancehq/compliance-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *gorm.DB
	SQLXDB     *sqlx.DB
	Router     http.Handler
	MailerPool *notification.Pool
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.MailerPool.Stop()
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment)
	lg := logger.LoggerWrapper()

	gormDB, sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// Mail delivery: SMTP when configured, log-only otherwise.
	var mailer notification.Mailer
	if config.Mailer.Enabled {
		mailer = notification.NewSMTPMailer(
			config.Mailer.Host,
			config.Mailer.Port,
			config.Mailer.Username,
			config.Mailer.Password,
			config.Mailer.FromAddress,
		)
	} else {
		mailer = notification.NewLogMailer(lg)
	}
	mailerPool := notification.NewPool(mailer, config.Mailer.MaxWorkers, config.Mailer.JobQueueSize, lg)
	mailerPool.Start()

	notificationRepo := notificationstore.NewRepository(gormDB)
	notificationHandler := notification.NewEventHandler(notificationRepo, mailerPool, config.Frontend.BaseURL, lg)
	notificationHandler.RegisterHandlers(eventBus)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
		config.Security.InvitationTokenDuration,
	)
	authRepo := authstore.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	directoryRepo := directorystore.NewRepository(gormDB)
	directoryService := directory.NewService(directoryRepo, authService, tokenGen, eventBus, lg)
	directoryHandler := directory.NewHandler(directoryService)

	employeeRepo := employeestore.NewRepository(gormDB)
	employeeService := employee.NewService(employeeRepo, authService, lg)
	employeeHandler := employee.NewHandler(employeeService)

	uploadStore := upload.NewStore(
		config.Uploads.BaseDir,
		config.Uploads.PolicyMaxBytes,
		config.Uploads.TrainingMaxBytes,
	)

	contentRepo := contentstore.NewRepository(gormDB)
	contentService := content.NewService(contentRepo, contentRepo, eventBus, lg)
	contentHandler := content.NewHandler(contentService, uploadStore)

	assessmentRepo := assessmentstore.NewRepository(gormDB)
	assessmentService := assessment.NewService(assessmentRepo, assessmentRepo, eventBus, lg)
	assessmentHandler := assessment.NewHandler(assessmentService)

	analyticsRepo := analyticsstore.NewRepository(sqlxDB)
	analyticsCache := analytics.NewCache(config.Analytics.CacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, lg)

	performanceRepo := performancestore.NewRepository(gormDB)
	performanceService := performance.NewService(performanceRepo, lg)
	performanceHandler := performance.NewHandler(performanceService, analyticsService)

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql db: %w", err)
	}

	router := rest.NewRouter(rest.Handlers{
		Auth:        authHandler,
		Directory:   directoryHandler,
		Employee:    employeeHandler,
		Content:     contentHandler,
		Assessment:  assessmentHandler,
		Performance: performanceHandler,
		Health:      rest.NewHealthHandler(sqlDB),
	}, "api/openapi.yml", lg)

	return &Dependencies{
		Config:     config,
		DB:         gormDB,
		SQLXDB:     sqlxDB,
		Router:     router,
		MailerPool: mailerPool,
		Logger:     lg,
	}, nil
}

// initDB opens one connection pool and exposes it both through gorm, which
// the repositories use, and sqlx, which the analytics aggregates use.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	gormDB, err := gorm.Open(gormpostgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unwrap sql db: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, "pgx"), nil
}
