package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/config"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/dyntable"
	"github.com/formbase-inc/formbase-engine/pkg/handlers"
	"github.com/formbase-inc/formbase-engine/pkg/logging"
	"github.com/formbase-inc/formbase-engine/pkg/middleware"
	"github.com/formbase-inc/formbase-engine/pkg/repositories"
	"github.com/formbase-inc/formbase-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	connStr := cfg.Database.ConnectionString()
	logger.Info("Connecting to database",
		zap.String("conn", logging.SanitizeConnectionString(connStr)))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", connStr)
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	// Dynamic table engine
	introspector := dyntable.NewIntrospector(db)
	synchronizer := dyntable.NewSynchronizer(db, introspector, logger)
	ingestor := dyntable.NewIngestor(db, logger)
	querier := dyntable.NewQuerier(db, logger)

	// Repositories
	formRepo := repositories.NewFormRepository(db)
	versionRepo := repositories.NewFormVersionRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)

	// Services
	formSvc := services.NewFormService(formRepo, versionRepo, synchronizer, db, cfg.SubmissionSchema, logger)
	responseSvc := services.NewResponseService(formRepo, ingestor, querier, introspector, cfg.SubmissionSchema, logger)
	invitationSvc := services.NewInvitationService(invitationRepo, formRepo, services.NewLogMailer(logger), logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewFormsHandler(formSvc, logger).RegisterRoutes(mux)
	handlers.NewResponsesHandler(responseSvc, logger).RegisterRoutes(mux)
	handlers.NewInvitationsHandler(invitationSvc, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting formbase-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
