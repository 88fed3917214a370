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

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/attachment"
	attachmentpg "github.com/frahmantamala/permission-management/internal/attachment/postgres"
	"github.com/frahmantamala/permission-management/internal/auth"
	authpg "github.com/frahmantamala/permission-management/internal/auth/postgres"
	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/internal/notification"
	"github.com/frahmantamala/permission-management/internal/permissiontype"
	typepg "github.com/frahmantamala/permission-management/internal/permissiontype/postgres"
	"github.com/frahmantamala/permission-management/internal/report"
	"github.com/frahmantamala/permission-management/internal/request"
	requestpg "github.com/frahmantamala/permission-management/internal/request/postgres"
	"github.com/frahmantamala/permission-management/internal/sector"
	sectorpg "github.com/frahmantamala/permission-management/internal/sector/postgres"
	"github.com/frahmantamala/permission-management/internal/storage"
	"github.com/frahmantamala/permission-management/internal/transport/rest"
	"github.com/frahmantamala/permission-management/internal/user"
	userpg "github.com/frahmantamala/permission-management/internal/user/postgres"
	"github.com/frahmantamala/permission-management/pkg/logger"

	"github.com/go-chi/chi"
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
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Observability.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := openGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	router := chi.NewRouter()
	handlers, err := buildHandlers(config, gormDB, log)
	if err != nil {
		return nil, err
	}

	rest.RegisterAllRoutes(router, db.DB, handlers, config.Server.AllowedOrigins, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
}

// buildHandlers wires repositories, services and HTTP handlers. Services
// depend on each other only through small interfaces, so the order here
// follows the dependency direction: directories first, then consumers.
func buildHandlers(config *internal.Config, gormDB *gorm.DB, log *slog.Logger) (rest.Handlers, error) {
	userRepo := userpg.NewUserRepository(gormDB)
	authRepo := authpg.NewAuthRepository(gormDB)
	sectorRepo := sectorpg.NewSectorRepository(gormDB)
	typeRepo := typepg.NewTypeRepository(gormDB)
	requestRepo := requestpg.NewRequestRepository(gormDB)
	attachmentRepo := attachmentpg.NewAttachmentRepository(gormDB)

	eventBus := events.NewEventBus(log)

	mailer := notification.NewMailer(config.Mail)
	dispatcher := notification.NewDispatcher(mailer, userRepo, log)
	dispatcher.Register(eventBus)

	store, err := buildStorage(config.Storage, log)
	if err != nil {
		return rest.Handlers{}, err
	}

	sectorService := sector.NewService(sectorRepo, userRepo, log)
	userService := user.NewService(userRepo, sectorService, config.Security.BCryptCost, log)
	typeService := permissiontype.NewService(typeRepo, log)
	requestService := request.NewService(requestRepo, typeService, eventBus, log)
	attachmentService := attachment.NewService(attachmentRepo, requestRepo, store, log)
	reportService := report.NewService(requestRepo, log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.RefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(
		authRepo,
		tokenGen,
		dispatcher,
		config.Server.FrontendURL,
		config.Security.ResetTokenDuration,
		config.Security.BCryptCost,
		log,
	)

	// The user handler cannot import the auth package (auth already depends
	// on user), so the actor lookup is injected from here.
	resolveActor := func(r *http.Request) (user.Role, *int64, bool) {
		actor, ok := auth.ActorFromContext(r.Context())
		if !ok {
			return "", nil, false
		}
		return actor.Role, actor.ManagedSectorID, true
	}

	return rest.Handlers{
		Auth:       auth.NewHandler(authService),
		User:       user.NewHandler(userService, resolveActor),
		Sector:     sector.NewHandler(sectorService),
		Type:       permissiontype.NewHandler(typeService),
		Request:    request.NewHandler(requestService),
		Attachment: attachment.NewHandler(attachmentService),
		Report:     report.NewHandler(reportService),
	}, nil
}

func buildStorage(cfg internal.StorageConfig, log *slog.Logger) (storage.ObjectStorage, error) {
	if cfg.Endpoint == "" {
		log.Warn("object storage not configured; attachment uploads disabled")
		return storage.Unconfigured{}, nil
	}
	store, err := storage.NewR2Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return store, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm layers gorm on top of the already-pooled *sql.DB so repositories
// and the health check share one connection pool.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
