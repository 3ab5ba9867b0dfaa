package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/activity"
	activityPostgres "github.com/frahmantamala/hr-management/internal/activity/postgres"
	"github.com/frahmantamala/hr-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/hr-management/internal/attendance/postgres"
	"github.com/frahmantamala/hr-management/internal/auth"
	authPostgres "github.com/frahmantamala/hr-management/internal/auth/postgres"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/dashboard"
	"github.com/frahmantamala/hr-management/internal/discussion"
	discussionPostgres "github.com/frahmantamala/hr-management/internal/discussion/postgres"
	"github.com/frahmantamala/hr-management/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-management/internal/employee/postgres"
	"github.com/frahmantamala/hr-management/internal/fee"
	feePostgres "github.com/frahmantamala/hr-management/internal/fee/postgres"
	"github.com/frahmantamala/hr-management/internal/geofence"
	"github.com/frahmantamala/hr-management/internal/interview"
	interviewPostgres "github.com/frahmantamala/hr-management/internal/interview/postgres"
	"github.com/frahmantamala/hr-management/internal/leave"
	leavePostgres "github.com/frahmantamala/hr-management/internal/leave/postgres"
	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/frahmantamala/hr-management/internal/project"
	projectPostgres "github.com/frahmantamala/hr-management/internal/project/postgres"
	"github.com/frahmantamala/hr-management/internal/realtime"
	"github.com/frahmantamala/hr-management/internal/transport/middleware"
	"github.com/frahmantamala/hr-management/internal/transport/rest"
	"github.com/frahmantamala/hr-management/internal/transport/swagger"
	"github.com/frahmantamala/hr-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API, the websocket hub, the mail pool and the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Hub      *realtime.Hub
	MailPool *notification.Pool
	Logger   *slog.Logger
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
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
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
		deps.shutdown(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// shutdown drains in dependency order: sockets, pending event handlers, queued mail, then the pool.
func (d *Dependencies) shutdown(ctx context.Context) {
	d.Hub.Close()
	d.EventBus.Close()
	if err := d.EventBus.Wait(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	d.MailPool.Shutdown()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	proxies, err := middleware.ParseTrustedProxies(config.Security.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	spec, err := swagger.Load(context.Background(), config.Server.OpenAPIPath)
	if err != nil {
		lg.Warn("openapi document unavailable, docs routes disabled", "path", config.Server.OpenAPIPath, "error", err)
	} else {
		lg.Info("openapi document loaded", "operations", spec.OperationCount())
	}

	bus := events.NewEventBus(lg)

	mailPool := notification.NewPool(notification.NewSender(config.Mail, lg), notification.PoolConfig{
		Workers:   config.Mail.Workers,
		QueueSize: config.Mail.QueueSize,
	}, lg)
	notification.NewNotifier(mailPool, config.Mail.HRAddress, lg).RegisterEventHandlers(bus)

	activityRepo := activityPostgres.NewActivityRepository(gdb)
	activity.NewRecorder(activityRepo, lg).RegisterEventHandlers(bus)

	locationRoles := make([]string, 0, len(auth.LocationRequiredRoles))
	for _, r := range auth.LocationRequiredRoles {
		locationRoles = append(locationRoles, r.String())
	}
	fence := geofence.NewPolicy(config.Office, locationRoles, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokenGen, config.Security.BCryptCost).
		WithGeofence(fence).
		WithPublisher(bus).
		WithLogger(lg)

	hub := realtime.NewHub(nil, lg)
	discussionService := discussion.NewService(discussionPostgres.NewDiscussionRepository(gdb), bus, lg).
		WithBroadcaster(hub)
	hub.SetChecker(discussionService)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(authService),
		Employee:   employee.NewHandler(employee.NewService(employeePostgres.NewEmployeeRepository(gdb), bus, lg, config.Security.BCryptCost)),
		Attendance: attendance.NewHandler(attendance.NewService(attendancePostgres.NewAttendanceRepository(gdb), fence, bus, lg)),
		Leave:      leave.NewHandler(leave.NewService(leavePostgres.NewLeaveRepository(gdb), bus, lg)),
		Project:    project.NewHandler(project.NewService(projectPostgres.NewProjectRepository(gdb), bus, lg)),
		Interview:  interview.NewHandler(interview.NewService(interviewPostgres.NewInterviewRepository(gdb), bus, lg)),
		Discussion: discussion.NewHandler(discussionService),
		Fee:        fee.NewHandler(fee.NewService(feePostgres.NewFeeRepository(gdb), bus, lg)),
		Activity:   activity.NewHandler(activity.NewService(activityRepo)),
		Dashboard:  dashboard.NewHandler(dashboard.NewService(db, lg)),
		Realtime:   realtime.NewHandler(hub, authService, config.Server.AllowedOrigins, lg),
		Health: rest.NewHealthHandler(map[string]rest.Checker{
			"database": db.PingContext,
		}),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: config.Server.AllowedOrigins,
		LoginLimiter:   middleware.NewIPRateLimiter(config.Security.LoginRatePerSecond, config.Security.LoginRateBurst, lg),
		TrustedProxies: proxies,
		Spec:           spec,
	}, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gdb,
		Router:   router,
		EventBus: bus,
		Hub:      hub,
		MailPool: mailPool,
		Logger:   lg,
	}, nil
}

// initDB opens the pgx pool shared by sqlx readers and gorm repositories.
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

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
