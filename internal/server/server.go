// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/itsatony/roomwatch/api"
	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/api/resources"
	_ "github.com/itsatony/roomwatch/docs"
	"github.com/itsatony/roomwatch/internal/backend"
	"github.com/itsatony/roomwatch/internal/cleanup"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/dashboard"
	"github.com/itsatony/roomwatch/internal/database"
	"github.com/itsatony/roomwatch/internal/monitoring"
	"github.com/itsatony/roomwatch/internal/push"
	"github.com/itsatony/roomwatch/internal/render"
	"github.com/itsatony/roomwatch/internal/repository"
	"github.com/itsatony/roomwatch/internal/repository/postgres"
	"github.com/itsatony/roomwatch/internal/repository/redis"
	goredis "github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	views      *dashboard.Registry
	cleanup    *cleanup.CleanupService
	monitoring *monitoring.Service

	db    database.DB
	redis *goredis.Client

	// cancels the base context of every request so open streams end on shutdown
	cancelBase context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	base, cancel := context.WithCancel(context.Background())
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			BaseContext:  func(net.Listener) context.Context { return base },
		},
		cancelBase: cancel,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := s.setup(ctx)
	cancel()
	if err != nil {
		return err
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// setup builds every service and the HTTP handler chain
func (s *Server) setup(ctx context.Context) error {
	cfg := s.config
	checks := map[string]resources.HealthCheck{}

	var counter repository.EventCounter
	if cfg.Redis.Enabled() {
		s.redis = redis.NewClient(cfg.Redis)
		if err := redis.Ping(ctx, s.redis); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		counter = redis.NewCounterRepository(s.redis, cfg.Redis.Prefix)
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, s.redis) }
		nuts.L.Infof("[Server] Event counters kept in redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}

	var audit repository.AuditRepository
	if cfg.Database.Enabled() {
		db, err := database.NewPostgresDB(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		s.db = db
		audit = postgres.NewEventRepository(db)
		checks["database"] = db.Ping
		nuts.L.Infof("[Server] Audit log kept in postgres database %s", cfg.Database.DBName)
	}

	s.monitoring = monitoring.NewService(counter, audit)

	channel, err := push.New(cfg.Push, cfg.Backend.URL)
	if err != nil {
		return fmt.Errorf("create push channel: %w", err)
	}
	renderer, err := render.New(cfg.Dashboard)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	client := backend.New(cfg.Backend)
	s.views = dashboard.NewRegistry(client, channel, cfg.Push.Event, s.monitoring)
	s.cleanup = cleanup.New(s.views)
	s.setupCleanupHandlers()

	router := api.NewRouter(resources.Deps{
		Store:     middleware.NewCookieStore(cfg.Session),
		Auth:      client,
		Source:    client,
		Views:     s.views,
		Sessions:  s.cleanup,
		Renderer:  renderer,
		Monitor:   s.monitoring,
		Heartbeat: cfg.Dashboard.HeartbeatInterval,
		Checks:    checks,
		Paths:     resources.DefaultPaths(),
	})

	s.srv.Handler = handlers.ProxyHeaders(
		handlers.CombinedLoggingHandler(os.Stdout,
			handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(router),
		),
	)
	return nil
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server with %d live views...", s.views.Count())

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.cancelBase()
	if err := s.srv.Shutdown(ctx); err != nil {
		nuts.L.Warnf("[Server] Graceful shutdown incomplete: %v", err)
		s.srv.Close()
	}
	s.close()

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			nuts.L.Warnf("[Server] Failed to close redis: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Failed to close database: %v", err)
		}
	}
}

func (s *Server) setupCleanupHandlers() {
	s.cleanup.OnCleanup(cleanup.EventViewsReset, func(id string) {
		nuts.L.Infof("[Cleanup] Live views of session %s redirected to login", id)
	})

	s.cleanup.OnCleanup(cleanup.EventSessionEnded, func(id string) {
		s.monitoring.RecordEvent(context.Background(), "session_ended", map[string]string{
			"session": id,
		})
	})
}
