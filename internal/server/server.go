// Package server assembles the MCP server from its parts: session registry,
// event streams, credential binder, middleware chain and the Discord toolkit.
package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/audit"
	"github.com/ExilProductions/discord-mcp/pkg/binder"
	"github.com/ExilProductions/discord-mcp/pkg/config"
	"github.com/ExilProductions/discord-mcp/pkg/database/migrate"
	dc "github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/events"
	"github.com/ExilProductions/discord-mcp/pkg/health"
	"github.com/ExilProductions/discord-mcp/pkg/middleware"
	"github.com/ExilProductions/discord-mcp/pkg/session"
	toolkit "github.com/ExilProductions/discord-mcp/pkg/toolkits/discord"

	_ "github.com/lib/pq"
)

// Version is set at build time.
var Version = "dev"

// sweepInterval is how often idle sessions are checked for expiry.
const sweepInterval = 30 * time.Second

// Server owns the MCP server and everything it runs on.
type Server struct {
	MCP      *mcp.Server
	Config   *config.Config
	Registry *session.Registry
	Streams  *events.Manager
	Binder   *binder.Binder
	Health   *health.Checker

	auditLogger audit.Logger
	auditStore  *audit.PostgresStore
	auditDB     *sql.DB
}

// AuditStore returns the Postgres audit store, or nil when auditing goes to
// the process log.
func (s *Server) AuditStore() *audit.PostgresStore {
	return s.auditStore
}

// New wires a Server from the given configuration.
func New(cfg *config.Config) (*Server, error) {
	configureLogging(cfg.Server.LogLevel)

	streams := events.NewManager(cfg.Events.BufferSize)

	var registry *session.Registry
	var b *binder.Binder

	// The client factory routes gateway events into the session's stream,
	// so the binder and registry reference each other through it.
	registry = session.NewRegistry(func(token, sessionID string) *dc.Client {
		return dc.NewClient(token, sessionID, b.PublishCallback(),
			dc.WithShardCount(cfg.Discord.MaxShards),
			dc.WithReadyTimeout(cfg.Discord.ReadyTimeout),
		)
	})
	b = binder.New(registry, streams)

	srv := &Server{
		Config:   cfg,
		Registry: registry,
		Streams:  streams,
		Binder:   b,
		Health:   health.NewChecker(registry),
	}

	if err := srv.setupAudit(); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: Version,
	}, nil)
	mcpServer.AddReceivingMiddleware(
		middleware.Logging(),
		middleware.Auth(b),
		middleware.Audit(srv.auditLogger),
	)

	toolkit.New(registry, streams, b).RegisterTools(mcpServer)
	srv.MCP = mcpServer

	registry.StartSweeper(sweepInterval, cfg.Discord.SessionTimeout)
	srv.Health.SetReady()

	return srv, nil
}

// NewFromFile loads the config at path and wires a Server from it.
func NewFromFile(path string) (*Server, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// NewWithDefaults wires a Server from environment variables alone.
func NewWithDefaults() (*Server, error) {
	return New(config.FromEnv())
}

// Close tears down sessions, the sweeper and the audit sink.
func (s *Server) Close() error {
	s.Health.SetDraining()
	err := s.Registry.Close()
	if s.auditLogger != nil {
		if cerr := s.auditLogger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if s.auditDB != nil {
		if cerr := s.auditDB.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// setupAudit selects the audit sink. With a Postgres DSN configured the sink
// is the audit_logs table, migrated on startup; otherwise events go to slog.
func (s *Server) setupAudit() error {
	if !s.Config.Audit.Enabled || s.Config.Audit.PostgresDSN == "" {
		s.auditLogger = audit.SlogLogger{}
		return nil
	}

	db, err := sql.Open("postgres", s.Config.Audit.PostgresDSN)
	if err != nil {
		return fmt.Errorf("opening audit database: %w", err)
	}
	if err := migrate.Run(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrating audit database: %w", err)
	}

	s.auditDB = db
	s.auditStore = audit.NewPostgresStore(db)
	s.auditLogger = s.auditStore
	slog.Info("audit logging to postgres enabled")
	return nil
}

func configureLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
