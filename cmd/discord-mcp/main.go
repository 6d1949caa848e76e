// Package main provides the entry point for the discord-mcp server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "github.com/ExilProductions/discord-mcp/internal/server"
	"github.com/ExilProductions/discord-mcp/pkg/admin"
	"github.com/ExilProductions/discord-mcp/pkg/auth"
	"github.com/ExilProductions/discord-mcp/pkg/httpmiddleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	transport   string
	address     string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.transport, "transport", "", "Transport type: stdio, http")
	flag.StringVar(&opts.address, "address", "", "Listen address for HTTP transport")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func createServer(opts serverOptions) (*mcpserver.Server, error) {
	if opts.configPath != "" {
		return mcpserver.NewFromFile(opts.configPath)
	}
	return mcpserver.NewWithDefaults()
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("discord-mcp version %s\n", mcpserver.Version)
		return nil
	}

	ctx := setupSignalHandler()

	srv, err := createServer(opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	// Flags win over config.
	if opts.transport == "" {
		opts.transport = srv.Config.Server.Transport
	}
	if opts.address == "" {
		opts.address = srv.Config.Server.Address
	}

	return startServer(ctx, srv, opts)
}

func startServer(ctx context.Context, srv *mcpserver.Server, opts serverOptions) error {
	switch opts.transport {
	case "stdio":
		return srv.MCP.Run(stdioContext(ctx, srv.Config.Server.Token), &mcp.StdioTransport{})
	case "http":
		return serveHTTP(ctx, srv, opts.address)
	default:
		return fmt.Errorf("unknown transport: %s", opts.transport)
	}
}

// stdioContext carries the configured bot token on the stdio run context, so
// tool calls arriving without transport headers still bind a session.
func stdioContext(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return auth.WithToken(ctx, token)
}

func serveHTTP(ctx context.Context, srv *mcpserver.Server, address string) error {
	streamHandler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return srv.MCP }, nil)

	var mcpHandler http.Handler = streamHandler
	if srv.Config.Server.Token != "" {
		mcpHandler = httpmiddleware.StaticToken(srv.Config.Server.Token, mcpHandler)
	}
	mcpHandler = httpmiddleware.ExtractAuth(mcpHandler)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/", mcpHandler)
	mux.HandleFunc("/healthz", srv.Health.LivenessHandler())
	mux.HandleFunc("/readyz", srv.Health.ReadinessHandler())

	if store := srv.AuditStore(); store != nil && srv.Config.Audit.AdminKey != "" {
		mux.Handle("/api/v1/admin/", admin.NewHandler(store, srv.Config.Audit.AdminKey))
	}

	httpServer := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "address", address)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
