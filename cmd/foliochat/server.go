package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/anshaggr/foliochat/internal/api"
	"github.com/anshaggr/foliochat/internal/component"
	"github.com/anshaggr/foliochat/internal/config"
	"github.com/anshaggr/foliochat/internal/conversation"
	"github.com/anshaggr/foliochat/internal/credential"
	"github.com/anshaggr/foliochat/internal/ingest"
	"github.com/anshaggr/foliochat/internal/intent"
	"github.com/anshaggr/foliochat/internal/knowledge"
	"github.com/anshaggr/foliochat/internal/processor"
	"github.com/anshaggr/foliochat/internal/provider"
	"github.com/anshaggr/foliochat/internal/rag"
	"github.com/anshaggr/foliochat/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the foliochat server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show foliochat system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

const healthCheckInterval = 5 * time.Minute

func runServer() error {
	fmt.Fprintf(os.Stderr, "foliochat version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential pool: fails fast when no API keys are configured.
	factory, err := provider.NewFactory(provider.Config{
		Backend:       cfg.Provider.Backend,
		GenerateModel: cfg.Provider.GenerateModel,
		EmbedModel:    cfg.Provider.EmbedModel,
		BaseURL:       cfg.Provider.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("configuring provider: %w", err)
	}
	pool, err := credential.NewPool(config.Credentials(cfg.Provider.Backend), factory, credential.Limits{
		RequestsPerMinute: cfg.Pool.RequestsPerMinute,
		RequestsPerDay:    cfg.Pool.RequestsPerDay,
		Cooldown:          time.Duration(cfg.Pool.CooldownSeconds) * time.Second,
		WaitTimeout:       time.Duration(cfg.Pool.WaitTimeoutSeconds) * time.Second,
		PollInterval:      time.Second,
		MaxRetries:        cfg.Pool.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("initializing credential pool: %w", err)
	}
	slog.Info("credential pool ready", "credentials", pool.Size())

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Knowledge base: seeded at startup, embeddings cached in SQLite so
	// restarts do not re-embed the fixed corpus.
	kb := knowledge.NewStore(pool, store, cfg.Provider.EmbedModel)
	seedCtx, cancelSeed := context.WithTimeout(ctx, 5*time.Minute)
	err = kb.Seed(seedCtx)
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seeding knowledge base: %w", err)
	}

	if cfg.Resume.Path != "" {
		ingestor := ingest.New(kb)
		if _, err := ingestor.IngestResume(ctx, cfg.Resume.Path); err != nil {
			slog.Warn("resume ingestion failed, continuing without it", "path", cfg.Resume.Path, "error", err)
		}
	}

	// Session store: Redis when configured, in-process otherwise.
	var sessions conversation.Store
	if cfg.Sessions.RedisAddr != "" {
		ttl := time.Duration(cfg.Sessions.TTLMinutes) * time.Minute
		redisStore, err := conversation.NewRedisStore(ctx, cfg.Sessions.RedisAddr, ttl)
		if err != nil {
			return fmt.Errorf("initializing redis sessions: %w", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		slog.Info("using redis session store", "addr", cfg.Sessions.RedisAddr, "ttl", ttl)
	} else {
		sessions = conversation.NewMemoryStore()
	}

	engine := rag.NewEngine(kb, pool)
	proc := processor.New(intent.NewAnalyzer())
	handler := component.NewHandler(proc, engine, sessions)

	go pool.RunHealthChecks(ctx, healthCheckInterval)

	apiHandler := api.NewHandler(api.Deps{
		Handler:   handler,
		Knowledge: kb,
		Ingestor:  ingest.New(kb),
		Pool:      pool,
		Store:     store,
		Sessions:  sessions,
		Token:     cfg.API.AdminToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: apiHandler,
	}

	// MCP server over stdio, same pipeline as the HTTP surface.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Handler:   handler,
		Retriever: kb,
		Store:     store,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "foliochat listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Provider", "%s", cfg.Provider.Backend)
	printStatus("Generate model", "%s", cfg.Provider.GenerateModel)
	printStatus("Embed model", "%s", cfg.Provider.EmbedModel)
	printStatus("Credentials", "%d configured", len(config.Credentials(cfg.Provider.Backend)))
	if cfg.Sessions.RedisAddr != "" {
		printStatus("Sessions", "redis at %s", cfg.Sessions.RedisAddr)
	} else {
		printStatus("Sessions", "in-memory")
	}
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
