// CLAUDE:SUMMARY CLI entry point for recflow — interaction recording daemon with config, one-shot, and list modes.
// Command recflow records browser interactions into replayable Flows.
//
// Usage:
//
//	recflow -config recflow.yaml            # serve the HTTP/MCP control plane
//	recflow -url https://example.com        # record one session until Ctrl-C
//	recflow -list                           # list saved flows
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/flowstore"
	"github.com/hazyhaar/recflow/recorder"
)

func main() {
	configPath := flag.String("config", "", "path to recflow.yaml config file")
	singleURL := flag.String("url", "", "record a single session at this URL until interrupted")
	list := flag.Bool("list", false, "list saved flows and exit")
	dbPath := flag.String("db", "flows.db", "flow database path (for -url and -list)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *singleURL, *dbPath, *list); err != nil {
		logger.Error("recflow: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, singleURL, dbPath string, list bool) error {
	if list {
		return runList(ctx, dbPath)
	}
	if singleURL != "" {
		return runSingle(ctx, logger, singleURL, dbPath)
	}
	if configPath != "" {
		return runConfig(ctx, logger, configPath)
	}

	fmt.Fprintln(os.Stderr, "usage: recflow -config <file> | -url <url> | -list")
	os.Exit(1)
	return nil
}

func runList(ctx context.Context, dbPath string) error {
	store, err := flowstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	sums, err := store.List(ctx, 100)
	if err != nil {
		return err
	}
	for _, s := range sums {
		fmt.Printf("%s\t%s\t%d steps\n", s.ID, s.Name, s.StepCount)
	}
	return nil
}

// runSingle records one interactive session: open the URL, record until
// the signal context is cancelled, barrier-stop, save, print the flow.
func runSingle(ctx context.Context, logger *slog.Logger, url, dbPath string) error {
	store, err := flowstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cfg := &recorder.Config{}
	cfg.ApplyDefaults()

	rec := recorder.New(cfg, logger, store)
	if err := rec.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer rec.Stop(context.Background())

	sid, err := rec.StartSession(ctx, recorder.StartOptions{URL: url})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logger.Info("recflow: recording — interact in the browser, Ctrl-C to finish",
		"session", sid, "url", url)

	<-ctx.Done()

	// The signal context is spent; the barrier gets its own.
	f, stats, err := rec.StopSession(context.Background())
	if err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	if !stats.Ack {
		logger.Warn("recflow: stop barrier incomplete", "stats", stats)
	}

	data, _ := flow.Marshal(f)
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	return nil
}

func runConfig(ctx context.Context, logger *slog.Logger, path string) error {
	cfg, err := recorder.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := flowstore.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	rec := recorder.New(cfg, logger, store)
	if err := rec.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer rec.Stop(context.Background())

	svc := &recorder.Service{Rec: rec, Flows: store, Logger: logger}

	if cfg.Server.MCP == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "recflow",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("recflow: mcp server", "error", err)
			}
		}()
	}

	if cfg.Server.Addr != "" {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		svc.RegisterHTTP(r)

		srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background())
		}()

		logger.Info("recflow: control plane listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	<-ctx.Done()
	return nil
}
