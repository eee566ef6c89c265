package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petasbytes/turnflow/internal/config"
	"github.com/petasbytes/turnflow/internal/fsops"
	"github.com/petasbytes/turnflow/internal/llm"
	"github.com/petasbytes/turnflow/internal/metrics"
	"github.com/petasbytes/turnflow/internal/orchestrator"
	"github.com/petasbytes/turnflow/internal/provider"
	"github.com/petasbytes/turnflow/internal/safety"
	"github.com/petasbytes/turnflow/internal/toolexec"
	"github.com/petasbytes/turnflow/tools"
)

// app is the wired runtime shared by ask and chat.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	orch   *orchestrator.Orchestrator
	router *toolexec.Router

	closers []func() error
}

// appOptions lets tests replace the network-facing parts.
type appOptions struct {
	client   llm.Client
	registry prometheus.Registerer
	logOut   io.Writer
}

func newApp(ctx context.Context, flags *globalFlags, opts appOptions) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.maxIterations > 0 {
		cfg.MaxIterations = flags.maxIterations
	}

	level, _ := cfg.SlogLevel()
	if opts.logOut == nil {
		opts.logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(opts.logOut, &slog.HandlerOptions{Level: level}))

	a := &app{cfg: cfg, logger: logger}

	reg := opts.registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := metrics.NewCollectors(reg)
	if flags.metricsAddr != "" {
		if err := a.serveMetrics(flags.metricsAddr); err != nil {
			return nil, err
		}
	}

	client, model := opts.client, cfg.Model
	if client == nil {
		client, model, err = provider.New(cfg, nil)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	sb, err := safety.NewSandbox(cfg.ReadRoot)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("read root: %w", err)
	}
	catalogs := []toolexec.Catalog{tools.NewRegistry(collectors, tools.Builtin(fsops.New(sb))...)}
	for _, s := range cfg.MCPServers {
		c, err := toolexec.ConnectMCP(ctx, s.ServerConfig())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		catalogs = append(catalogs, c)
		logger.Info("mcp server connected", "name", s.Name, "tools", len(c.Declarations()))
	}
	a.router = toolexec.NewRouter(logger, catalogs...)

	a.orch = orchestrator.New(client, orchestrator.Config{
		Provider:      cfg.Provider,
		Model:         model,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		MaxIterations: cfg.MaxIterations,
		SystemPrompt:  cfg.SystemPrompt,
		Logger:        logger,
		Metrics:       collectors,
	})
	return a, nil
}

func (a *app) request(query, history string) orchestrator.Request {
	return orchestrator.Request{
		Query:    query,
		History:  history,
		Tools:    a.router.Declarations(),
		Executor: a.router,
	}
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := srv.Shutdown(ctx)
		// Serve may not have taken ownership of ln yet.
		_ = ln.Close()
		return err
	})
	a.logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

// Close releases MCP sessions and the metrics server.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown", "error", err)
		}
	}
	a.closers = nil
}
