package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/config"
	"github.com/1broseidon/winserv/internal/daemon"
	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/httpapi"
	"github.com/1broseidon/winserv/internal/inspect"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/metrics"
	"github.com/1broseidon/winserv/internal/runtimepath"
	"github.com/1broseidon/winserv/internal/server"
	"github.com/1broseidon/winserv/internal/x11"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/winserv/config.yaml)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runServe(cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	socketPath, err := runtimepath.ResolveSocket(cfg.SocketPath)
	if err != nil {
		return err
	}

	loop := daemon.NewLoop(daemon.LoopConfig{
		ProbeInterval: cfg.PingInterval,
		FrameInterval: cfg.FrameInterval(),
		Logger:        logger,
	})

	bridge, closeBridge, err := newBridge(cfg, loop, logger)
	if err != nil {
		return err
	}
	defer closeBridge()

	tracerProvider, shutdownTracing, err := newTracerProvider(cfg.Tracing)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	saver := config.NewSaver(cfg, logger)
	defer saver.Close()

	desk, err := desktop.New(cfg.Desktop(), bridge,
		desktop.WithLogger(logger),
		desktop.WithPersist(func(s desktop.Settings) error {
			saver.Queue(s)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("invalid desktop settings: %w", err)
	}
	if path := cfg.Wallpaper.Path; path != "" {
		if img, err := desktop.LoadWallpaper(path); err != nil {
			logger.Warn("failed to load wallpaper", "path", path, "error", err)
		} else {
			desk.SetWallpaper(path, img)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(server.Config{
		Loop:    loop,
		Bridge:  bridge,
		Desktop: desk,
		Metrics: metrics.New(metrics.WithRegistry(registry), metrics.WithTracerProvider(tracerProvider)),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	listener, err := ipc.Listen(socketPath)
	if err != nil {
		return err
	}
	go func() {
		if err := listener.Serve(srv.Accept); err != nil {
			log.Printf("socket listener stopped: %v", err)
		}
	}()

	var httpSrv *http.Server
	if cfg.HTTP.Listen != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           httpapi.NewRouter(httpConfig(cfg, srv, registry, logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("HTTP listening on %s", cfg.HTTP.Listen)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	log.Printf("winserv started (backend: %s, socket: %s)", cfg.Backend, socketPath)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	log.Println("Shutting down winserv...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	listener.Close()
	if httpSrv != nil {
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("connection shutdown: %v", err)
	}
	stopLoop()
	<-loop.Done()
	return nil
}

func newBridge(cfg *config.Config, loop *daemon.Loop, logger *slog.Logger) (compositor.Bridge, func(), error) {
	switch cfg.Backend {
	case config.BackendX11:
		conn, err := x11.NewConnection(cfg.Display)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to X display: %w", err)
		}
		bridge, err := x11.NewBridge(conn, logger, func(fn func()) { loop.Post(fn) })
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		go conn.EventLoop()
		return bridge, conn.Close, nil
	default:
		screen := gfx.Rect{}.WithSize(gfx.Size{Width: cfg.Screen.Width, Height: cfg.Screen.Height})
		return compositor.NewScene(screen, logger), func() {}, nil
	}
}

// newTracerProvider builds the provider for dispatch spans and installs it
// globally. The returned func flushes and stops it.
func newTracerProvider(tc config.TracingConfig) (trace.TracerProvider, func(), error) {
	if tc.Exporter != config.TracingStdout {
		return noop.NewTracerProvider(), func() {}, nil
	}
	out := os.Stderr
	if tc.Path != "" {
		f, err := os.OpenFile(tc.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		out = f
	}
	tp, err := metrics.NewStdoutTracerProvider(out, version)
	if err != nil {
		if out != os.Stderr {
			out.Close()
		}
		return nil, nil, err
	}
	otel.SetTracerProvider(tp)
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("trace shutdown: %v", err)
		}
		if out != os.Stderr {
			out.Close()
		}
	}, nil
}

func httpConfig(cfg *config.Config, srv *server.Server, registry *prometheus.Registry, logger *slog.Logger) httpapi.Config {
	hc := httpapi.Config{Source: srv, Logger: logger}
	if cfg.HTTP.WebSocket {
		hc.Accept = srv.Accept
	}
	if cfg.HTTP.Metrics {
		hc.Gatherer = registry
	}
	if cfg.HTTP.MCP {
		hc.MCP = inspect.NewServer(srv).Handler()
	}
	return hc
}
