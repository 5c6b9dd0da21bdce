package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stemma/internal/canvas"
	"stemma/internal/config"
	"stemma/internal/geom"
	"stemma/internal/handler"
	"stemma/internal/hub"
	"stemma/internal/loader"
	"stemma/internal/logging"
	"stemma/internal/metrics"
	"stemma/internal/repository"
	"stemma/internal/repository/sqlite"
	"stemma/internal/service"
	"stemma/internal/watcher"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		addr    string
		seed    string
		restore string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the canvas HTTP API, SSE events and the input websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()
			if path != "" {
				log.Info("config loaded", zap.String("path", path))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, path, log, serveFlags{seed: seed, restore: restore, watch: watch})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	cmd.Flags().StringVar(&seed, "seed", "", "Family YAML to import at startup")
	cmd.Flags().StringVar(&restore, "restore", "", "Stored layout to restore at startup")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the style and log level when the config file changes")

	return cmd
}

// defaultBounds is the surface assumed before any client reports its own
var defaultBounds = geom.Rectangle{Width: 800, Height: 600}

type serveFlags struct {
	seed    string
	restore string
	watch   bool
}

func serve(ctx context.Context, cfg *config.Config, cfgPath string, log *logging.Logger, flags serveFlags) error {
	style, err := cfg.RenderStyle()
	if err != nil {
		return err
	}

	// Initialize SQLite repository
	var store repository.LayoutStore
	if cfg.Database.Path != "" {
		repo, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer repo.Close()
		store = repo
		log.Info("database opened", zap.String("path", cfg.Database.Path))
	}

	collector := metrics.NewCollector("stemma")
	eventBus := service.NewEventBus()
	engine := canvas.New(cfg.Params(), style)
	svc := service.NewCanvasService(engine, store, eventBus, collector, log.Logger, service.Options{
		TickInterval: cfg.Canvas.TickInterval.Duration(),
		QueueSize:    cfg.Canvas.QueueSize,
	})

	svcCtx, svcCancel := context.WithCancel(context.Background())
	defer func() {
		svcCancel()
		<-svc.Done()
	}()
	go func() {
		if err := svc.Run(svcCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("canvas loop stopped", zap.Error(err))
		}
	}()

	// SSE hub fed by the event bus
	sseHub := hub.New(log.Logger)
	go sseHub.Run(svcCtx)

	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	defer eventBus.Unsubscribe(events)
	go func() {
		for {
			select {
			case ev := <-events:
				sseHub.Broadcast(ev)
			case <-svcCtx.Done():
				return
			}
		}
	}()

	if err := startup(ctx, svc, flags, log); err != nil {
		return err
	}

	if flags.watch && cfgPath != "" {
		w := watcher.New(cfgPath, func() { reloadConfig(ctx, cfgPath, svc, log) }, log.Logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	canvasHandler := handler.NewCanvasHandler(svc, log.Logger)
	var inputLimiter *rate.Limiter
	streamLimiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Server.InputRate > 0 {
		inputLimiter = rate.NewLimiter(rate.Limit(cfg.Server.InputRate), cfg.Server.InputBurst)
		streamLimiter = rate.NewLimiter(rate.Limit(cfg.Server.InputRate), cfg.Server.InputBurst)
	}

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.NewRouter(handler.Routes{
			Canvas:       canvasHandler,
			Stream:       handler.NewInputStream(canvasHandler, streamLimiter, log.Logger),
			Events:       sseHub,
			Metrics:      collector,
			InputLimiter: inputLimiter,
			Logger:       log.Logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

// startup applies the --restore and --seed flags, in that order
func startup(ctx context.Context, svc *service.CanvasService, flags serveFlags, log *logging.Logger) error {
	if flags.restore != "" {
		if err := svc.Restore(ctx, flags.restore); err != nil {
			return err
		}
	}
	if flags.seed != "" {
		family, err := loader.LoadYAML(flags.seed)
		if err != nil {
			return err
		}
		// Roots land at the visible center, which needs surface bounds
		if err := svc.Resize(ctx, defaultBounds); err != nil {
			return err
		}
		ids, err := svc.ImportFamily(ctx, family)
		if err != nil {
			return err
		}
		log.Info("seed imported", zap.String("path", flags.seed), zap.Int("people", len(ids)))
	}
	return nil
}

// reloadConfig applies the parts of a changed config that take effect live
func reloadConfig(ctx context.Context, path string, svc *service.CanvasService, log *logging.Logger) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		log.Warn("config reload failed", zap.Error(err))
		return
	}
	style, err := cfg.RenderStyle()
	if err != nil {
		log.Warn("config reload failed", zap.Error(err))
		return
	}

	reloadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := svc.SetStyle(reloadCtx, style); err != nil {
		log.Warn("style reload failed", zap.Error(err))
		return
	}
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("log level reload failed", zap.Error(err))
	}
	log.Info("config reloaded", zap.String("path", path))
}
