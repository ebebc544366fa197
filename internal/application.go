package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/t3-store/internal/config"
	"github.com/rocketscienceinc/t3-store/internal/metrics"
	"github.com/rocketscienceinc/t3-store/internal/service"
	"github.com/rocketscienceinc/t3-store/internal/tictactoe"
	"github.com/rocketscienceinc/t3-store/transport/rest"
	"github.com/rocketscienceinc/t3-store/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	repo, closeStorage, err := openStateRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := tictactoe.NewStore(logger, repo, conf.Players, metrics.New(registry))
	if err != nil {
		return fmt.Errorf("could not create store: %w", err)
	}

	gameService := service.NewGameService(logger, store)
	wsServer := websocket.New(logger, gameService)

	unsubscribe := store.Subscribe(func(source tictactoe.Source) {
		if broadcastErr := wsServer.Broadcast(ctx); broadcastErr != nil {
			log.Error("failed to broadcast state", "source", source.String(), "error", broadcastErr)
		}
	})
	defer unsubscribe()

	// watch changes made by other processes
	watchErrCh := make(chan error, 1)
	go func() {
		if watchErr := store.WatchExternal(ctx, repo); watchErr != nil {
			log.Error("external watcher error", "error", watchErr)
			watchErrCh <- watchErr
		}
	}()

	router := rest.NewRouter(
		rest.NewHandlers(logger, gameService),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case err = <-watchErrCh:
		return fmt.Errorf("external watcher error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
