package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - REST routes of the game plus the given metrics handler.
func NewRouter(handlers Handlers, metrics http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ping", handlers.PingHandler).Methods(http.MethodGet)

	router.HandleFunc("/players", handlers.GetPlayers).Methods(http.MethodGet)
	router.HandleFunc("/game", handlers.GetGame).Methods(http.MethodGet)
	router.HandleFunc("/stats", handlers.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/history", handlers.GetHistory).Methods(http.MethodGet)

	router.HandleFunc("/game/moves", handlers.MakeMove).Methods(http.MethodPost)
	router.HandleFunc("/game/reset", handlers.Reset).Methods(http.MethodPost)
	router.HandleFunc("/game/new-round", handlers.NewRound).Methods(http.MethodPost)

	router.Handle("/metrics", metrics).Methods(http.MethodGet)

	return router
}

// Start - serves the handler until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
