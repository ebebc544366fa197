package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
	"github.com/rocketscienceinc/t3-store/internal/service"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	GetPlayers(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)

	MakeMove(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	NewRound(w http.ResponseWriter, r *http.Request)
}

type gameService interface {
	Players() []entity.Player
	Snapshot(ctx context.Context) (*service.Snapshot, error)
	Stats(ctx context.Context) (*entity.Stats, error)
	History(ctx context.Context) (*entity.History, error)

	MakeMove(ctx context.Context, squareID int) (*service.Snapshot, error)
	Reset(ctx context.Context) (*service.Snapshot, error)
	NewRound(ctx context.Context) (*service.Snapshot, error)
}

type moveRequest struct {
	SquareID *int `json:"squareId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger      *slog.Logger
	gameService gameService
}

func NewHandlers(logger *slog.Logger, gameService gameService) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		gameService: gameService,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) GetPlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, that.gameService.Players())
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameService.Snapshot(r.Context())
	that.respond(w, "GetGame", snapshot, err)
}

func (that *handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.gameService.Stats(r.Context())
	that.respond(w, "GetStats", stats, err)
}

func (that *handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := that.gameService.History(r.Context())
	that.respond(w, "GetHistory", history, err)
}

func (that *handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SquareID == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "squareId is required"})
		return
	}

	snapshot, err := that.gameService.MakeMove(r.Context(), *req.SquareID)
	that.respond(w, "MakeMove", snapshot, err)
}

func (that *handlers) Reset(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameService.Reset(r.Context())
	that.respond(w, "Reset", snapshot, err)
}

func (that *handlers) NewRound(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameService.NewRound(r.Context())
	that.respond(w, "NewRound", snapshot, err)
}

func (that *handlers) respond(w http.ResponseWriter, method string, body any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, body)
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})

		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
