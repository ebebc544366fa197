package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/t3-store/internal/service"
)

const shutdownTimeout = 5 * time.Second

type gameService interface {
	Snapshot(ctx context.Context) (*service.Snapshot, error)

	MakeMove(ctx context.Context, squareID int) (*service.Snapshot, error)
	Reset(ctx context.Context) (*service.Snapshot, error)
	NewRound(ctx context.Context) (*service.Snapshot, error)
}

type Server struct {
	logger      *slog.Logger
	gameService gameService
	upgrader    websocket.Upgrader

	clientsMutex sync.RWMutex
	clients      map[*client]struct{}

	// serializes snapshot reads with their delivery, so no client ends on an older snapshot
	broadcastMutex sync.Mutex

	handlers map[string]func(ctx context.Context, message *Message, sender *client) error
}

func New(logger *slog.Logger, gameService gameService) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameService: gameService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		clients:  make(map[*client]struct{}),
		handlers: make(map[string]func(context.Context, *Message, *client) error),
	}

	server.handlers[actionGameMove] = server.handleMove
	server.handlers[actionGameReset] = server.handleReset
	server.handlers[actionNewRound] = server.handleNewRound

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		that.closeAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler - serves the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Broadcast - pushes the current snapshot to every connected client.
func (that *Server) Broadcast(ctx context.Context) error {
	that.broadcastMutex.Lock()
	defer that.broadcastMutex.Unlock()

	snapshot, err := that.gameService.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	data, err := encodeMessage(actionStateChange, snapshotPayload(snapshot))
	if err != nil {
		return err
	}

	that.clientsMutex.RLock()
	var slow []*client
	for c := range that.clients {
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	that.clientsMutex.RUnlock()

	for _, c := range slow {
		that.logger.Warn("dropping slow client", "remote", c.remote)
		that.unregister(c)
	}

	return nil
}

// Clients - number of connected clients.
func (that *Server) Clients() int {
	that.clientsMutex.RLock()
	defer that.clientsMutex.RUnlock()

	return len(that.clients)
}

// upgradeToWebSocket - upgrades the connection, sends the snapshot and serves the client until it leaves.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(log, conn)
	go c.writePump()

	if err = that.connect(ctx, c); err != nil {
		log.Error("failed to send snapshot", "error", err)
		return
	}
	defer that.unregister(c)

	log.Info("WebSocket connection established")

	c.readPump(func(data []byte) {
		that.handleMessage(ctx, c, data)
	})
}

// connect - registers the client and queues its first snapshot. Registering first means a commit
// landing meanwhile is broadcast to the client after this snapshot.
func (that *Server) connect(ctx context.Context, c *client) error {
	that.broadcastMutex.Lock()
	defer that.broadcastMutex.Unlock()

	that.register(c)

	snapshot, err := that.gameService.Snapshot(ctx)
	if err != nil {
		that.sendError(c, err)
		that.unregister(c)

		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err = that.send(c, actionStateChange, snapshotPayload(snapshot)); err != nil {
		that.unregister(c)

		return err
	}

	return nil
}

func (that *Server) handleMessage(ctx context.Context, c *client, data []byte) {
	log := that.logger.With("method", "handleMessage")

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		return
	}

	if err := handler(ctx, &message, c); err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
	}
}

func (that *Server) register(c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	that.clients[c] = struct{}{}
}

func (that *Server) unregister(c *client) {
	that.clientsMutex.Lock()
	_, ok := that.clients[c]
	delete(that.clients, c)
	that.clientsMutex.Unlock()

	if ok {
		c.close()
	}
}

func (that *Server) closeAll() {
	that.clientsMutex.Lock()
	clients := that.clients
	that.clients = make(map[*client]struct{})
	that.clientsMutex.Unlock()

	for c := range clients {
		c.close()
	}
}

func (that *Server) send(c *client, action string, payload Payload) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	if !c.enqueue(data) {
		return errors.New("send buffer is full")
	}

	return nil
}

func (that *Server) sendError(c *client, err error) {
	if sendErr := that.send(c, actionError, Payload{Error: err.Error()}); sendErr != nil {
		that.logger.Error("failed to send error response", "error", sendErr)
	}
}
