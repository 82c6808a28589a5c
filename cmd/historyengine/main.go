// Command historyengine runs the nation/territory conquest game server.
//
// Architecture Overview:
// - Each room runs its own tick loop (internal/scheduler) advancing nation
//   state at a fixed period
// - Clients submit gameplay commands over HTTP, validated synchronously and
//   queued for the next tick
// - Clients subscribe to a room's state stream over WebSocket; each
//   subscriber gets tailored full-or-delta territory payloads
//
// Connection Flow:
// 1. A client creates a room (POST /rooms) or joins one with a code
//    (POST /rooms/{roomId}/join)
// 2. The client opens a WebSocket to /ws and sends a "subscribe" message
// 3. The server streams "state" messages at the room's tick rate
// 4. The client submits commands (POST /rooms/{roomId}/command); accepted
//    commands take effect on the next tick
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/apperr"
	"github.com/s4lvi/historyengine-sub001/internal/cellstore"
	"github.com/s4lvi/historyengine-sub001/internal/command"
	"github.com/s4lvi/historyengine-sub001/internal/config"
	"github.com/s4lvi/historyengine-sub001/internal/hub"
	"github.com/s4lvi/historyengine-sub001/internal/logging"
	"github.com/s4lvi/historyengine-sub001/internal/manager"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/store"
	"github.com/s4lvi/historyengine-sub001/internal/store/pgstore"
)

func main() {
	configPath := flag.String("config", os.Getenv("HISTORYENGINE_CONFIG"), "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "historyengine: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "historyengine: logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if cfg.Server.ClearRooms || cfg.Server.ResetOnBoot {
		if err := st.Reset(bootCtx); err != nil {
			log.Warn("reset on boot failed", zap.Error(err))
		}
	}
	cancelBoot()

	h := hub.New(log)
	mgr := manager.New(h, st, cfg.Server.TickPeriod, cfg.Server.IdleRoomTTL, log)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go mgr.RunSweeper(sweepCtx, cfg.Server.IdleSweepPeriod)

	srv := newServer(mgr, h, cfg, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.BindAddress,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("historyengine listening", zap.String("addr", cfg.Server.BindAddress))
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	case <-sigCh:
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
		}
	}
}

func openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return pgstore.Connect(context.Background(), cfg.Store.DSN, log)
	default:
		return store.NewMemStore(), nil
	}
}

// server wires HTTP and WebSocket handlers to the room manager and hub. It
// plays the composition role the teacher's GameServer played, widened from
// a single /ws endpoint to the room-lifecycle and command-submission REST
// surface a territory game needs.
type server struct {
	mgr      *manager.Manager
	hub      *hub.Hub
	cfg      *config.Config
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func newServer(mgr *manager.Manager, h *hub.Hub, cfg *config.Config, log *zap.Logger) *server {
	return &server{
		mgr: mgr,
		hub: h,
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return cfg.Server.EnableCORS
			},
		},
	}
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomId}", s.handleRoomMetadata).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}/map", s.handleRoomMap).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}/join", s.handleJoinRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomId}/command", s.handleCommand).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRoomRequest struct {
	RoomName        string `json:"roomName"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Seed            uint64 `json:"seed"`
	CreatorID       string `json:"creatorId"`
	CreatorPassword string `json:"creatorPassword"`
}

func (s *server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidInput("malformed request body: %v", err))
		return
	}
	if req.CreatorID == "" {
		writeError(w, apperr.InvalidInput("creatorId is required"))
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, apperr.InvalidInput("width and height must be positive"))
		return
	}

	created, err := s.mgr.CreateRoom(r.Context(), manager.CreateRoomParams{
		RoomName:        req.RoomName,
		Width:           req.Width,
		Height:          req.Height,
		Seed:            req.Seed,
		MapConfig:       s.cfg.Map,
		GameplayConfig:  s.cfg.Gameplay,
		CreatorID:       req.CreatorID,
		CreatorPassword: req.CreatorPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleRoomMetadata(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	handle, _, _, ok := s.mgr.GetRoom(roomID)
	if !ok {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	snap := handle.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"roomId":      snap.RoomID,
		"roomName":    snap.RoomName,
		"status":      snap.Status,
		"creator":     snap.Creator,
		"tickCount":   snap.TickCount,
		"playerCount": len(snap.Players),
	})
}

func (s *server) handleRoomMap(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	width, height, cfg, ok := s.mgr.MapMetadata(roomID)
	if !ok {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}

	start, end := 0, height
	if v := r.URL.Query().Get("startRow"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			start = n
		}
	}
	if v := r.URL.Query().Get("endRow"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			end = n
		}
	}
	if start == 0 && end == height && r.URL.Query().Get("endRow") == "" && r.URL.Query().Get("startRow") == "" {
		end = min(height, cellstore.DefaultChunkRows)
	}

	rows, err := s.mgr.MapChunk(roomID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"width":    width,
		"height":   height,
		"seaLevel": cfg.SeaLevel,
		"startRow": start,
		"endRow":   end,
		"rows":     rows,
	})
}

type joinRoomRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	JoinCode string `json:"joinCode"`
}

func (s *server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidInput("malformed request body: %v", err))
		return
	}
	if req.UserID == "" {
		writeError(w, apperr.InvalidInput("userId is required"))
		return
	}
	if err := s.mgr.JoinRoom(roomID, req.UserID, req.Password, req.JoinCode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"roomId": roomID, "userId": req.UserID})
}

type commandRequest struct {
	Kind     string         `json:"kind"`
	UserID   string         `json:"userId"`
	Password string         `json:"password"`
	Fields   map[string]any `json:"fields"`
}

// handleCommand is the single intake point for every gameplay command
// (§4.I): found/build/arrow/troop-target/attack-percent/quit/player-settings
// all validate and enqueue here. pause/unpause/end validate the same way
// (creator-only) but dispatch straight to the scheduler/manager instead of
// the tick queue, since pausing has to stop the ticker itself.
func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidInput("malformed request body: %v", err))
		return
	}

	handle, m, queue, ok := s.mgr.GetRoom(roomID)
	if !ok {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}

	raw := command.RawCommand{Kind: req.Kind, UserID: req.UserID, Password: req.Password, Fields: req.Fields}
	cmd, verr := command.Validate(raw, handle.Load(), m)
	if verr != nil {
		writeError(w, verr)
		return
	}

	switch cmd.Kind {
	case command.KindPause:
		if err := s.mgr.PauseWorker(roomID, req.UserID); err != nil {
			writeError(w, err)
			return
		}
	case command.KindUnpause:
		if err := s.mgr.UnpauseWorker(roomID, req.UserID); err != nil {
			writeError(w, err)
			return
		}
	case command.KindEnd:
		if err := s.mgr.EndRoom(roomID, req.UserID); err != nil {
			writeError(w, err)
			return
		}
	default:
		queue.Enqueue(cmd)
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	lookup := func(roomID string) (*room.State, bool) {
		handle, _, _, ok := s.mgr.GetRoom(roomID)
		if !ok {
			return nil, false
		}
		return handle.Load(), true
	}

	sub := hub.NewSubscriber(conn, s.hub, s.mgr.Authenticate, lookup, s.log)
	sub.Serve() // blocks until the connection closes
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	gerr, ok := apperr.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, statusForKind(gerr.Kind), map[string]string{"error": gerr.Error()})
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindAuthFailed:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnaffordable:
		return http.StatusPaymentRequired
	case apperr.KindGameEnded:
		return http.StatusGone
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
