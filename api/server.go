package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
	"github.com/wricardo/mcp-training/fifteen/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	handler http.Handler
	decoder *schema.Decoder
}

// NewServer creates a new API server. When hub is set, commands sent by
// websocket clients are executed against gameService.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		decoder: dec,
	}

	s.setupRoutes()
	s.handler = Wrap(s.router, WithRequestID, Logging, Cors())

	if hub != nil {
		hub.SetCommandHandler(s.handleCommand)
	}
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/activate", s.handleActivate).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-activate", s.handleBulkActivate).Methods("POST")
	api.HandleFunc("/sessions/{id}/new-game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnknownTile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger(r).WithError(err).Error("request failed")
	}
	respondError(w, status, err.Error())
}

// lastEventType picks the event name used for the websocket broadcast
func lastEventType(events []service.GameEvent, fallback string) string {
	if len(events) == 0 {
		return fallback
	}
	return events[len(events)-1].Type
}

func (s *Server) broadcast(sessionID, event string, state *engine.GameState, events []service.GameEvent) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, event, state, events)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// listQuery holds the query parameters of GET /api/sessions
type listQuery struct {
	Sort  string `schema:"sort"`
	Order string `schema:"order"`
	Limit int    `schema:"limit"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid query: %v", err))
		return
	}
	if q.Sort != "created" {
		q.Sort = "accessed"
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}

	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	total := len(sessions)

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if q.Sort == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if q.Order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if q.Limit > 0 && q.Limit < len(sessions) {
		sessions = sessions[:q.Limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     q.Sort,
		"order":    q.Order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Tile int `json:"tile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ActivateTile(r.Context(), sessionID, engine.TileID(req.Tile))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, lastEventType(result.Events, service.EventBoardUpdated), result.GameState, result.Events)

	logger(r).WithFields(log.Fields{
		"session":   sessionID,
		"tile":      req.Tile,
		"accepted":  result.Accepted,
		"displaced": result.Displaced,
		"moves":     result.MoveCount,
		"won":       result.Won,
	}).Info("activate")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulkActivate(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Tiles   []int `json:"tiles"`
		NewGame bool  `json:"new_game,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tiles := make([]engine.TileID, len(req.Tiles))
	for i, t := range req.Tiles {
		tiles[i] = engine.TileID(t)
	}

	result, err := s.service.BulkActivate(r.Context(), sessionID, tiles, req.NewGame)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, lastEventType(result.Events, service.EventBoardUpdated), result.GameState, result.Events)

	logger(r).WithFields(log.Fields{
		"session":   sessionID,
		"executed":  result.Executed,
		"requested": result.Requested,
		"stop":      result.StopReasonCode,
		"moves":     result.MoveCount,
		"won":       result.Won,
	}).Info("bulk activate")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.NewGame(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, service.EventNewGame, result.GameState, result.Events)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var opts service.HistoryOptions
	if err := s.decoder.Decode(&opts, r.URL.Query()); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid query: %v", err))
		return
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

// WebSocket Handlers

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket updates are not enabled")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// handleCommand executes a command received over a websocket connection
func (s *Server) handleCommand(ctx context.Context, sessionID string, cmd websocket.Command) error {
	var (
		result *service.MoveResult
		err    error
		event  string
	)

	switch cmd.Action {
	case websocket.ActionActivate:
		result, err = s.service.ActivateTile(ctx, sessionID, engine.TileID(cmd.Tile))
		event = service.EventBoardUpdated
	case websocket.ActionNewGame:
		result, err = s.service.NewGame(ctx, sessionID)
		event = service.EventNewGame
	default:
		return fmt.Errorf("%w: %q", websocket.ErrUnknownAction, cmd.Action)
	}
	if err != nil {
		return err
	}

	s.broadcast(sessionID, lastEventType(result.Events, event), result.GameState, result.Events)
	return nil
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
