package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s': %w (available: %v)", configName, ErrConfigNotFound, configIDs)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}

	log.WithFields(log.Fields{
		"session": sess.ID,
		"config":  info.ConfigName,
	}).Info("session created")

	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// touches LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// ActivateTile handles a click on a tile for a session
func (s *gameServiceImpl) ActivateTile(ctx context.Context, sessionID string, tile engine.TileID) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	update, err := sess.Engine.ActivateTile(tile)
	if err != nil {
		log.WithFields(log.Fields{
			"session": sessionID,
			"tile":    int(tile),
		}).WithError(err).Error("tile activation rejected")
		return nil, err
	}

	state := sess.Engine.GetState().Clone()
	log.WithFields(log.Fields{
		"session":   sessionID,
		"tile":      int(tile),
		"displaced": update.Displaced,
		"moves":     update.MoveCount,
		"won":       update.Won,
	}).Debug("tile activated")

	return &MoveResult{
		Accepted:  update.Accepted,
		Tile:      tile,
		Displaced: update.Displaced,
		MoveCount: update.MoveCount,
		Won:       update.Won,
		GameState: state,
		Message:   state.Message,
		Events:    extractEvents(update, state.Message),
	}, nil
}

// NewGame reshuffles the board of a session and resets its move counter
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	update := sess.Engine.NewGame(nil)
	state := sess.Engine.GetState().Clone()

	log.WithFields(log.Fields{
		"session":  sessionID,
		"games":    state.GamesStarted,
		"solvable": state.Solvable,
	}).Info("new game")

	return &MoveResult{
		Accepted:  true,
		MoveCount: update.MoveCount,
		Won:       update.Won,
		GameState: state,
		Message:   state.Message,
		Events:    extractEvents(update, state.Message),
	}, nil
}

// BulkActivate activates several tiles in sequence, optionally starting a new game first
func (s *gameServiceImpl) BulkActivate(ctx context.Context, sessionID string, tiles []engine.TileID, newGame bool) (*BulkActivateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkActivateResult{
		Requested: len(tiles),
		Events:    make([]GameEvent, 0),
	}

	if newGame {
		update := sess.Engine.NewGame(nil)
		result.Events = append(result.Events, extractEvents(update, sess.Engine.GetState().Message)...)
	}

	// Limit activations to prevent abuse
	if len(tiles) > engine.MaxBulkActivations {
		result.Truncated = true
		result.Limit = engine.MaxBulkActivations
		tiles = tiles[:engine.MaxBulkActivations]
	}

	for i, tile := range tiles {
		if sess.Engine.IsWon() {
			result.StoppedReason = "game already won"
			result.StopReasonCode = StopWon
			result.StoppedOnStep = i + 1
			break
		}

		update, err := sess.Engine.ActivateTile(tile)
		if err != nil {
			result.StoppedReason = fmt.Sprintf("step %d: %v", i+1, err)
			result.StopReasonCode = StopUnknownTile
			result.StoppedOnStep = i + 1
			log.WithFields(log.Fields{
				"session": sessionID,
				"tile":    int(tile),
				"step":    i + 1,
			}).WithError(err).Error("bulk activation stopped")
			break
		}

		result.Executed++
		if update.Accepted {
			result.Accepted++
		}
		result.Displaced += update.Displaced
		result.Events = append(result.Events, extractEvents(update, sess.Engine.GetState().Message)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:       i + 1,
			Tile:      tile,
			FreeCell:  update.FreeCell,
			Accepted:  update.Accepted,
			Displaced: update.Displaced,
			MoveCount: update.MoveCount,
			Won:       update.Won,
		})
	}

	state := sess.Engine.GetState().Clone()
	result.GameState = state
	result.MoveCount = state.MoveCount
	result.Won = state.Won
	result.MovableTiles = sess.Engine.GetMovableTiles()

	log.WithFields(log.Fields{
		"session":   sessionID,
		"executed":  result.Executed,
		"displaced": result.Displaced,
		"moves":     result.MoveCount,
		"won":       result.Won,
	}).Debug("bulk activation")

	return result, nil
}

// GetGameState returns a snapshot of the session's game state. Like every
// state the service hands out, it is copied under the lock and safe to encode
// while other commands run.
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	// touches LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return paginateHistory(sess.Engine.GetMoveHistory(), opts), nil
}

func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// extractEvents turns an engine update into outbound notifications
func extractEvents(update engine.Update, message string) []GameEvent {
	now := time.Now()
	moves := update.MoveCount

	if update.NewGame {
		freeCell := update.FreeCell
		events := []GameEvent{{
			Type:      EventNewGame,
			Message:   message,
			Timestamp: now,
			Positions: update.Positions,
			FreeCell:  &freeCell,
			MoveCount: &moves,
		}}
		if update.Won {
			events = append(events, GameEvent{Type: EventGameWon, Message: message, Timestamp: now, MoveCount: &moves})
		}
		return events
	}

	if !update.Accepted {
		return []GameEvent{{
			Type:      EventIgnored,
			Message:   message,
			Timestamp: now,
		}}
	}

	freeCell := update.FreeCell
	events := []GameEvent{
		{
			Type:      EventBoardUpdated,
			Message:   fmt.Sprintf("Tile %s slid %d", update.Tile.Label(), update.Displaced),
			Timestamp: now,
			Positions: update.Positions,
			FreeCell:  &freeCell,
		},
		{
			Type:      EventMoveCountChanged,
			Message:   message,
			Timestamp: now,
			MoveCount: &moves,
		},
	}

	if update.Won {
		events = append(events, GameEvent{
			Type:      EventGameWon,
			Message:   message,
			Timestamp: now,
			MoveCount: &moves,
		})
	}

	return events
}
