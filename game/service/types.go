package service

import (
	"time"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

// Event types emitted to the presentation layer
const (
	EventBoardUpdated     = "board_updated"
	EventMoveCountChanged = "move_count_changed"
	EventGameWon          = "game_won"
	EventNewGame          = "new_game"
	EventIgnored          = "ignored"
)

// Stop reason codes for bulk activation
const (
	StopWon         = "won"
	StopUnknownTile = "unknown_tile"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a tile activation or a new game
type MoveResult struct {
	Accepted  bool              `json:"accepted"`
	Tile      engine.TileID     `json:"tile,omitempty"`
	Displaced int               `json:"displaced"`
	MoveCount int               `json:"move_count"`
	Won       bool              `json:"won"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkActivateResult contains the result of several activations
type BulkActivateResult struct {
	Executed       int               `json:"executed"`
	Requested      int               `json:"requested"`
	Accepted       int               `json:"accepted"`
	Displaced      int               `json:"displaced"`
	MoveCount      int               `json:"move_count"`
	Won            bool              `json:"won"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // won|unknown_tile
	StoppedOnStep  int               `json:"stopped_on_step,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Steps          []StepInfo        `json:"steps,omitempty"`
	MovableTiles   []engine.TileID   `json:"movable_tiles,omitempty"`
}

// StepInfo is a compact record for each activation in a bulk call
type StepInfo struct {
	Idx       int             `json:"idx"`
	Tile      engine.TileID   `json:"tile"`
	FreeCell  engine.Position `json:"free_cell"`
	Accepted  bool            `json:"accepted"`
	Displaced int             `json:"displaced"`
	MoveCount int             `json:"move_count"`
	Won       bool            `json:"won,omitempty"`
}

// GameEvent represents an outbound notification for the presentation layer
type GameEvent struct {
	Type      string                            `json:"type"`
	Message   string                            `json:"message"`
	Timestamp time.Time                         `json:"timestamp"`
	Positions map[engine.TileID]engine.Position `json:"positions,omitempty"`
	FreeCell  *engine.Position                  `json:"free_cell,omitempty"`
	MoveCount *int                              `json:"move_count,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page" schema:"page"`
	Limit int    `json:"limit" schema:"limit"`
	Order string `json:"order" schema:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Seeded      bool   `json:"seeded"`
}
