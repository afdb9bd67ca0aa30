package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	NewGame(r *rand.Rand) Update
	IsWon() bool
	GetMoveCount() int

	// Board queries
	FreeCells() []Position
	LocateTile(id TileID) (Position, error)
	CheckWin() bool
	GetMovableTiles() []TileID

	// Tile operations
	ActivateTile(id TileID) (Update, error)
	CanActivate(id TileID) bool

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
}

// NewEngine creates a new game engine with the provided configuration.
// A nil r draws from a source seeded by config.Seed.
func NewEngine(config *GameConfig, r *rand.Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if r == nil {
		r = NewRand(config.Seed)
	}

	engine := &GameEngine{
		config: config,
		rng:    r,
		state:  InitGameStateFromConfig(config, r),
	}

	return engine, nil
}

// NewEngineFromBoard creates an engine positioned on a given board.
// Used to resume a known arrangement and in tests.
func NewEngineFromBoard(config *GameConfig, board Board) (*GameEngine, error) {
	engine, err := NewEngine(config, nil)
	if err != nil {
		return nil, err
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	engine.state.Board = board
	engine.state.refresh()
	return engine, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state after checking the board invariant
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.Board.Validate(); err != nil {
		return err
	}
	e.state = state
	e.state.refresh()
	return nil
}

// NewGame resets the move counter and reshuffles using r, or the engine's own source when r is nil
func (e *GameEngine) NewGame(r *rand.Rand) Update {
	if r == nil {
		r = e.rng
	}
	return e.state.StartNewGame(r, e.config)
}

// IsWon returns whether the tiles are in order
func (e *GameEngine) IsWon() bool {
	return e.state.Won
}

// GetMoveCount returns the number of tiles displaced since the last new game
func (e *GameEngine) GetMoveCount() int {
	return e.state.MoveCount
}

// FreeCells returns the set of empty positions
func (e *GameEngine) FreeCells() []Position {
	return e.state.Board.FreeCells()
}

// LocateTile returns the position of the tile
func (e *GameEngine) LocateTile(id TileID) (Position, error) {
	return e.state.Board.Locate(id)
}

// CheckWin reads the board in row-major order against the solved sequence
func (e *GameEngine) CheckWin() bool {
	return e.state.Board.Solved()
}

// ActivateTile handles a click on the tile
func (e *GameEngine) ActivateTile(id TileID) (Update, error) {
	return e.state.ActivateTile(id, e.config)
}

// CanActivate reports whether activating the tile would slide anything
func (e *GameEngine) CanActivate(id TileID) bool {
	if e.state.Won {
		return false
	}
	_, ok := e.state.Board.Movable()[id]
	return ok
}

// GetMovableTiles returns all tiles that currently line up with the free cell
func (e *GameEngine) GetMovableTiles() []TileID {
	if e.state.Won {
		return nil
	}
	lined := e.state.Board.Movable()
	var movable []TileID
	for id := TileID(1); id <= TileCount; id++ {
		if _, ok := lined[id]; ok {
			movable = append(movable, id)
		}
	}
	return movable
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.rng = NewRand(config.Seed)
	e.state = InitGameStateFromConfig(config, e.rng)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// BulkActivate activates tiles in sequence and stops once the game is won.
// An unknown tile stops the sequence with an error; earlier activations stay applied.
func (e *GameEngine) BulkActivate(tiles []TileID) ([]Update, error) {
	updates := make([]Update, 0, len(tiles))

	for _, id := range tiles {
		if e.IsWon() {
			break
		}

		update, err := e.ActivateTile(id)
		if err != nil {
			return updates, err
		}
		updates = append(updates, update)
	}

	return updates, nil
}
