package engine

import "strconv"

// TileID identifies a tile by its number. Empty marks the free cell.
type TileID int

const (
	Empty TileID = 0

	// Board dimensions
	Columns   = 4
	Rows      = 4
	CellCount = Columns * Rows
	TileCount = CellCount - 1

	MaxBulkActivations  = 50
	WebSocketBufferSize = 256
)

// Label returns the text shown on the tile, "" for the free cell
func (id TileID) Label() string {
	if id == Empty {
		return ""
	}
	return strconv.Itoa(int(id))
}

// Valid reports whether id names one of the numbered tiles
func (id TileID) Valid() bool {
	return id >= 1 && id <= TileCount
}

// Home returns the cell the tile occupies on the solved board
func (id TileID) Home() Position {
	i := int(id) - 1
	return Position{X: i % Columns, Y: i / Columns}
}

// Position represents x,y coordinates (column, row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the position lies on the board
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < Columns && p.Y >= 0 && p.Y < Rows
}

// Distance is the Manhattan distance between two cells
func (p Position) Distance(q Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// GameConfig represents a game preset loaded from JSON
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Seed pins the shuffle sequence. Zero means a fresh random source per session.
	Seed     uint64 `json:"seed,omitempty"`
	Messages struct {
		Welcome string `json:"welcome"`
		Moved   string `json:"moved"`
		Ignored string `json:"ignored"`
		Victory string `json:"victory"`
		NewGame string `json:"new_game"`
	} `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	Board     Board               `json:"board"`
	FreeCell  Position            `json:"free_cell"`
	Positions map[TileID]Position `json:"positions"`
	MoveCount int                 `json:"move_count"`
	Won       bool                `json:"won"`
	Solvable  bool                `json:"solvable"`
	Message   string              `json:"message"`

	ConfigName   string             `json:"config_name"`
	GamesStarted int                `json:"games_started"`
	MoveHistory  []MoveHistoryEntry `json:"move_history"`
	TotalMoves   int                `json:"total_moves"`

	// CurrentMoves tracks only the activations since the last new game. It mirrors
	// MoveHistory entries but gets cleared on new game while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// Clone returns a deep copy that shares nothing with gs
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	if gs.Positions != nil {
		c.Positions = make(map[TileID]Position, len(gs.Positions))
		for id, pos := range gs.Positions {
			c.Positions[id] = pos
		}
	}
	if gs.MoveHistory != nil {
		c.MoveHistory = append([]MoveHistoryEntry(nil), gs.MoveHistory...)
	}
	if gs.CurrentMoves != nil {
		c.CurrentMoves = append([]MoveHistoryEntry(nil), gs.CurrentMoves...)
	}
	return &c
}

// MoveHistoryEntry represents a single tile activation in the game history
type MoveHistoryEntry struct {
	Tile         TileID   `json:"tile"`
	FromPosition Position `json:"from_position"`
	FreeCell     Position `json:"free_cell"`
	Displaced    int      `json:"displaced"`
	Accepted     bool     `json:"accepted"`
	Timestamp    int64    `json:"timestamp"`
	MoveNumber   int      `json:"move_number"`
}

// Update is the state delta handed back to the caller after an activation or a new game
type Update struct {
	Tile      TileID              `json:"tile,omitempty"`
	Accepted  bool                `json:"accepted"`
	Displaced int                 `json:"displaced"`
	MoveCount int                 `json:"move_count"`
	Won       bool                `json:"won"`
	NewGame   bool                `json:"new_game,omitempty"`
	Board     Board               `json:"board"`
	FreeCell  Position            `json:"free_cell"`
	Positions map[TileID]Position `json:"positions"`
}
