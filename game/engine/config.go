package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game preset for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.NewGame == "" {
		return fmt.Errorf("config validation: messages.new_game is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}

	// Validate format strings
	if err := validateCountFormat("victory", config.Messages.Victory); err != nil {
		return err
	}
	if err := validateCountFormat("moved", config.Messages.Moved); err != nil {
		return err
	}

	return nil
}

// validateCountFormat requires exactly one verb, %d for the move count.
// A literal %% is allowed.
func validateCountFormat(field, format string) error {
	verbs := strings.ReplaceAll(format, "%%", "")
	if !strings.Contains(verbs, "%d") {
		return fmt.Errorf("config validation: messages.%s must contain %%d for move count", field)
	}
	if strings.Count(verbs, "%") != 1 {
		return fmt.Errorf("config validation: messages.%s takes exactly one %%d", field)
	}
	return nil
}

// LoadGameConfig loads a game preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filepath.Base(filename), err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filepath.Base(filename), err)
	}

	return &config, nil
}

// DefaultConfig returns the built-in "classic" preset
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "Classic 15-puzzle with a fresh shuffle every game",
	}
	config.Messages.Welcome = "Start puzzle"
	config.Messages.Moved = "%d moves"
	config.Messages.Ignored = "That tile is not in line with the empty cell"
	config.Messages.Victory = "You won!! %d moves"
	config.Messages.NewGame = "0 moves"
	return config
}

// InitGameStateFromConfig creates a freshly shuffled game state
func InitGameStateFromConfig(config *GameConfig, r *rand.Rand) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	state := &GameState{
		Board:             Shuffle(r),
		ConfigName:        config.Name,
		GamesStarted:      1,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.refresh()
	state.Message = config.Messages.Welcome
	return state
}
