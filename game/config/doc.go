// Package config provides preset management for the fifteen puzzle.
//
// The config package handles:
//   - Loading game presets from JSON files
//   - Preset validation through engine.ValidateGameConfig
//   - Default preset management with a built-in classic fallback
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory. Each one defines
// a display name, a description, an optional shuffle seed and the messages
// shown to the player:
//
//	{
//	  "name": "daily",
//	  "description": "Same shuffle for everyone",
//	  "seed": 20261017,
//	  "messages": {
//	    "welcome": "Start puzzle",
//	    "moved": "%d moves",
//	    "ignored": "That tile is not in line with the empty cell",
//	    "victory": "You won!! %d moves",
//	    "new_game": "0 moves"
//	  }
//	}
//
// A non-zero seed pins the shuffle sequence, so every session of that preset
// sees the same boards. Unknown fields are rejected.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("daily")
//	presets, err := manager.ListConfigs()
//
//	// Check files without loading them into a manager
//	results, err := config.ValidateDir("configs")
package config
