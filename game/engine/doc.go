// Package engine provides the core game logic for the fifteen puzzle.
//
// The engine package implements the game mechanics including:
//   - Board representation with free-cell and tile lookup
//   - Row and column slides toward the free cell
//   - Move counting and win detection
//   - Seedable shuffling for new games
//   - Preset loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Board is the 4x4 arrangement of tiles, GameState
// wraps it with the move counter, win flag and history, and GameConfig holds
// the preset (seed and messages) loaded from JSON files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(), rand.New(rand.NewPCG(1, 2)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	update, err := gameEngine.ActivateTile(7)
//	if err != nil {
//		log.Fatal(err) // tile 7 is always on the board; only ids outside 1..15 fail
//	}
//	fmt.Println(update.MoveCount, update.Won)
//
// Game Rules:
//
// Activating a tile that shares a row or column with the free cell slides every
// tile between them, the activated one included, one cell toward the free cell.
// The move count grows by the number of tiles displaced. Any other activation
// is ignored. The game is won when the board reads 1..15 in row-major order
// with the free cell last; a won game ignores activations until a new game.
//
// Shuffles place tiles directly on random cells, so about half of them cannot
// be solved by legal slides. IsSolvable reports which.
package engine
