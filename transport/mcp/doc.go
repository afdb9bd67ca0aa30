// Package mcp provides the Model Context Protocol server for the fifteen puzzle.
//
// The server is a thin client of the REST API: every tool call becomes one or
// two HTTP requests against /api, and the JSON answer is rendered as text an
// agent can read.
//
// MCP Tools:
//   - create_session: Create a new session, optionally from a preset
//   - list_sessions: List active sessions
//   - get_session: Session details with the board
//   - board_state: Board, free cell, movable tiles, move count and solvability
//   - activate_tile: Activate one tile
//   - activate_tiles: Activate a sequence of tiles, optionally after a new game
//   - new_game: Reshuffle and reset the move counter
//   - move_history: Paginated activation history plus the current game
//   - list_configs: List presets
//   - describe_cell: Occupant of a cell, its solved occupant and the effect of activating it
//   - game_instructions: Rules and strategy notes
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: POST /mcp, handled with GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
