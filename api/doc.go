// Package api provides HTTP REST API handlers for the fifteen puzzle.
//
// The api package implements:
//   - Session management endpoints
//   - Tile activation, bulk activation and new game endpoints
//   - Move history with pagination
//   - Preset listing
//   - WebSocket upgrade handling and command dispatch
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "daily"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board, free cell and move count
//   - POST /api/sessions/{id}/activate - Activate one tile ({"tile": 12})
//   - POST /api/sessions/{id}/bulk-activate - Activate tiles in order ({"tiles": [12, 11], "new_game": false})
//   - POST /api/sessions/{id}/new-game - Reshuffle and reset the counter
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get one preset
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket stream of state updates
//
// An activation of a tile that is not in line with the free cell is not an
// error: the response has "accepted": false and the board is unchanged.
//
// WebSocket clients may send commands on the same connection:
//
//	{"action": "activate", "tile": 12}
//	{"action": "new_game"}
//
// Every accepted command, from REST or WebSocket, is broadcast to all clients
// of the session as {"session_id", "event", "game_state", "data"}.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session not found"}
//
// Unknown sessions and presets map to 404, malformed bodies and unknown tiles
// to 400, anything else to 500.
package api
