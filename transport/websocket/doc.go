// Package websocket provides WebSocket transport for the fifteen puzzle.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every accepted command
//   - Inbound commands routed to a CommandHandler
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection gets a reader and a writer
// goroutine; the hub's event loop handles registration and queued events.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"action": "activate", "tile": 12} or {"action": "new_game"}
//   - Outgoing: {"session_id": "ab12", "event": "board_updated", "game_state": {...}}
//
// A command that fails is answered with an "error" event sent to the
// originating client only.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetCommandHandler(handler)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
