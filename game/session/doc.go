// Package session keeps fifteen puzzle games in memory.
//
// A Manager maps session ids to a service.Session, each owning its own
// engine.GameEngine and the preset it was created from. Ids are compared
// without regard to case. When the caller passes no id, Create deals a random
// 4-character hex id such as "3fa9", short enough to type into a REST URL or
// an MCP tool call.
//
// Nothing is persisted. Sessions go away when deleted, when the process
// exits, or when CleanupExpiredSessions finds them idle for longer than the
// given age; the serve command runs that sweep every hour with a 24 hour
// limit. UpdateLastAccessed is what keeps a session alive, and the game
// service calls it on every read and move.
//
// The Manager guards its map with a read/write mutex. It does not lock the
// engines it hands out: the game service serializes access to them.
package session
