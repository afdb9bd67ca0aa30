// Package service provides the business logic layer for the fifteen puzzle.
//
// The service package implements:
//   - Multi-session game management
//   - Preset lookup for new sessions
//   - Tile activation and new game processing
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game preset loading.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. Every command holds the service mutex while the engine mutates
// the board, checks for a win and builds its update, so one command is fully
// processed before the next one starts. Each update is turned into outbound
// events: board_updated, move_count_changed, game_won, new_game and ignored.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.ActivateTile(ctx, info.ID, 12)
package service
