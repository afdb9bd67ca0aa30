package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Fifteen Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Fifteen Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Fifteen numbered tiles and one free cell sit on a 4x4 board. Activate tiles to
slide them until the board reads 1..15 in row-major order with the free cell
in the bottom-right corner.

AVAILABLE TOOLS:
- create_session: Create a new game session, optionally from a preset
- list_sessions: List all active sessions
- get_session: Get session details
- board_state: Show the board, free cell and move count
- activate_tile: Activate one tile - requires intent explanation
- activate_tiles: Activate several tiles in order - requires intent explanation
- new_game: Reshuffle and reset the move counter
- move_history: View past activations
- list_configs: List available presets
- describe_cell: Explain what a board cell holds and what activating it would do
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on activation tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of sessions to return",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board, free cell, movable tiles and move count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "activate_tile",
		Description: "Activate a tile. If it shares a row or column with the free cell, it and the tiles between slide one cell toward the free cell. Otherwise nothing happens.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"tile": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"maximum":     engine.TileCount,
					"description": "Number of the tile to activate",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this activation (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "tile"},
		},
	}, c.handleActivateTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "activate_tiles",
		Description: fmt.Sprintf("Activate several tiles in sequence (max %d). Stops early on victory or an unknown tile.", engine.MaxBulkActivations),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"tiles": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": engine.TileCount,
					},
					"description": "Tile numbers in activation order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
				"new_game": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a new game before activating",
				},
			},
			Required: []string{"session_id", "tiles"},
		},
	}, c.handleActivateTiles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Reshuffle the board and reset the move counter",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get activation history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe a board cell: its occupant, the tile that belongs there when solved, and what activating it would do.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// parseTiles accepts a JSON array of numbers or a string of numbers
// separated by spaces or commas.
func parseTiles(raw interface{}) ([]int, error) {
	switch v := raw.(type) {
	case []interface{}:
		tiles := make([]int, 0, len(v))
		for i, item := range v {
			switch n := item.(type) {
			case float64:
				tiles = append(tiles, int(n))
			case int:
				tiles = append(tiles, n)
			case string:
				t, err := strconv.Atoi(strings.TrimSpace(n))
				if err != nil {
					return nil, fmt.Errorf("tiles[%d]: %q is not a number", i, n)
				}
				tiles = append(tiles, t)
			default:
				return nil, fmt.Errorf("tiles[%d]: unsupported value %v", i, item)
			}
		}
		return tiles, nil
	case []int:
		return v, nil
	case string:
		fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
		tiles := make([]int, 0, len(fields))
		for _, f := range fields {
			t, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", f)
			}
			tiles = append(tiles, t)
		}
		return tiles, nil
	case nil:
		return nil, fmt.Errorf("tiles is required")
	}
	return nil, fmt.Errorf("tiles must be an array of numbers")
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := request.GetString("config_id", "")

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/sessions"
	if limit := request.GetInt("limit", 0); limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d of %d):\n\n", response.Count, response.Total)
	for _, s := range response.Sessions {
		moves, status := 0, "playing"
		if s.GameState != nil {
			moves = s.GameState.MoveCount
			if s.GameState.Won {
				status = "won"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Moves: %d, %s, Created: %s)\n",
			s.ID, s.ConfigName, moves, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleActivateTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tile, err := request.RequireInt("tile")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = request.GetString("intent", "")

	var result service.MoveResult
	body := map[string]int{"tile": tile}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/activate"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleActivateTiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tiles, err := parseTiles(request.GetArguments()["tiles"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_ = request.GetString("intent", "")

	body := map[string]interface{}{
		"tiles":    tiles,
		"new_game": request.GetBool("new_game", false),
	}

	var result service.BulkActivateResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-activate"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkActivateResult(sessionID, &result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/new-game"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game started\n\n" + formatGameState(result.GameState)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also fetch current game from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, config := range configs {
		shuffle := "random shuffle"
		if config.Seeded {
			shuffle = "fixed shuffle sequence"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  %s\n\n", config.Name, config.ConfigID, config.Description, shuffle)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, errX := request.RequireInt("x")
	y, errY := request.RequireInt("y")
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := engine.Position{X: x, Y: y}
	if !pos.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. The board is %dx%d (0-%d for x, 0-%d for y)",
			x, y, engine.Columns, engine.Rows, engine.Columns-1, engine.Rows-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Fifteen Puzzle - Complete Instructions

GAME OBJECTIVE:
Arrange the fifteen numbered tiles so the board reads 1 to 15 left to right,
top to bottom, with the free cell in the bottom-right corner.

BOARD:
• 4 columns by 4 rows, coordinates (x, y) with (0, 0) top-left
• Tiles are numbered 1..15, the free cell is shown as "."
• Solved board:
    1  2  3  4
    5  6  7  8
    9 10 11 12
   13 14 15  .

HOW TILES MOVE:
• Activate a tile that shares a row or a column with the free cell
• That tile and every tile between it and the free cell slide one cell toward
  the free cell; the free cell ends up where the activated tile was
• Activating a tile that is not in line with the free cell does nothing and
  costs no move
• The move count grows by the number of tiles that slid, so activating a
  tile three cells away from the free cell costs 3 moves

VICTORY CONDITIONS:
• The game is won as soon as the board matches the solved layout
• A won game accepts no further activations until a new game starts

NEW GAME:
• new_game reshuffles the board and resets the move counter
• Some presets pin a shuffle seed, so every session replays the same boards
• Shuffles are not checked for solvability; board_state reports whether the
  current board can be solved. Half of all random arrangements cannot.

STRATEGY NOTES:
• Solve the top row first, then the second row, never disturbing solved rows
• Finish the last two rows column by column, left to right
• Use activate_tiles to send a whole sequence at once; it stops early on victory
• describe_cell tells you which tile belongs in a cell and how far its current
  occupant is from home

MOVE HISTORY:
• move_history lists every activation, ignored ones included, across all
  games of a session
• The current game's activations are listed separately

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func sortedTiles(m map[engine.TileID]int) []engine.TileID {
	tiles := make([]engine.TileID, 0, len(m))
	for id := range m {
		tiles = append(tiles, id)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })
	return tiles
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	var b strings.Builder
	id := state.Board.At(pos)
	homeID := engine.TileID(pos.Y*engine.Columns + pos.X + 1)

	fmt.Fprintf(&b, "Cell (%d,%d)\n", pos.X, pos.Y)
	if id == engine.Empty {
		b.WriteString("Occupant: free cell\n")
	} else {
		fmt.Fprintf(&b, "Occupant: tile %d\n", id)
	}
	if homeID.Valid() {
		fmt.Fprintf(&b, "Solved occupant: tile %d\n", homeID)
	} else {
		b.WriteString("Solved occupant: free cell\n")
	}

	if id == engine.Empty {
		movable := state.Board.Movable()
		fmt.Fprintf(&b, "Tiles that can slide into it: %v\n", sortedTiles(movable))
		return b.String()
	}

	home := id.Home()
	if home == pos {
		b.WriteString("Tile is in its solved position\n")
	} else {
		fmt.Fprintf(&b, "Tile belongs at (%d,%d), %d cells away\n", home.X, home.Y, home.Distance(pos))
	}

	switch {
	case state.Won:
		b.WriteString("Game is won; activations are ignored until a new game\n")
	default:
		if n, ok := state.Board.Movable()[id]; ok {
			fmt.Fprintf(&b, "Activating tile %d slides %d tile(s)\n", id, n)
		} else {
			fmt.Fprintf(&b, "Tile %d is not in line with the free cell; activating it does nothing\n", id)
		}
	}
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Moves: %d | Games: %d | Total activations: %d\n\n",
		state.MoveCount, state.GamesStarted, state.TotalMoves)

	result.WriteString(state.Board.String())
	result.WriteString("\n\n")

	fmt.Fprintf(&result, "Free cell: (%d,%d)\n", state.FreeCell.X, state.FreeCell.Y)

	if state.Won {
		result.WriteString("\n🎉 SOLVED!")
	} else {
		movable := state.Board.Movable()
		fmt.Fprintf(&result, "Movable tiles: %v\n", sortedTiles(movable))
		fmt.Fprintf(&result, "Misplaced tiles: %d\n", state.Board.Misplaced())
		if !state.Solvable {
			result.WriteString("Warning: this arrangement cannot be solved\n")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	response := ""
	if result.Accepted {
		response = fmt.Sprintf("✓ Tile %d slid (%d tile(s) moved)\n", result.Tile, result.Displaced)
	} else {
		response = fmt.Sprintf("✗ Tile %d is not in line with the free cell, nothing moved\n", result.Tile)
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatGameState(result.GameState)
	return response
}

func formatBulkActivateResult(sessionID string, result *service.BulkActivateResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed: %d/%d | Accepted: %d | Tiles slid: %d | Moves: %d\n",
		result.Executed, result.Requested, result.Accepted, result.Displaced, result.MoveCount)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d activations\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on step %d: %s (%s)\n", result.StoppedOnStep, result.StoppedReason, result.StopReasonCode)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "✗ ignored"
			if s.Accepted {
				status = fmt.Sprintf("✓ slid %d", s.Displaced)
			}
			fmt.Fprintf(&b, "%d. tile %d %s, free cell (%d,%d), moves %d\n",
				s.Idx, s.Tile, status, s.FreeCell.X, s.FreeCell.Y, s.MoveCount)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. tile %d at (%d,%d) toward (%d,%d), slid %d\n",
			move.MoveNumber, move.Tile, move.FromPosition.X, move.FromPosition.Y,
			move.FreeCell.X, move.FreeCell.Y, move.Displaced)
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Game: unavailable"
	}
	header := fmt.Sprintf("Current Game - Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current game)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		fmt.Fprintf(&b, "%d. tile %d, slid %d\n", i+1, move.Tile, move.Displaced)
	}
	return b.String()
}
