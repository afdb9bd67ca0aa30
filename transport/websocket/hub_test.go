package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	return message
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels must be initialized")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	if !hub.sessions["test-session"][client] {
		t.Fatal("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}

	hub.unregisterClient(client)
	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Unregistering twice must not panic on a closed channel
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.BroadcastToSession(sessionID, "board_updated", &engine.GameState{MoveCount: 3}, nil)

	for i, c := range []*Client{client1, client2} {
		select {
		case <-c.send:
		default:
			t.Errorf("client%d did not receive the broadcast", i+1)
		}
	}
	select {
	case <-other.send:
		t.Error("Client of another session must not receive the broadcast")
	default:
	}

	hub.unregisterClient(client1)
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"
	client := newTestClient(hub, sessionID)
	hub.registerClient(client)

	state := &engine.GameState{
		Board:     engine.SolvedBoard(),
		MoveCount: 42,
		Won:       true,
	}
	hub.BroadcastToSession(sessionID, "game_won", state, []string{"extra"})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != "game_won" {
			t.Errorf("Expected event 'game_won', got %s", message.Event)
		}
		if message.GameState.MoveCount != 42 || !message.GameState.Won {
			t.Error("GameState not correctly transmitted")
		}
		if message.GameState.Board != engine.SolvedBoard() {
			t.Error("Board not correctly transmitted")
		}
	default:
		t.Error("No message queued for client")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(client)

	hub.BroadcastToSession("slow", "board_updated", nil, nil)
	hub.BroadcastToSession("slow", "board_updated", nil, nil)

	if hub.ClientCount("slow") != 0 {
		t.Error("Client with a full send buffer should be dropped")
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "ws-test")
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 }, "registration")

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 }, "unregistration")
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "msg-test")
	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 }, "registration")

	board, _ := engine.ParseBoard([]string{"1 2 3 4", "5 6 7 8", "9 10 11 12", "13 14 . 15"})
	hub.BroadcastToSession("msg-test", "move_count_changed", &engine.GameState{
		Board:     board,
		FreeCell:  engine.Position{X: 2, Y: 3},
		Positions: board.Positions(),
		MoveCount: 9,
	}, nil)

	message := readMessage(t, conn)
	if message.SessionID != "msg-test" || message.Event != "move_count_changed" {
		t.Errorf("Unexpected envelope: %+v", message)
	}
	if message.GameState.MoveCount != 9 {
		t.Errorf("Expected move count 9, got %d", message.GameState.MoveCount)
	}
	if message.GameState.Positions[15] != (engine.Position{X: 3, Y: 3}) {
		t.Errorf("Expected tile 15 at (3,3), got %v", message.GameState.Positions[15])
	}
}

func TestWebSocketCommands(t *testing.T) {
	hub, server := startHub(t)

	var mu sync.Mutex
	var received []Command
	hub.SetCommandHandler(func(ctx context.Context, sessionID string, cmd Command) error {
		mu.Lock()
		received = append(received, cmd)
		mu.Unlock()

		switch cmd.Action {
		case ActionActivate:
			hub.BroadcastToSession(sessionID, "board_updated", &engine.GameState{MoveCount: cmd.Tile}, nil)
			return nil
		case ActionNewGame:
			hub.BroadcastToSession(sessionID, "new_game", &engine.GameState{}, nil)
			return nil
		}
		return ErrUnknownAction
	})

	conn := dial(t, server, "cmd-test")
	waitFor(t, func() bool { return hub.ClientCount("cmd-test") == 1 }, "registration")

	if err := conn.WriteJSON(Command{Action: ActionActivate, Tile: 12}); err != nil {
		t.Fatalf("Failed to write command: %v", err)
	}
	message := readMessage(t, conn)
	if message.Event != "board_updated" || message.GameState.MoveCount != 12 {
		t.Errorf("Unexpected reply to activate: %+v", message)
	}

	if err := conn.WriteJSON(Command{Action: ActionNewGame}); err != nil {
		t.Fatalf("Failed to write command: %v", err)
	}
	if message := readMessage(t, conn); message.Event != "new_game" {
		t.Errorf("Expected new_game event, got %q", message.Event)
	}

	if err := conn.WriteJSON(Command{Action: "undo"}); err != nil {
		t.Fatalf("Failed to write command: %v", err)
	}
	message = readMessage(t, conn)
	if message.Event != EventError || message.Data != ErrUnknownAction.Error() {
		t.Errorf("Expected error reply, got %+v", message)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to write message: %v", err)
	}
	if message := readMessage(t, conn); message.Event != EventError {
		t.Errorf("Expected error reply for malformed command, got %q", message.Event)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Errorf("Expected 3 dispatched commands, got %d", len(received))
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	client := newTestClient(hub, "stop")
	hub.registerClient(client)

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed on shutdown")
	}
}
