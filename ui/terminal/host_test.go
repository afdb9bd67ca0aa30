package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/fifteen/game/config"
	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
	"github.com/wricardo/mcp-training/fifteen/game/session"
)

var oneAway = []string{
	"1  2  3  4",
	"5  6  7  8",
	"9 10 11 12",
	"13 14  . 15",
}

func parse(t *testing.T, rows []string) engine.Board {
	t.Helper()
	board, err := engine.ParseBoard(rows)
	require.NoError(t, err)
	return board
}

// newTestModel starts a session on the built-in classic preset with a fixed board
func newTestModel(t *testing.T, rows []string) *model {
	t.Helper()
	ctx := context.Background()

	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager()
	svc := service.NewGameService(sessions, configs)

	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	sess, err := sessions.Get(info.ID)
	require.NoError(t, err)
	require.NoError(t, sess.Engine.SetState(&engine.GameState{Board: parse(t, rows), ConfigName: "classic"}))

	m, err := newModel(ctx, svc, info.ID)
	require.NoError(t, err)
	m.layout = NewLayout(80, 24)
	return m
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(80, 24)

	assert.Equal(t, (80-boardWidth)/2, l.OriginX)
	assert.Equal(t, (24-boardRows-4)/2+2, l.OriginY)
	assert.Equal(t, l.OriginY+boardRows+1, l.StatusY)
	assert.Equal(t, l.StatusY+1, l.HelpY)

	tiny := NewLayout(10, 5)
	assert.Equal(t, 0, tiny.OriginX)
	assert.Equal(t, 2, tiny.OriginY)
}

func TestLayoutCellAt(t *testing.T) {
	l := NewLayout(80, 24)

	tests := []struct {
		name   string
		x, y   int
		want   engine.Position
		wantOK bool
	}{
		{"top-left corner", l.OriginX, l.OriginY, engine.Position{X: 0, Y: 0}, true},
		{"inside second column", l.OriginX + cellWidth + 2, l.OriginY + 1, engine.Position{X: 1, Y: 0}, true},
		{"bottom-right cell", l.OriginX + boardWidth - 1, l.OriginY + boardRows - 1, engine.Position{X: 3, Y: 3}, true},
		{"left of board", l.OriginX - 1, l.OriginY, engine.Position{}, false},
		{"above board", l.OriginX, l.OriginY - 1, engine.Position{}, false},
		{"right of board", l.OriginX + boardWidth, l.OriginY, engine.Position{}, false},
		{"below board", l.OriginX, l.OriginY + boardRows, engine.Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := l.CellAt(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, pos)
			}
		})
	}

	for y := 0; y < engine.Rows; y++ {
		for x := 0; x < engine.Columns; x++ {
			p := engine.Position{X: x, Y: y}
			cx, cy := l.CellOrigin(p)
			got, ok := l.CellAt(cx, cy)
			assert.True(t, ok)
			assert.Equal(t, p, got)
		}
	}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  ab  ", Center("ab", 6))
	assert.Equal(t, " abc  ", Center("abc", 6))
	assert.Equal(t, "abcd", Center("abcdef", 4))
	// wide runes take two columns
	assert.Equal(t, " 日本 ", Center("日本", 6))
}

func TestNeighborTile(t *testing.T) {
	board := parse(t, oneAway)

	tests := []struct {
		key    termbox.Key
		want   engine.TileID
		wantOK bool
	}{
		{termbox.KeyArrowDown, 11, true},
		{termbox.KeyArrowLeft, 15, true},
		{termbox.KeyArrowRight, 14, true},
		{termbox.KeyArrowUp, engine.Empty, false},
		{termbox.KeyEnter, engine.Empty, false},
	}

	for _, tt := range tests {
		got, ok := NeighborTile(board, tt.key)
		assert.Equal(t, tt.wantOK, ok, "key %v", tt.key)
		assert.Equal(t, tt.want, got, "key %v", tt.key)
	}
}

func TestModelArrowWins(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, oneAway)
	assert.Equal(t, helpPlaying, m.help())

	quit, err := m.handle(ctx, termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowLeft})
	require.NoError(t, err)
	assert.False(t, quit)

	assert.True(t, m.state.Won)
	assert.Equal(t, 1, m.state.MoveCount)
	assert.Equal(t, "You won!! 1 moves", m.status())
	assert.Equal(t, helpWon, m.help())
}

func TestModelMouse(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, oneAway)

	click := func(p engine.Position) {
		t.Helper()
		x, y := m.layout.CellOrigin(p)
		_, err := m.handle(ctx, termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseLeft, MouseX: x + 1, MouseY: y + 1})
		require.NoError(t, err)
	}

	// tile 1 is not in line with the free cell
	click(engine.Position{X: 0, Y: 0})
	assert.Equal(t, 0, m.state.MoveCount)

	// the free cell itself does nothing
	click(engine.Position{X: 2, Y: 3})
	assert.Equal(t, 0, m.state.MoveCount)

	// tile 13 slides two tiles
	click(engine.Position{X: 0, Y: 3})
	assert.Equal(t, 2, m.state.MoveCount)
	assert.Equal(t, "2 moves", m.status())
	assert.Equal(t, engine.Empty, m.state.Board.At(engine.Position{X: 0, Y: 3}))

	// releases and clicks outside the board are ignored
	_, err := m.handle(ctx, termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseRelease})
	require.NoError(t, err)
	_, err = m.handle(ctx, termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseLeft, MouseX: 0, MouseY: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, m.state.MoveCount)
}

func TestModelKeys(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		ev       termbox.Event
		wantQuit bool
	}{
		{"q quits", termbox.Event{Type: termbox.EventKey, Ch: 'q'}, true},
		{"escape quits", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}, true},
		{"ctrl-c quits", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlC}, true},
		{"other key", termbox.Event{Type: termbox.EventKey, Ch: 'x'}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, oneAway)
			quit, err := m.handle(ctx, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuit, quit)
		})
	}
}

func TestModelNewGame(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, oneAway)
	_, err := m.handle(ctx, termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowRight})
	require.NoError(t, err)
	require.Equal(t, 1, m.state.MoveCount)

	quit, err := m.handle(ctx, termbox.Event{Type: termbox.EventKey, Ch: 'n'})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, 0, m.state.MoveCount)
	assert.NoError(t, m.state.Board.Validate())
}

func TestModelResizeAndError(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, oneAway)

	_, err := m.handle(ctx, termbox.Event{Type: termbox.EventResize, Width: 120, Height: 40})
	require.NoError(t, err)
	assert.Equal(t, NewLayout(120, 40), m.layout)

	boom := errors.New("tty gone")
	quit, err := m.handle(ctx, termbox.Event{Type: termbox.EventError, Err: boom})
	assert.True(t, quit)
	assert.ErrorIs(t, err, boom)
}
