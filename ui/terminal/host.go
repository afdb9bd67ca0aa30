package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
	"github.com/wricardo/mcp-training/fifteen/game/service"
)

const title = "Fifteen Puzzle"

const (
	helpPlaying = "click a tile or use the arrows · n new game · q quit"
	helpWon     = "You won!! press n for a new game or q to quit"
)

// model is the display state of one terminal game, independent of termbox
type model struct {
	svc       service.GameService
	sessionID string
	state     *engine.GameState
	layout    Layout
}

func newModel(ctx context.Context, svc service.GameService, sessionID string) (*model, error) {
	state, err := svc.GetGameState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &model{svc: svc, sessionID: sessionID, state: state}, nil
}

// status returns the line shown under the board
func (m *model) status() string {
	if m.state.Message != "" {
		return m.state.Message
	}
	return fmt.Sprintf("%d moves", m.state.MoveCount)
}

func (m *model) help() string {
	if m.state.Won {
		return helpWon
	}
	return helpPlaying
}

func (m *model) activate(ctx context.Context, tile engine.TileID) error {
	result, err := m.svc.ActivateTile(ctx, m.sessionID, tile)
	if err != nil {
		return err
	}
	m.state = result.GameState
	return nil
}

func (m *model) newGame(ctx context.Context) error {
	result, err := m.svc.NewGame(ctx, m.sessionID)
	if err != nil {
		return err
	}
	m.state = result.GameState
	return nil
}

// handle applies one input event. It reports true when the player quits.
func (m *model) handle(ctx context.Context, ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventResize:
		m.layout = NewLayout(ev.Width, ev.Height)
		return false, nil

	case termbox.EventError:
		return true, ev.Err

	case termbox.EventMouse:
		if ev.Key != termbox.MouseLeft {
			return false, nil
		}
		pos, ok := m.layout.CellAt(ev.MouseX, ev.MouseY)
		if !ok {
			return false, nil
		}
		tile := m.state.Board.At(pos)
		if tile == engine.Empty {
			return false, nil
		}
		return false, m.activate(ctx, tile)

	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc, ev.Key == termbox.KeyCtrlC, ev.Ch == 'q', ev.Ch == 'Q':
			return true, nil
		case ev.Ch == 'n', ev.Ch == 'N':
			return false, m.newGame(ctx)
		}
		if tile, ok := NeighborTile(m.state.Board, ev.Key); ok {
			return false, m.activate(ctx, tile)
		}
	}
	return false, nil
}

func (m *model) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	l := m.layout

	printAt(0, l.OriginY-2, Center(title, l.Width), termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)

	for y := 0; y < engine.Rows; y++ {
		for x := 0; x < engine.Columns; x++ {
			pos := engine.Position{X: x, Y: y}
			m.drawCell(pos, m.state.Board.At(pos))
		}
	}

	statusFg := termbox.ColorDefault
	if m.state.Won {
		statusFg = termbox.ColorGreen | termbox.AttrBold
	}
	printAt(0, l.StatusY, Center(m.status(), l.Width), statusFg, termbox.ColorDefault)
	printAt(0, l.HelpY, Center(m.help(), l.Width), termbox.ColorDefault, termbox.ColorDefault)

	return termbox.Flush()
}

func (m *model) drawCell(pos engine.Position, id engine.TileID) {
	x0, y0 := m.layout.CellOrigin(pos)
	if id == engine.Empty {
		return
	}

	bg := termbox.ColorBlue
	if id.Home() == pos {
		bg = termbox.ColorGreen
	}
	for dy := 0; dy < cellHeight; dy++ {
		for dx := 0; dx < cellWidth-1; dx++ {
			termbox.SetCell(x0+dx, y0+dy, ' ', termbox.ColorWhite, bg)
		}
	}
	printAt(x0, y0+cellHeight/2, Center(id.Label(), cellWidth-1), termbox.ColorWhite|termbox.AttrBold, bg)
}

// Run plays the session in the terminal until the player quits or ctx ends.
// Log output is discarded while termbox owns the screen.
func Run(ctx context.Context, svc service.GameService, sessionID string) error {
	m, err := newModel(ctx, svc, sessionID)
	if err != nil {
		return err
	}

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	out := log.StandardLogger().Out
	log.SetOutput(io.Discard)
	defer log.SetOutput(out)

	m.layout = NewLayout(termbox.Size())

	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			events <- ev
		}
	}()
	// Unblocks PollEvent so the reader exits before termbox.Close
	defer func() {
		termbox.Interrupt()
		for range events {
		}
	}()

	for {
		if err := m.draw(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			quit, err := m.handle(ctx, ev)
			if err != nil && !errors.Is(err, engine.ErrUnknownTile) {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}
