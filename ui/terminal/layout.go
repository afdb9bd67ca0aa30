package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

// Tile geometry in terminal cells
const (
	cellWidth  = 6
	cellHeight = 3
	boardWidth = cellWidth * engine.Columns
	boardRows  = cellHeight * engine.Rows
)

// Layout places the board inside a terminal of the given size
type Layout struct {
	Width, Height int
	OriginX       int
	OriginY       int
	StatusY       int
	HelpY         int
}

// NewLayout centers the board with the title above and the status below it
func NewLayout(width, height int) Layout {
	l := Layout{Width: width, Height: height}
	l.OriginX = max((width-boardWidth)/2, 0)
	l.OriginY = max((height-boardRows-4)/2, 0) + 2
	l.StatusY = l.OriginY + boardRows + 1
	l.HelpY = l.StatusY + 1
	return l
}

// CellAt maps a terminal coordinate to the board cell drawn there
func (l Layout) CellAt(x, y int) (engine.Position, bool) {
	if x < l.OriginX || y < l.OriginY {
		return engine.Position{}, false
	}
	pos := engine.Position{X: (x - l.OriginX) / cellWidth, Y: (y - l.OriginY) / cellHeight}
	return pos, pos.InBounds()
}

// CellOrigin returns the top-left terminal coordinate of a board cell
func (l Layout) CellOrigin(p engine.Position) (int, int) {
	return l.OriginX + p.X*cellWidth, l.OriginY + p.Y*cellHeight
}

// Center pads s so it sits in the middle of width columns
func Center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// NeighborTile returns the tile that an arrow key slides into the free cell:
// the up arrow moves the tile below the free cell up, and so on.
func NeighborTile(b engine.Board, key termbox.Key) (engine.TileID, bool) {
	free := b.FreeCells()
	if len(free) == 0 {
		return engine.Empty, false
	}
	pos := free[0]
	switch key {
	case termbox.KeyArrowUp:
		pos.Y++
	case termbox.KeyArrowDown:
		pos.Y--
	case termbox.KeyArrowLeft:
		pos.X++
	case termbox.KeyArrowRight:
		pos.X--
	default:
		return engine.Empty, false
	}
	if !pos.InBounds() {
		return engine.Empty, false
	}
	id := b.At(pos)
	return id, id != engine.Empty
}

// printAt writes s starting at x, advancing by each rune's display width
func printAt(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
