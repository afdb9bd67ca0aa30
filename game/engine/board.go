package engine

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"strconv"
	"strings"
)

var (
	ErrUnknownTile  = errors.New("unknown tile")
	ErrInvalidBoard = errors.New("invalid board")
)

// Board holds the occupant of every cell, indexed [row][column].
type Board [Rows][Columns]TileID

// SolvedBoard returns the winning arrangement: 1..15 in row-major order, free cell last.
func SolvedBoard() Board {
	var b Board
	for i := 0; i < TileCount; i++ {
		b[i/Columns][i%Columns] = TileID(i + 1)
	}
	return b
}

// At returns the occupant at p
func (b Board) At(p Position) TileID {
	return b[p.Y][p.X]
}

// FreeCells returns the positions with no tile, in row-major order.
// The 4x4 board always has exactly one.
func (b Board) FreeCells() []Position {
	var free []Position
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			if b[y][x] == Empty {
				free = append(free, Position{X: x, Y: y})
			}
		}
	}
	return free
}

// Locate finds the position of the given tile
func (b Board) Locate(id TileID) (Position, error) {
	if id.Valid() {
		for y := 0; y < Rows; y++ {
			for x := 0; x < Columns; x++ {
				if b[y][x] == id {
					return Position{X: x, Y: y}, nil
				}
			}
		}
	}
	return Position{}, fmt.Errorf("%w: %d", ErrUnknownTile, id)
}

// Positions maps every tile to its cell
func (b Board) Positions() map[TileID]Position {
	positions := make(map[TileID]Position, TileCount)
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			if id := b[y][x]; id != Empty {
				positions[id] = Position{X: x, Y: y}
			}
		}
	}
	return positions
}

// Labels reads the board in row-major order
func (b Board) Labels() []string {
	labels := make([]string, 0, CellCount)
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			labels = append(labels, b[y][x].Label())
		}
	}
	return labels
}

// Solved reports whether the labels read "1".."15" followed by the free cell
func (b Board) Solved() bool {
	for i, label := range b.Labels() {
		want := ""
		if i < TileCount {
			want = strconv.Itoa(i + 1)
		}
		if label != want {
			return false
		}
	}
	return true
}

// Validate checks that every position holds exactly one occupant and every
// tile and the free cell appear exactly once.
func (b Board) Validate() error {
	var seen [CellCount]bool
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			id := b[y][x]
			if id < Empty || id > TileCount {
				return fmt.Errorf("%w: occupant %d at (%d,%d) out of range", ErrInvalidBoard, id, x, y)
			}
			if seen[id] {
				return fmt.Errorf("%w: occupant %q appears twice", ErrInvalidBoard, id.Label())
			}
			seen[id] = true
		}
	}
	return nil
}

// String renders the board as four lines of right-aligned labels, "." for the free cell
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			label := b[y][x].Label()
			if label == "" {
				label = "."
			}
			fmt.Fprintf(&sb, "%3s", label)
		}
		if y < Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard builds a board from rows of whitespace separated labels.
// "." or "_" mark the free cell.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != Rows {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, Rows, len(rows))
	}
	for y, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != Columns {
			return b, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidBoard, y+1, len(fields), Columns)
		}
		for x, field := range fields {
			if field == "." || field == "_" {
				b[y][x] = Empty
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return b, fmt.Errorf("%w: bad label %q at row %d", ErrInvalidBoard, field, y+1)
			}
			b[y][x] = TileID(n)
		}
	}
	if err := b.Validate(); err != nil {
		return b, err
	}
	return b, nil
}

// Movable maps every tile in line with a free cell to the number of tiles
// activating it would slide. The first free cell in line wins, as in
// ActivateTile.
func (b Board) Movable() map[TileID]int {
	free := b.FreeCells()
	movable := make(map[TileID]int)
	for id, pos := range b.Positions() {
		for _, f := range free {
			if SameRow(pos, f) || SameColumn(pos, f) {
				movable[id] = pos.Distance(f)
				break
			}
		}
	}
	return movable
}

// Misplaced counts tiles that are not on their home cell
func (b Board) Misplaced() int {
	n := 0
	for id, pos := range b.Positions() {
		if id.Home() != pos {
			n++
		}
	}
	return n
}

// SameRow reports whether both positions share a row
func SameRow(pos, free Position) bool {
	return pos.Y == free.Y
}

// SameColumn reports whether both positions share a column
func SameColumn(pos, free Position) bool {
	return pos.X == free.X
}

// slideRow shifts the run between pos and free one cell toward free.
// The free cell ends up at pos. Returns the number of tiles displaced.
func (b *Board) slideRow(pos, free Position) int {
	row := &b[pos.Y]
	if pos.X < free.X {
		for x := free.X; x > pos.X; x-- {
			row[x] = row[x-1]
		}
	} else {
		for x := free.X; x < pos.X; x++ {
			row[x] = row[x+1]
		}
	}
	row[pos.X] = Empty
	return abs(pos.X - free.X)
}

// slideColumn is slideRow on the y axis
func (b *Board) slideColumn(pos, free Position) int {
	x := pos.X
	if pos.Y < free.Y {
		for y := free.Y; y > pos.Y; y-- {
			b[y][x] = b[y-1][x]
		}
	} else {
		for y := free.Y; y < pos.Y; y++ {
			b[y][x] = b[y+1][x]
		}
	}
	b[pos.Y][x] = Empty
	return abs(pos.Y - free.Y)
}

// Shuffle places the 15 tiles and the free cell on random positions: it
// repeatedly picks a remaining occupant and a remaining position until both
// pools are empty. The result is not guaranteed to be solvable.
func Shuffle(r *rand.Rand) Board {
	occupants := make([]TileID, 0, CellCount)
	for id := Empty; id <= TileCount; id++ {
		occupants = append(occupants, id)
	}
	cells := make([]Position, 0, CellCount)
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			cells = append(cells, Position{X: x, Y: y})
		}
	}

	var b Board
	for len(occupants) > 0 {
		i := r.IntN(len(occupants))
		id := occupants[i]
		occupants = append(occupants[:i], occupants[i+1:]...)

		j := r.IntN(len(cells))
		cell := cells[j]
		cells = append(cells[:j], cells[j+1:]...)

		b[cell.Y][cell.X] = id
	}
	return b
}

// IsSolvable reports whether the board can reach the solved arrangement by
// legal slides. On an even-width board that holds when the inversion count plus
// the free cell's row counted from the bottom (1-based) is odd.
func IsSolvable(b Board) bool {
	labels := make([]TileID, 0, TileCount)
	freeRow := 0
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			if b[y][x] == Empty {
				freeRow = Rows - y
				continue
			}
			labels = append(labels, b[y][x])
		}
	}
	inversions := 0
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			if labels[i] > labels[j] {
				inversions++
			}
		}
	}
	return (inversions+freeRow)%2 == 1
}

// NewRand returns a PCG source. A zero seed draws fresh seeds from hash/maphash.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
