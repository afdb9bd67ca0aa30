package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// ActivateTile slides the run between the tile and the free cell. A tile that
// shares neither row nor column with the free cell is ignored, as is any
// activation once the game is won.
func (gs *GameState) ActivateTile(id TileID, config *GameConfig) (Update, error) {
	pos, err := gs.Board.Locate(id)
	if err != nil {
		return Update{}, err
	}

	displaced := 0
	freeCell := gs.FreeCell
	if !gs.Won {
		for _, free := range gs.Board.FreeCells() {
			freeCell = free
			if SameRow(pos, free) {
				displaced = gs.Board.slideRow(pos, free)
				break
			}
			if SameColumn(pos, free) {
				displaced = gs.Board.slideColumn(pos, free)
				break
			}
		}
	}

	accepted := displaced > 0
	gs.MoveCount += displaced
	gs.refresh()

	switch {
	case gs.Won && accepted:
		gs.Message = fmt.Sprintf(config.Messages.Victory, gs.MoveCount)
	case accepted:
		gs.Message = fmt.Sprintf(config.Messages.Moved, gs.MoveCount)
	case !gs.Won && config.Messages.Ignored != "":
		// without an ignored message the previous status stays
		gs.Message = config.Messages.Ignored
	}

	gs.AddMoveToHistory(id, pos, freeCell, displaced)

	update := gs.update()
	update.Tile = id
	update.Accepted = accepted
	update.Displaced = displaced
	return update, nil
}

// StartNewGame resets the move counter and reshuffles the board
func (gs *GameState) StartNewGame(r *rand.Rand, config *GameConfig) Update {
	gs.Board = Shuffle(r)
	gs.MoveCount = 0
	gs.GamesStarted++
	gs.CurrentMoves = []MoveHistoryEntry{}
	gs.CurrentMovesCount = 0
	gs.refresh()
	gs.Message = config.Messages.NewGame
	if gs.Won {
		gs.Message = fmt.Sprintf(config.Messages.Victory, gs.MoveCount)
	}

	update := gs.update()
	update.NewGame = true
	return update
}

// refresh recomputes the fields derived from the board
func (gs *GameState) refresh() {
	if free := gs.Board.FreeCells(); len(free) > 0 {
		gs.FreeCell = free[0]
	}
	gs.Positions = gs.Board.Positions()
	gs.Won = gs.Board.Solved()
	gs.Solvable = IsSolvable(gs.Board)
}

func (gs *GameState) update() Update {
	return Update{
		MoveCount: gs.MoveCount,
		Won:       gs.Won,
		Board:     gs.Board,
		FreeCell:  gs.FreeCell,
		Positions: gs.Board.Positions(),
	}
}

// AddMoveToHistory adds an activation to the game's move history
func (gs *GameState) AddMoveToHistory(id TileID, from, free Position, displaced int) {
	entry := MoveHistoryEntry{
		Tile:         id,
		FromPosition: from,
		FreeCell:     free,
		Displaced:    displaced,
		Accepted:     displaced > 0,
		Timestamp:    time.Now().Unix(),
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by new game) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
