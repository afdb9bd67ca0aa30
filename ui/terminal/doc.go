// Package terminal plays a fifteen puzzle session full screen with termbox.
//
// Tiles are activated with a left click or with the arrow keys, which slide
// the neighbor of the free cell in the arrow's direction. n starts a new game,
// q or Esc quits. Moves go through service.GameService, so a terminal game is
// an ordinary session and shows up in the REST API like any other.
package terminal
