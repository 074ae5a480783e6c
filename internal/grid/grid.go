// Package grid holds the sparse note grid and the geometry helpers that
// turn pointer positions into grid cells.
package grid

import (
	"maps"
	"slices"
)

// Cell addresses one slot of the grid. Column is the beat, Row the pitch slot.
// Coordinates are not bounded; cells outside the visible grid are valid keys.
type Cell struct {
	Column int
	Row    int
}

// Grid maps cells to instruments. A missing key means the cell is empty.
type Grid struct {
	cells map[Cell]Instrument
}

func New() *Grid {
	return &Grid{cells: make(map[Cell]Instrument)}
}

// Set stores instr at c, overwriting any previous value. Setting None
// removes the cell so that emptiness is always key absence.
func (g *Grid) Set(c Cell, instr Instrument) {
	if instr == None {
		g.Unset(c)
		return
	}
	g.cells[c] = instr
}

func (g *Grid) Unset(c Cell) {
	delete(g.cells, c)
}

func (g *Grid) Get(c Cell) (Instrument, bool) {
	instr, ok := g.cells[c]
	return instr, ok
}

// Toggle clears c if it already holds instr, otherwise sets it to instr
// (a cell holding a different instrument is overwritten). It reports
// whether the cell is occupied afterwards.
func (g *Grid) Toggle(c Cell, instr Instrument) bool {
	if cur, ok := g.cells[c]; ok && cur == instr {
		g.Unset(c)
		return false
	}
	g.Set(c, instr)
	return true
}

func (g *Grid) Len() int {
	return len(g.cells)
}

func (g *Grid) Clear() {
	clear(g.cells)
}

// Column returns the occupied cells of column col, ordered by row.
func (g *Grid) Column(col int) []Cell {
	var cells []Cell
	for c := range g.cells {
		if c.Column == col {
			cells = append(cells, c)
		}
	}
	slices.SortFunc(cells, func(a, b Cell) int { return a.Row - b.Row })
	return cells
}

// Cells returns a copy of the mapping.
func (g *Grid) Cells() map[Cell]Instrument {
	return maps.Clone(g.cells)
}
