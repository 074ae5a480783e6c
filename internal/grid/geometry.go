package grid

import (
	"math"
	"slices"
)

// MapPointer converts a pointer position over a width x height surface
// into the cell under it. Positions outside the surface yield cells
// outside [0, columns) x [0, rows); they are not clamped.
func MapPointer(x, y, width, height float64, columns, rows int) Cell {
	cellWidth := width / float64(columns)
	cellHeight := height / float64(rows)
	return Cell{
		Column: int(math.Floor(x / cellWidth)),
		Row:    int(math.Floor(y / cellHeight)),
	}
}

// Line returns the 8-connected run of cells from one cell to another,
// both ends included. It steps one unit along the longer axis and rounds
// the accumulated position on the other.
func Line(from, to Cell) []Cell {
	dc := to.Column - from.Column
	dr := to.Row - from.Row
	if dc == 0 && dr == 0 {
		return []Cell{from}
	}

	steps := max(abs(dc), abs(dr))
	cells := make([]Cell, 0, steps+1)

	if abs(dc) > abs(dr) {
		// iterate from the left end, then restore the caller's direction
		start, end := from, to
		if start.Column > end.Column {
			start, end = end, start
		}
		slope := float64(end.Row-start.Row) / float64(end.Column-start.Column)
		row := float64(start.Row)
		for col := start.Column; col <= end.Column; col++ {
			cells = append(cells, Cell{Column: col, Row: roundHalfUp(row)})
			row += slope
		}
	} else {
		start, end := from, to
		if start.Row > end.Row {
			start, end = end, start
		}
		slope := float64(end.Column-start.Column) / float64(end.Row-start.Row)
		col := float64(start.Column)
		for row := start.Row; row <= end.Row; row++ {
			cells = append(cells, Cell{Column: roundHalfUp(col), Row: row})
			col += slope
		}
	}

	if cells[0] != from {
		slices.Reverse(cells)
	}
	return cells
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
