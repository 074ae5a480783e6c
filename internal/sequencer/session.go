package sequencer

import (
	"slices"

	"github.com/icco/gridseq/internal/grid"
)

// Mode is the state of a paint stroke.
type Mode int

const (
	Idle Mode = iota
	Painting
	Erasing
)

func (m Mode) String() string {
	switch m {
	case Painting:
		return "painting"
	case Erasing:
		return "erasing"
	default:
		return "idle"
	}
}

// Edit is one buffered stroke entry. Instrument is grid.None for erases.
type Edit struct {
	Cell       grid.Cell
	Instrument grid.Instrument
}

// Session tracks one pointer drag from press to release. Cells crossed
// while dragging are buffered and only written to the grid on release.
type Session struct {
	mode    Mode
	instr   grid.Instrument
	last    grid.Cell
	pending []Edit
}

// Down starts a stroke on c, toggling it in g right away. Any stroke
// still in progress is discarded.
func (s *Session) Down(g *grid.Grid, c grid.Cell, instr grid.Instrument) Mode {
	if g.Toggle(c, instr) {
		s.mode = Painting
	} else {
		s.mode = Erasing
	}
	s.instr = instr
	s.last = c
	s.pending = s.pending[:0]
	return s.mode
}

// Move extends the stroke to c, buffering every cell on the line from the
// previous position. It does nothing when no stroke is active.
func (s *Session) Move(c grid.Cell) {
	if s.mode == Idle {
		return
	}
	instr := s.instr
	if s.mode == Erasing {
		instr = grid.None
	}
	for _, cell := range grid.Line(s.last, c) {
		s.pending = append(s.pending, Edit{Cell: cell, Instrument: instr})
	}
	s.last = c
}

// Up commits the buffered edits to g in order and ends the stroke. It
// returns the number of edits applied.
func (s *Session) Up(g *grid.Grid) int {
	for _, e := range s.pending {
		switch s.mode {
		case Painting:
			g.Set(e.Cell, e.Instrument)
		case Erasing:
			g.Unset(e.Cell)
		}
	}
	n := len(s.pending)
	s.Cancel()
	return n
}

// Cancel drops the stroke without touching the grid.
func (s *Session) Cancel() {
	s.mode = Idle
	s.pending = s.pending[:0]
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Pending returns a copy of the buffered edits.
func (s *Session) Pending() []Edit {
	return slices.Clone(s.pending)
}
