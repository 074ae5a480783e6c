package sequencer

import (
	"time"

	"github.com/icco/gridseq/internal/grid"
)

// NotePlayer is the audio collaborator. PlayNote must not block and must
// not call back into the engine.
type NotePlayer interface {
	PlayNote(pitch string, duration time.Duration, instr grid.Instrument)
}

// PitchTable maps a row to the pitch name it sounds. Rows without an
// entry are silent.
type PitchTable map[int]string

// Dispatcher resolves cells to pitches and hands them to a NotePlayer.
type Dispatcher struct {
	Grid    *grid.Grid
	Pitches PitchTable
	Player  NotePlayer
}

// Column plays every occupied cell in col. It returns the number of
// notes sent to the player.
func (d Dispatcher) Column(col int, length time.Duration) int {
	played := 0
	for _, c := range d.Grid.Column(col) {
		if d.Cell(c, length) {
			played++
		}
	}
	return played
}

// Cell plays a single cell if it is occupied and its row has a pitch.
func (d Dispatcher) Cell(c grid.Cell, length time.Duration) bool {
	instr, ok := d.Grid.Get(c)
	if !ok {
		return false
	}
	p, ok := d.Pitches[c.Row]
	if !ok || d.Player == nil {
		return false
	}
	d.Player.PlayNote(p, length, instr)
	return true
}
