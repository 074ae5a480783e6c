package sequencer

import (
	"errors"
	"time"

	"github.com/icco/gridseq/internal/clock"
	"github.com/icco/gridseq/internal/grid"
)

type playedNote struct {
	pitch    string
	duration time.Duration
	instr    grid.Instrument
}

type recordingPlayer struct {
	notes []playedNote
}

func (p *recordingPlayer) PlayNote(pitch string, d time.Duration, instr grid.Instrument) {
	p.notes = append(p.notes, playedNote{pitch: pitch, duration: d, instr: instr})
}

type fixedSurface struct {
	width, height float64
}

func (s *fixedSurface) Surface() (float64, float64) {
	return s.width, s.height
}

// heldClock hands out timers whose fires are collected instead of run,
// like fires sitting in a host event queue.
type heldClock struct {
	fires []func()
}

type nopTimer struct{}

func (nopTimer) Stop() error { return nil }

func (c *heldClock) Every(_ time.Duration, fire func()) (clock.Timer, error) {
	c.fires = append(c.fires, fire)
	return nopTimer{}, nil
}

type brokenClock struct{}

var errNoTimer = errors.New("timer unavailable")

func (brokenClock) Every(time.Duration, func()) (clock.Timer, error) {
	return nil, errNoTimer
}

// stuckClock starts timers that cannot be cancelled.
type stuckClock struct{}

var errStuckTimer = errors.New("timer cannot be cancelled")

type stuckTimer struct{}

func (stuckTimer) Stop() error { return errStuckTimer }

func (stuckClock) Every(time.Duration, func()) (clock.Timer, error) {
	return stuckTimer{}, nil
}

var testPitches = PitchTable{0: "b5", 1: "a5", 2: "g5", 3: "f5"}

func newTestEditor(clk clock.Clock, player NotePlayer) *Editor {
	cfg := Config{
		Columns:    4,
		Rows:       4,
		BPM:        120,
		Pitches:    testPitches,
		Instrument: grid.Sine,
	}
	return New(cfg, player, clk, &fixedSurface{width: 400, height: 400})
}
