package sequencer

import (
	"fmt"
	"time"

	"github.com/icco/gridseq/internal/clock"
)

const (
	MinBPM = 1
	MaxBPM = 2000
)

// ClampBPM limits bpm to [MinBPM, MaxBPM].
func ClampBPM(bpm int) int {
	return min(max(bpm, MinBPM), MaxBPM)
}

// BeatLength is the duration of one beat at bpm.
func BeatLength(bpm int) time.Duration {
	return time.Minute / time.Duration(ClampBPM(bpm))
}

// Scheduler advances a beat pointer around the grid's columns once per
// beat and reports every new beat to onBeat.
type Scheduler struct {
	clock   clock.Clock
	columns int
	bpm     int
	beat    int
	timer   clock.Timer
	epoch   uint64
	onBeat  func(beat int)
}

// NewScheduler returns a stopped scheduler. columns must be positive.
func NewScheduler(c clock.Clock, columns, bpm int, onBeat func(beat int)) *Scheduler {
	return &Scheduler{
		clock:   c,
		columns: columns,
		bpm:     ClampBPM(bpm),
		onBeat:  onBeat,
	}
}

// Start runs the scheduler at bpm, replacing any running timer. The first
// tick fires one full beat after Start returns.
func (s *Scheduler) Start(bpm int) error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.bpm = ClampBPM(bpm)

	// Fires queued by a timer that has since been stopped carry an old
	// epoch and are dropped in tick.
	s.epoch++
	epoch := s.epoch
	timer, err := s.clock.Every(BeatLength(s.bpm), func() { s.tick(epoch) })
	if err != nil {
		return fmt.Errorf("start beat timer at %d bpm: %w", s.bpm, err)
	}
	s.timer = timer
	return nil
}

// Stop cancels the timer. The beat pointer is kept so that a later Start
// resumes where playback left off. The scheduler counts as stopped even
// when cancelling fails: later fires of that timer are dropped.
func (s *Scheduler) Stop() error {
	if s.timer == nil {
		return nil
	}
	err := s.timer.Stop()
	s.timer = nil
	s.epoch++
	if err != nil {
		return fmt.Errorf("stop beat timer: %w", err)
	}
	return nil
}

// SetTempo clamps bpm and, when running, restarts the timer at the new
// period.
func (s *Scheduler) SetTempo(bpm int) error {
	bpm = ClampBPM(bpm)
	if !s.Running() {
		s.bpm = bpm
		return nil
	}
	return s.Start(bpm)
}

func (s *Scheduler) tick(epoch uint64) {
	if epoch != s.epoch || s.timer == nil {
		return
	}
	s.beat = (s.beat + 1) % s.columns
	if s.onBeat != nil {
		s.onBeat(s.beat)
	}
}

func (s *Scheduler) Running() bool {
	return s.timer != nil
}

func (s *Scheduler) Beat() int {
	return s.beat
}

func (s *Scheduler) Tempo() int {
	return s.bpm
}
