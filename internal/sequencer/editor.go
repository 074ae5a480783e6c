// Package sequencer implements the step sequencer engine: drag-to-paint
// editing of the note grid and beat-synchronised playback.
//
// All methods of Editor, including the timer callbacks it registers with
// its clock, must run on a single goroutine.
package sequencer

import (
	"log/slog"
	"maps"

	"github.com/icco/gridseq/internal/clock"
	"github.com/icco/gridseq/internal/grid"
)

// Config is the fixed shape of an editor.
type Config struct {
	Columns    int
	Rows       int
	BPM        int
	Pitches    PitchTable
	Instrument grid.Instrument // initially selected
}

// Geometry reports the pixel size of the surface the grid is drawn on.
// It is queried on every pointer event since the surface may be resized.
type Geometry interface {
	Surface() (width, height float64)
}

// Snapshot is an immutable copy of the editor state for rendering.
type Snapshot struct {
	Columns    int
	Rows       int
	Cells      map[grid.Cell]grid.Instrument
	Beat       int
	Playing    bool
	BPM        int
	Instrument grid.Instrument
	Stroke     Mode
	Pending    []Edit
}

type Option func(*Editor)

// WithLogger sets the logger used for debug records. A nil logger
// discards them.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// Editor owns the grid, the paint session and the scheduler.
type Editor struct {
	cfg      Config
	grid     *grid.Grid
	session  Session
	sched    *Scheduler
	dispatch Dispatcher
	geometry Geometry
	instr    grid.Instrument
	onChange func()
	log      *slog.Logger
}

func New(cfg Config, player NotePlayer, clk clock.Clock, geometry Geometry, opts ...Option) *Editor {
	g := grid.New()
	e := &Editor{
		cfg:      cfg,
		grid:     g,
		geometry: geometry,
		instr:    cfg.Instrument,
		log:      slog.New(slog.DiscardHandler),
		dispatch: Dispatcher{
			Grid:    g,
			Pitches: maps.Clone(cfg.Pitches),
			Player:  player,
		},
	}
	if e.instr == grid.None {
		e.instr = grid.Sine
	}
	e.sched = NewScheduler(clk, cfg.Columns, cfg.BPM, e.onBeat)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers fn to be called after every state mutation.
func (e *Editor) OnChange(fn func()) {
	e.onChange = fn
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Editor) onBeat(beat int) {
	n := e.dispatch.Column(beat, BeatLength(e.sched.Tempo()))
	e.log.Debug("beat", "beat", beat, "notes", n)
	e.changed()
}

// Cell maps a pointer position to a grid cell using the current surface size.
func (e *Editor) Cell(x, y float64) grid.Cell {
	w, h := e.geometry.Surface()
	return grid.MapPointer(x, y, w, h, e.cfg.Columns, e.cfg.Rows)
}

func (e *Editor) PointerDown(x, y float64) {
	e.Press(e.Cell(x, y))
}

func (e *Editor) PointerMove(x, y float64) {
	e.Drag(e.Cell(x, y))
}

func (e *Editor) PointerUp() {
	e.Release()
}

// Press toggles c with the selected instrument and starts a stroke. A
// cell that ends up occupied is played immediately.
func (e *Editor) Press(c grid.Cell) {
	if e.session.Mode() != Idle {
		e.log.Debug("stroke discarded", "pending", len(e.session.Pending()))
	}
	if e.session.Down(e.grid, c, e.instr) == Painting {
		e.dispatch.Cell(c, BeatLength(e.sched.Tempo()))
	}
	e.changed()
}

// Drag extends the current stroke to c. Without a stroke it is a no-op.
func (e *Editor) Drag(c grid.Cell) {
	if e.session.Mode() == Idle {
		return
	}
	e.session.Move(c)
	e.changed()
}

// Release commits the current stroke.
func (e *Editor) Release() {
	mode := e.session.Mode()
	if mode == Idle {
		return
	}
	n := e.session.Up(e.grid)
	e.log.Debug("stroke committed", "mode", mode, "edits", n)
	e.changed()
}

// CancelStroke drops the current stroke without committing it. The
// toggle applied on press is kept.
func (e *Editor) CancelStroke() {
	if e.session.Mode() == Idle {
		return
	}
	e.session.Cancel()
	e.changed()
}

func (e *Editor) SelectInstrument(instr grid.Instrument) {
	if instr == grid.None || instr == e.instr {
		return
	}
	e.instr = instr
	e.changed()
}

func (e *Editor) Instrument() grid.Instrument {
	return e.instr
}

// Clear empties the grid.
func (e *Editor) Clear() {
	e.session.Cancel()
	e.grid.Clear()
	e.changed()
}

func (e *Editor) Get(c grid.Cell) (grid.Instrument, bool) {
	return e.grid.Get(c)
}

// Play starts playback at the current tempo. An error means the timer
// could not be created and playback is impossible.
func (e *Editor) Play() error {
	if err := e.sched.Start(e.sched.Tempo()); err != nil {
		return err
	}
	e.log.Debug("playback started", "bpm", e.sched.Tempo(), "beat", e.sched.Beat())
	e.changed()
	return nil
}

// Stop halts playback. An error means the beat timer could not be
// cancelled; playback is still reported as stopped.
func (e *Editor) Stop() error {
	if !e.sched.Running() {
		return nil
	}
	err := e.sched.Stop()
	e.log.Debug("playback stopped", "beat", e.sched.Beat())
	e.changed()
	return err
}

func (e *Editor) TogglePlay() error {
	if e.sched.Running() {
		return e.Stop()
	}
	return e.Play()
}

func (e *Editor) Playing() bool {
	return e.sched.Running()
}

// SetTempo clamps bpm into range and applies it, restarting the beat
// timer if playback is running.
func (e *Editor) SetTempo(bpm int) error {
	if err := e.sched.SetTempo(bpm); err != nil {
		return err
	}
	e.log.Debug("tempo changed", "bpm", e.sched.Tempo())
	e.changed()
	return nil
}

func (e *Editor) NudgeTempo(delta int) error {
	return e.SetTempo(e.sched.Tempo() + delta)
}

func (e *Editor) Tempo() int {
	return e.sched.Tempo()
}

func (e *Editor) Beat() int {
	return e.sched.Beat()
}

func (e *Editor) Columns() int {
	return e.cfg.Columns
}

func (e *Editor) Rows() int {
	return e.cfg.Rows
}

// Pitches returns a copy of the pitch table.
func (e *Editor) Pitches() PitchTable {
	return maps.Clone(e.dispatch.Pitches)
}

func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		Columns:    e.cfg.Columns,
		Rows:       e.cfg.Rows,
		Cells:      e.grid.Cells(),
		Beat:       e.sched.Beat(),
		Playing:    e.sched.Running(),
		BPM:        e.sched.Tempo(),
		Instrument: e.instr,
		Stroke:     e.session.Mode(),
		Pending:    e.session.Pending(),
	}
}
