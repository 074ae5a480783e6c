// Package tui is the terminal host for the sequencer: it turns mouse and
// key events into editor operations and draws editor snapshots.
package tui

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icco/gridseq/internal/clock"
	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/midi"
	"github.com/icco/gridseq/internal/sequencer"
)

const (
	headerLines = 3 // title, status, blank
	footerLines = 4 // blank, toolbox, message, help
)

// Options configure a Model.
type Options struct {
	Engine      sequencer.Config
	Player      sequencer.NotePlayer
	Instruments []grid.Instrument
	ExportPath  string
	Autoplay    bool
	Log         *slog.Logger

	// Clock drives playback. A *clock.Ticker is drained by the model;
	// nil means a new Ticker.
	Clock clock.Clock
}

// Model is the bubbletea model of the editor.
type Model struct {
	editor      *sequencer.Editor
	clock       clock.Clock
	instruments []grid.Instrument
	exportPath  string
	autoplay    bool
	log         *slog.Logger

	snap    sequencer.Snapshot
	width   int
	height  int
	message string
	err     error
}

// fireMsg carries a beat timer callback into the update loop.
type fireMsg struct {
	fire func()
}

type autoplayMsg struct{}

func New(opts Options) *Model {
	m := &Model{
		clock:       opts.Clock,
		instruments: opts.Instruments,
		exportPath:  opts.ExportPath,
		autoplay:    opts.Autoplay,
		log:         opts.Log,
	}
	if m.clock == nil {
		m.clock = clock.NewTicker(8)
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	if len(m.instruments) == 0 {
		m.instruments = grid.Instruments
	}
	m.editor = sequencer.New(opts.Engine, opts.Player, m.clock, m, sequencer.WithLogger(m.log))
	m.editor.OnChange(func() { m.snap = m.editor.Snapshot() })
	m.snap = m.editor.Snapshot()
	return m
}

// Editor returns the engine driven by the model.
func (m *Model) Editor() *sequencer.Editor {
	return m.editor
}

// Err returns the fatal error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Surface reports the size of the grid area in terminal cells.
func (m *Model) Surface() (float64, float64) {
	w := m.width
	h := m.height - headerLines - footerLines
	if w <= 0 || h <= 0 {
		// no window size yet: two characters per column
		return float64(m.snap.Columns * 2), float64(m.snap.Rows)
	}
	return float64(w), float64(h)
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenFires()}
	if m.autoplay {
		cmds = append(cmds, func() tea.Msg { return autoplayMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) listenFires() tea.Cmd {
	tk, ok := m.clock.(*clock.Ticker)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		select {
		case fire := <-tk.Fires():
			return fireMsg{fire: fire}
		case <-tk.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.CancelStroke()
		return m, nil

	case fireMsg:
		msg.fire()
		return m, m.listenFires()

	case autoplayMsg:
		return m, m.fatal(m.editor.Play())

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// fatal ends the program when the beat timer cannot be used.
func (m *Model) fatal(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.err = fmt.Errorf("playback timer: %w", err)
	m.log.Error("fatal", "err", err)
	m.closeClock()
	return tea.Quit
}

// quit stops playback and releases the fire listener.
func (m *Model) quit() tea.Cmd {
	if err := m.editor.Stop(); err != nil {
		return m.fatal(err)
	}
	m.closeClock()
	return tea.Quit
}

func (m *Model) closeClock() {
	if tk, ok := m.clock.(*clock.Ticker); ok {
		tk.Close()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	// pointer at the centre of the terminal cell
	x := float64(msg.X) + 0.5
	y := float64(msg.Y-headerLines) + 0.5

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if instr, ok := m.toolboxHit(msg.X, msg.Y); ok {
			m.editor.SelectInstrument(instr)
			return
		}
		if !m.onSurface(x, y) {
			return
		}
		m.editor.PointerDown(x, y)
	case tea.MouseActionMotion:
		m.editor.PointerMove(x, y)
	case tea.MouseActionRelease:
		m.editor.PointerUp()
	}
}

func (m *Model) onSurface(x, y float64) bool {
	w, h := m.Surface()
	return x >= 0 && y >= 0 && x < w && y < h
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, m.quit()
	case " ", "p":
		return m, m.fatal(m.editor.TogglePlay())
	case "+", "=":
		return m, m.fatal(m.editor.NudgeTempo(1))
	case "-", "_":
		return m, m.fatal(m.editor.NudgeTempo(-1))
	case "]":
		return m, m.fatal(m.editor.NudgeTempo(10))
	case "[":
		return m, m.fatal(m.editor.NudgeTempo(-10))
	case "tab":
		m.cycleInstrument()
	case "c":
		m.editor.Clear()
		m.message = "Grid cleared"
	case "x":
		m.export()
	case "esc":
		m.editor.CancelStroke()
	default:
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < len(m.instruments) {
				m.editor.SelectInstrument(m.instruments[i])
			}
		}
	}
	return m, nil
}

func (m *Model) cycleInstrument() {
	cur := m.editor.Instrument()
	for i, instr := range m.instruments {
		if instr == cur {
			m.editor.SelectInstrument(m.instruments[(i+1)%len(m.instruments)])
			return
		}
	}
	m.editor.SelectInstrument(m.instruments[0])
}

func (m *Model) export() {
	song := midi.Song{
		Cells:   m.snap.Cells,
		Pitches: m.editor.Pitches(),
		BPM:     m.snap.BPM,
		Columns: m.snap.Columns,
	}
	if err := midi.ExportFile(m.exportPath, song); err != nil {
		m.message = fmt.Sprintf("Error exporting: %v", err)
		m.log.Warn("export failed", "path", m.exportPath, "err", err)
		return
	}
	m.message = fmt.Sprintf("Exported to %s", m.exportPath)
	m.log.Info("exported", "path", m.exportPath, "cells", len(song.Cells))
}
