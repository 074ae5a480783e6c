package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icco/gridseq/internal/clock"
	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/sequencer"
)

type notes struct {
	pitches []string
}

func (n *notes) PlayNote(pitch string, _ time.Duration, _ grid.Instrument) {
	n.pitches = append(n.pitches, pitch)
}

var testEngine = sequencer.Config{
	Columns:    32,
	Rows:       14,
	BPM:        120,
	Pitches:    sequencer.PitchTable{0: "b5", 13: "c4"},
	Instrument: grid.Sine,
}

// newTestModel returns a model with a 64x14 grid surface: two characters
// per column, one line per row.
func newTestModel(t *testing.T, clk clock.Clock, player sequencer.NotePlayer) *Model {
	t.Helper()
	m := New(Options{
		Engine:     testEngine,
		Player:     player,
		Clock:      clk,
		ExportPath: filepath.Join(t.TempDir(), "out.mid"),
	})
	m.Update(tea.WindowSizeMsg{Width: 64, Height: 14 + headerLines + footerLines})
	return m
}

func mouse(action tea.MouseAction, x, row int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: row + headerLines, Action: action, Button: tea.MouseButtonLeft}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestClickPaintsAndErases(t *testing.T) {
	n := &notes{}
	m := newTestModel(t, clock.NewManual(), n)

	m.Update(mouse(tea.MouseActionPress, 0, 0))
	m.Update(mouse(tea.MouseActionRelease, 0, 0))
	if got, ok := m.Editor().Get(grid.Cell{}); !ok || got != grid.Sine {
		t.Fatalf("cell (0,0) = %v, %v; want sine", got, ok)
	}
	if len(n.pitches) != 1 || n.pitches[0] != "b5" {
		t.Errorf("expected immediate b5, got %v", n.pitches)
	}

	m.Update(mouse(tea.MouseActionPress, 1, 0))
	m.Update(mouse(tea.MouseActionRelease, 1, 0))
	if _, ok := m.Editor().Get(grid.Cell{}); ok {
		t.Error("second click on the same cell should erase it")
	}
}

func TestDragPaintsRow(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	m.Update(key("2"))

	m.Update(mouse(tea.MouseActionPress, 0, 0))
	m.Update(mouse(tea.MouseActionMotion, 6, 0))
	if !strings.Contains(m.View(), "█") {
		t.Error("pending stroke should be drawn before release")
	}
	m.Update(mouse(tea.MouseActionRelease, 6, 0))

	snap := m.Editor().Snapshot()
	if len(snap.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %v", snap.Cells)
	}
	for col := 0; col < 4; col++ {
		if snap.Cells[grid.Cell{Column: col}] != grid.Square {
			t.Errorf("cell (%d,0) = %v, want square", col, snap.Cells[grid.Cell{Column: col}])
		}
	}
}

func TestPressOutsideSurfaceIgnored(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	m.Update(tea.MouseMsg{X: 3, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(m.Editor().Snapshot().Cells) != 0 {
		t.Error("press on the header must not paint")
	}
}

func TestToolboxClickSelectsInstrument(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	items := m.toolbox()
	tri := items[3]

	m.Update(tea.MouseMsg{X: tri.x0, Y: m.toolboxRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Editor().Instrument() != grid.Triangle {
		t.Errorf("instrument = %v, want triangle", m.Editor().Instrument())
	}
}

func TestTempoKeys(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	m.Update(key("+"))
	m.Update(key("]"))
	if m.Editor().Tempo() != 131 {
		t.Errorf("tempo = %d, want 131", m.Editor().Tempo())
	}
	for i := 0; i < 300; i++ {
		m.Update(key("["))
	}
	if m.Editor().Tempo() != 1 {
		t.Errorf("tempo = %d, want clamped to 1", m.Editor().Tempo())
	}
}

func TestPlaybackThroughManualClock(t *testing.T) {
	clk := clock.NewManual()
	n := &notes{}
	m := newTestModel(t, clk, n)
	m.Editor().Press(grid.Cell{Column: 1, Row: 13})
	m.Editor().Release()
	n.pitches = nil

	m.Update(key(" "))
	if !m.Editor().Playing() {
		t.Fatal("space should start playback")
	}
	clk.Advance(500 * time.Millisecond)

	if len(n.pitches) != 1 || n.pitches[0] != "c4" {
		t.Errorf("expected c4 on beat 1, got %v", n.pitches)
	}
	if !strings.Contains(m.View(), "Playing") {
		t.Error("view should show playing state")
	}
}

func TestFireMsgRunsCallback(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	ran := false
	m.Update(fireMsg{fire: func() { ran = true }})
	if !ran {
		t.Error("fire callback was not run in Update")
	}
}

func TestAutoplay(t *testing.T) {
	m := New(Options{Engine: testEngine, Clock: clock.NewManual(), Autoplay: true})
	m.Update(autoplayMsg{})
	if !m.Editor().Playing() {
		t.Error("autoplay should start playback")
	}
}

type brokenClock struct{}

func (brokenClock) Every(time.Duration, func()) (clock.Timer, error) {
	return nil, clock.ErrInvalidPeriod
}

func TestTimerFailureQuits(t *testing.T) {
	m := New(Options{Engine: testEngine, Clock: brokenClock{}})
	_, cmd := m.Update(key(" "))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.Err() == nil {
		t.Error("expected the timer error to be recorded")
	}
}

type stuckTimer struct{}

func (stuckTimer) Stop() error { return errors.New("cannot cancel") }

type stuckClock struct{}

func (stuckClock) Every(time.Duration, func()) (clock.Timer, error) {
	return stuckTimer{}, nil
}

func TestCancelFailureQuits(t *testing.T) {
	m := New(Options{Engine: testEngine, Clock: stuckClock{}})
	if _, cmd := m.Update(key(" ")); cmd != nil {
		t.Fatal("starting playback should not quit")
	}
	_, cmd := m.Update(key(" "))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.Err() == nil {
		t.Error("expected the cancel error to be recorded")
	}
}

func TestQuitReleasesFireListener(t *testing.T) {
	tk := clock.NewTicker(1)
	m := newTestModel(t, tk, nil)
	listen := m.listenFires()

	done := make(chan tea.Msg, 1)
	go func() { done <- listen() }()

	_, cmd := m.Update(key("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	select {
	case msg := <-done:
		if msg != nil {
			t.Errorf("expected no message after quit, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fire listener still blocked after quit")
	}
}

func TestExportKey(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	m.Editor().Press(grid.Cell{Column: 0, Row: 0})
	m.Editor().Release()

	m.Update(key("x"))
	if _, err := os.Stat(m.exportPath); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(m.View(), "Exported") {
		t.Error("view should report the export")
	}
}

func TestClearAndCycle(t *testing.T) {
	m := newTestModel(t, clock.NewManual(), nil)
	m.Editor().Press(grid.Cell{})
	m.Editor().Release()

	m.Update(key("c"))
	if len(m.Editor().Snapshot().Cells) != 0 {
		t.Error("c should clear the grid")
	}
	m.Update(key("tab"))
	if m.Editor().Instrument() != grid.Square {
		t.Errorf("tab from sine = %v, want square", m.Editor().Instrument())
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := New(Options{Engine: testEngine, Clock: clock.NewManual()})
	view := m.View()
	if !strings.Contains(view, "GRIDSEQ") || !strings.Contains(view, "Sawtooth") {
		t.Errorf("unexpected view:\n%s", view)
	}
}
