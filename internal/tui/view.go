package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/sequencer"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

var instrumentColors = map[grid.Instrument]lipgloss.Color{
	grid.Sine:     lipgloss.Color("#FF0000"),
	grid.Square:   lipgloss.Color("#0000FF"),
	grid.Sawtooth: lipgloss.Color("#FFA500"),
	grid.Triangle: lipgloss.Color("#008000"),
}

const (
	beatColor  = lipgloss.Color("#1F4F50")
	eraseColor = lipgloss.Color("#FFFFFF")
	gridColor  = lipgloss.Color("#444444")
)

var title = cases.Title(language.English)

// toolboxItem is an instrument label and the columns it occupies.
type toolboxItem struct {
	instr  grid.Instrument
	label  string
	x0, x1 int
}

const toolboxPrefix = "Instrument: "

func (m *Model) toolbox() []toolboxItem {
	items := make([]toolboxItem, 0, len(m.instruments))
	x := len(toolboxPrefix)
	for i, instr := range m.instruments {
		label := fmt.Sprintf(" %d %s ", i+1, title.String(instr.String()))
		items = append(items, toolboxItem{instr: instr, label: label, x0: x, x1: x + len(label)})
		x += len(label) + 1
	}
	return items
}

func (m *Model) toolboxRow() int {
	_, h := m.Surface()
	return headerLines + int(h) + 1
}

func (m *Model) toolboxHit(x, y int) (grid.Instrument, bool) {
	if y != m.toolboxRow() {
		return grid.None, false
	}
	for _, item := range m.toolbox() {
		if x >= item.x0 && x < item.x1 {
			return item.instr, true
		}
	}
	return grid.None, false
}

func (m *Model) View() string {
	var b strings.Builder
	s := m.snap

	b.WriteString(titleStyle.Render("GRIDSEQ - Step Sequencer") + "\n")

	status := stoppedStyle.Render("■ Stopped")
	if s.Playing {
		status = playingStyle.Render("▶ Playing")
	}
	b.WriteString(fmt.Sprintf("BPM: %-4d %s  beat %02d/%02d\n\n", s.BPM, status, s.Beat+1, s.Columns))

	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderToolbox() + "\n")
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("drag: paint/erase • space: play/stop • +/-: tempo • [/]: tempo x10 • 1-4/tab: instrument • c: clear • x: export midi • q: quit"))

	return b.String()
}

// renderGrid draws the surface one terminal cell at a time, mapping each
// character centre to a grid cell the same way pointer events are mapped.
func (m *Model) renderGrid() string {
	s := m.snap
	w, h := m.Surface()
	width, height := int(w), int(h)

	pending := make(map[grid.Cell]grid.Instrument, len(s.Pending))
	for _, e := range s.Pending {
		pending[e.Cell] = e.Instrument
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := grid.MapPointer(float64(x)+0.5, float64(y)+0.5, w, h, s.Columns, s.Rows)
			b.WriteString(m.renderChar(c, x, y, w, h, pending))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderChar(c grid.Cell, x, y int, w, h float64, pending map[grid.Cell]grid.Instrument) string {
	s := m.snap
	style := lipgloss.NewStyle()
	if s.Playing && c.Column == s.Beat {
		style = style.Background(beatColor)
	}

	if instr, ok := pending[c]; ok {
		if s.Stroke == sequencer.Erasing {
			return style.Foreground(eraseColor).Render("█")
		}
		return style.Foreground(instrumentColors[instr]).Render("█")
	}
	if instr, ok := s.Cells[c]; ok {
		return style.Foreground(instrumentColors[instr]).Render("█")
	}

	// dot the top-left character of every cell
	left := grid.MapPointer(float64(x)-0.5, float64(y)+0.5, w, h, s.Columns, s.Rows)
	up := grid.MapPointer(float64(x)+0.5, float64(y)-0.5, w, h, s.Columns, s.Rows)
	if (x == 0 || left.Column != c.Column) && (y == 0 || up.Row != c.Row) {
		return style.Foreground(gridColor).Render("·")
	}
	return style.Render(" ")
}

func (m *Model) renderToolbox() string {
	var b strings.Builder
	b.WriteString(toolboxPrefix)
	for _, item := range m.toolbox() {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(instrumentColors[item.instr])
		if item.instr == m.snap.Instrument {
			style = style.Bold(true).Underline(true)
		}
		b.WriteString(style.Render(item.label) + " ")
	}
	return b.String()
}
