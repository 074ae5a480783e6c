package midi

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/pitch"
)

const ticksPerQuarterNote = 960 // Standard MIDI resolution

// Song is the part of the editor state that is exported.
type Song struct {
	Cells   map[grid.Cell]grid.Instrument
	Pitches map[int]string
	BPM     int
	Columns int
}

type timedMsg struct {
	tick uint32
	msg  gomidi.Message
}

// Build converts the song into an SMF with a tempo track followed by one
// track per instrument. Every column lasts one quarter note. Cells outside
// [0, Columns) or on rows without a pitch are left out, as they never play.
func Build(song Song) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(float64(song.BPM)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	cells := slices.SortedFunc(maps.Keys(song.Cells), func(a, b grid.Cell) int {
		return cmp.Or(cmp.Compare(a.Column, b.Column), cmp.Compare(a.Row, b.Row))
	})

	events := make(map[grid.Instrument][]timedMsg)
	for _, c := range cells {
		instr := song.Cells[c]
		if c.Column < 0 || c.Column >= song.Columns {
			continue
		}
		name, ok := song.Pitches[c.Row]
		if !ok {
			continue
		}
		note, err := pitch.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("cell %d,%d: %w", c.Column, c.Row, err)
		}
		ch := Channel(instr)
		pos := uint32(c.Column) * ticksPerQuarterNote //nolint:gosec // column is bounded by Columns
		events[instr] = append(events[instr],
			timedMsg{tick: pos, msg: gomidi.NoteOn(ch, note, velocity)},
			timedMsg{tick: pos + ticksPerQuarterNote - 1, msg: gomidi.NoteOff(ch, note)},
		)
	}

	endTick := uint32(max(song.Columns, 0)) * ticksPerQuarterNote //nolint:gosec // non-negative
	for _, instr := range grid.Instruments {
		evs := events[instr]
		slices.SortStableFunc(evs, func(a, b timedMsg) int { return cmp.Compare(a.tick, b.tick) })

		var track smf.Track
		var lastTick uint32
		for _, ev := range evs {
			track.Add(ev.tick-lastTick, ev.msg)
			lastTick = ev.tick
		}
		if lastTick < endTick {
			track.Close(endTick - lastTick)
		} else {
			track.Close(0)
		}
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding %s track: %w", instr, err)
		}
	}
	return sm, nil
}

// Export writes the song as a Standard MIDI File to w.
func Export(w io.Writer, song Song) error {
	sm, err := Build(song)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// ExportFile writes the song to path.
func ExportFile(path string, song Song) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, song); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
