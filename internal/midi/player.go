// Package midi sends grid notes to MIDI outputs and exports the grid as a
// Standard MIDI File.
package midi

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	// registers the rtmidi driver used by gomidi.GetOutPorts
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/pitch"
)

const velocity = 100

// Channel returns the MIDI channel an instrument is sent on.
func Channel(instr grid.Instrument) uint8 {
	if instr == grid.None {
		return 0
	}
	return uint8(instr) - 1
}

// Player sends each note as a note-on followed by a note-off once its
// duration has passed.
type Player struct {
	mu     sync.Mutex
	out    drivers.Out
	send   func(msg gomidi.Message) error
	closed bool
	log    *slog.Logger
}

// Open connects to the output port whose name contains portName.
func Open(portName string, log *slog.Logger) (*Player, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find MIDI output %q: %w", portName, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", out.String(), err)
	}
	p := newPlayer(send, log)
	p.out = out
	return p, nil
}

func newPlayer(send func(msg gomidi.Message) error, log *slog.Logger) *Player {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Player{send: send, log: log}
}

// Port returns the name of the connected output, if any.
func (p *Player) Port() string {
	if p.out == nil {
		return ""
	}
	return p.out.String()
}

func (p *Player) PlayNote(name string, d time.Duration, instr grid.Instrument) {
	note, err := pitch.Parse(name)
	if err != nil {
		p.log.Warn("note dropped", "pitch", name, "err", err)
		return
	}
	ch := Channel(instr)
	p.sendMsg(gomidi.NoteOn(ch, note, velocity))
	time.AfterFunc(d, func() {
		p.sendMsg(gomidi.NoteOff(ch, note))
	})
}

func (p *Player) sendMsg(msg gomidi.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if err := p.send(msg); err != nil {
		p.log.Warn("MIDI send failed", "msg", msg.String(), "err", err)
	}
}

// Close sends all-notes-off on every instrument channel and closes the port.
func (p *Player) Close() error {
	for _, instr := range grid.Instruments {
		p.sendMsg(gomidi.ControlChange(Channel(instr), 123, 0))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.out != nil {
		if err := p.out.Close(); err != nil {
			return fmt.Errorf("close MIDI output: %w", err)
		}
	}
	return nil
}

// OutPorts lists the names of the available MIDI outputs.
func OutPorts() []string {
	var names []string
	for _, out := range gomidi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}
