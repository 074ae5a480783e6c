// Package config loads the editor configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/pitch"
	"github.com/icco/gridseq/internal/sequencer"
)

var ErrInvalid = errors.New("invalid config")

// Output selects where notes are played.
type Output string

const (
	OutputSynth Output = "synth"
	OutputMIDI  Output = "midi"
	OutputNone  Output = "none"
)

// Config is the configuration surface of the editor.
type Config struct {
	Columns     int            `yaml:"columns"`
	Rows        int            `yaml:"rows"`
	BPM         int            `yaml:"bpm"`
	Instruments []string       `yaml:"instruments"`
	Pitches     map[int]string `yaml:"pitches"`
	Output      Output         `yaml:"output"`
	Volume      float64        `yaml:"volume"`
	MIDIPort    string         `yaml:"midiPort,omitempty"`
	ExportPath  string         `yaml:"exportPath,omitempty"`
}

// Default returns the stock 32 x 14 grid: rows 13 to 0 run from c4 up to b5.
func Default() *Config {
	return &Config{
		Columns:     32,
		Rows:        14,
		BPM:         120,
		Instruments: []string{"sine", "square", "sawtooth", "triangle"},
		Pitches: map[int]string{
			13: "c4", 12: "d4", 11: "e4", 10: "f4", 9: "g4", 8: "a4", 7: "b4",
			6: "c5", 5: "d5", 4: "e5", 3: "f5", 2: "g5", 1: "a5", 0: "b5",
		},
		Output:     OutputSynth,
		Volume:     0.3,
		ExportPath: "gridseq.mid",
	}
}

// Load reads a YAML config from path. Fields missing from the file keep
// their default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML config over the defaults and validates it. Keys
// present in the file win, including zero values: "bpm: 0" is kept and
// later clamped, not replaced by the default tempo.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// decoding into the default map would merge tables instead of replacing
	cfg.Instruments, cfg.Pitches = nil, nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if len(c.Instruments) == 0 {
		c.Instruments = def.Instruments
	}
	if c.Pitches == nil {
		c.Pitches = def.Pitches
	}
	if c.ExportPath == "" {
		c.ExportPath = def.ExportPath
	}
}

// Validate checks the grid shape, instruments, pitch names and output.
// Tempo is never rejected; it is clamped when the engine is built.
func (c *Config) Validate() error {
	if c.Columns < 1 || c.Rows < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalid, c.Columns, c.Rows)
	}
	if _, err := c.InstrumentSet(); err != nil {
		return err
	}
	for row, name := range c.Pitches {
		if _, err := pitch.Parse(name); err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrInvalid, row, err)
		}
	}
	switch c.Output {
	case OutputSynth, OutputNone:
	case OutputMIDI:
		if c.MIDIPort == "" {
			return fmt.Errorf("%w: output %q needs midiPort", ErrInvalid, c.Output)
		}
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalid, c.Output)
	}
	return nil
}

// InstrumentSet returns the configured instruments in toolbox order.
func (c *Config) InstrumentSet() ([]grid.Instrument, error) {
	if len(c.Instruments) == 0 {
		return nil, fmt.Errorf("%w: no instruments", ErrInvalid)
	}
	var set []grid.Instrument
	for _, name := range c.Instruments {
		instr, err := grid.ParseInstrument(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if slices.Contains(set, instr) {
			return nil, fmt.Errorf("%w: instrument %q listed twice", ErrInvalid, name)
		}
		set = append(set, instr)
	}
	return set, nil
}

// Engine returns the sequencer configuration. The first configured
// instrument starts selected.
func (c *Config) Engine() (sequencer.Config, error) {
	if err := c.Validate(); err != nil {
		return sequencer.Config{}, err
	}
	set, _ := c.InstrumentSet()
	return sequencer.Config{
		Columns:    c.Columns,
		Rows:       c.Rows,
		BPM:        sequencer.ClampBPM(c.BPM),
		Pitches:    sequencer.PitchTable(c.Pitches),
		Instrument: set[0],
	}, nil
}
