package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/icco/gridseq/internal/grid"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	eng, err := cfg.Engine()
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	if eng.Columns != 32 || eng.Rows != 14 || eng.BPM != 120 {
		t.Errorf("unexpected engine config %+v", eng)
	}
	if eng.Pitches[13] != "c4" || eng.Pitches[0] != "b5" {
		t.Errorf("unexpected pitch table %v", eng.Pitches)
	}
	if eng.Instrument != grid.Sine {
		t.Errorf("initial instrument = %v, want sine", eng.Instrument)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Columns != 32 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridseq.yaml")
	data := []byte(`
columns: 8
bpm: 5000
instruments: [square, triangle]
pitches:
  0: c5
  1: a4
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Error writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Columns != 8 || cfg.Rows != 14 {
		t.Errorf("grid = %dx%d, want 8x14", cfg.Columns, cfg.Rows)
	}
	if len(cfg.Pitches) != 2 {
		t.Errorf("file pitch table must replace the default, got %v", cfg.Pitches)
	}

	eng, err := cfg.Engine()
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	if eng.BPM != 2000 {
		t.Errorf("bpm = %d, want clamped 2000", eng.BPM)
	}
	if eng.Instrument != grid.Square {
		t.Errorf("initial instrument = %v, want square", eng.Instrument)
	}
}

func TestParseKeepsExplicitZeroTempo(t *testing.T) {
	tests := []struct {
		yaml string
		want int
	}{
		{"bpm: 0\n", 1},
		{"bpm: -30\n", 1},
		{"columns: 4\n", 120},
		{"", 120},
	}

	for _, tt := range tests {
		cfg, err := Parse([]byte(tt.yaml))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.yaml, err)
		}
		eng, err := cfg.Engine()
		if err != nil {
			t.Fatalf("Engine: %v", err)
		}
		if eng.BPM != tt.want {
			t.Errorf("Parse(%q): engine bpm = %d, want %d", tt.yaml, eng.BPM, tt.want)
		}
	}
}

func TestParseVolume(t *testing.T) {
	cfg, err := Parse([]byte("volume: 0.8\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Volume != 0.8 {
		t.Errorf("volume = %v, want 0.8", cfg.Volume)
	}
	if cfg, _ := Parse(nil); cfg.Volume != 0.3 {
		t.Errorf("default volume = %v, want 0.3", cfg.Volume)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative columns", "columns: -2"},
		{"zero rows", "rows: 0"},
		{"unknown instrument", "instruments: [kazoo]"},
		{"duplicate instrument", "instruments: [sine, sine]"},
		{"bad pitch", "pitches: {0: q7}"},
		{"unknown output", "output: speakers"},
		{"midi without port", "output: midi"},
		{"not yaml", "columns: [1"},
	}

	for _, tt := range tests {
		if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
