// Package pitch converts between pitch names such as "c4" or "f#5",
// MIDI note numbers and frequencies.
package pitch

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidName = errors.New("invalid pitch name")

var noteNames = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

var semitones = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// Parse returns the MIDI note number for a name made of a letter, an
// optional '#' or 'b' accidental and an octave, where c4 is 60.
func Parse(name string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	base, ok := semitones[s[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	rest := s[1:]
	switch rest[0] {
	case '#':
		base++
		rest = rest[1:]
	case 'b':
		base--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	note := (octave+1)*12 + base
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("%w: %q out of MIDI range", ErrInvalidName, name)
	}
	return uint8(note), nil
}

// Name returns the canonical lower-case name of a MIDI note.
func Name(note uint8) string {
	octave := int(note)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}

// Freq converts a MIDI note number to a frequency in Hz.
func Freq(note uint8) float64 {
	// A4 (note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
