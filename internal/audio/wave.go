package audio

import (
	"math"

	"github.com/icco/gridseq/internal/grid"
)

// oscillate returns the value of the instrument's waveform at phase
// (0 <= phase < 1).
func oscillate(instr grid.Instrument, phase float64) float64 {
	switch instr {
	case grid.Square:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case grid.Sawtooth:
		return 2*phase - 1
	case grid.Triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
