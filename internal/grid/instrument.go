package grid

import "fmt"

// Instrument identifies the timbre a cell is played with.
type Instrument uint8

const (
	// None is the empty marker. It is never stored in a Grid.
	None Instrument = iota
	Sine
	Square
	Sawtooth
	Triangle
)

var instrumentNames = map[Instrument]string{
	None:     "empty",
	Sine:     "sine",
	Square:   "square",
	Sawtooth: "sawtooth",
	Triangle: "triangle",
}

// Instruments lists every playable instrument in toolbox order.
var Instruments = []Instrument{Sine, Square, Sawtooth, Triangle}

func (i Instrument) String() string {
	if name, ok := instrumentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Instrument(%d)", uint8(i))
}

// ParseInstrument returns the instrument with the given name.
func ParseInstrument(name string) (Instrument, error) {
	for _, i := range Instruments {
		if instrumentNames[i] == name {
			return i, nil
		}
	}
	return None, fmt.Errorf("unknown instrument %q", name)
}
