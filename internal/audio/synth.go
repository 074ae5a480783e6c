// Package audio plays grid notes through the system audio output.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/icco/gridseq/internal/grid"
	"github.com/icco/gridseq/internal/pitch"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit
	maxVoices    = 64
)

// voice is one sounding note. It holds for a fixed number of samples and
// then releases.
type voice struct {
	wave      grid.Instrument
	frequency float64
	phase     float64
	envelope  float64
	remaining int // samples left before release
	releasing bool
	active    bool
}

// Synth is a polyphonic oscillator synth. It implements the sequencer's
// NotePlayer: each instrument selects an oscillator shape.
type Synth struct {
	mu           sync.Mutex
	player       *oto.Player
	voices       []*voice
	masterVolume float64
	log          *slog.Logger
}

// NewSynth opens the audio device and starts streaming.
func NewSynth(log *slog.Logger) (*Synth, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-readyChan

	s := newSynth(log)
	s.player = otoCtx.NewPlayer(&synthReader{synth: s})
	s.player.Play()
	return s, nil
}

func newSynth(log *slog.Logger) *Synth {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Synth{
		masterVolume: 0.3,
		log:          log,
	}
}

// PlayNote starts a note that sounds for d and then fades out. Unknown
// pitch names are dropped.
func (s *Synth) PlayNote(name string, d time.Duration, instr grid.Instrument) {
	note, err := pitch.Parse(name)
	if err != nil {
		s.log.Warn("note dropped", "pitch", name, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.freeVoice()
	*v = voice{
		wave:      instr,
		frequency: pitch.Freq(note),
		remaining: int(d.Seconds() * sampleRate),
		active:    true,
	}
}

// freeVoice returns an inactive voice, a new one, or steals the oldest.
func (s *Synth) freeVoice() *voice {
	for _, v := range s.voices {
		if !v.active {
			return v
		}
	}
	if len(s.voices) < maxVoices {
		v := &voice{}
		s.voices = append(s.voices, v)
		return v
	}
	v := s.voices[0]
	s.voices = append(s.voices[1:], v)
	return v
}

// Active returns the number of voices currently sounding.
func (s *Synth) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, v := range s.voices {
		if v.active {
			n++
		}
	}
	return n
}

// SetVolume sets the master volume (0.0 - 1.0)
func (s *Synth) SetVolume(vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterVolume = min(max(vol, 0), 1)
}

// Silence releases every sounding voice.
func (s *Synth) Silence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.voices {
		if v.active {
			v.releasing = true
		}
	}
}

// Close stops the audio stream.
func (s *Synth) Close() error {
	s.Silence()
	if s.player != nil {
		s.player.Pause()
	}
	return nil
}

// synthReader implements io.Reader for continuous audio generation
type synthReader struct {
	synth *Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	r.synth.render(buf)
	return len(buf), nil
}

// render fills buf with interleaved 16-bit little-endian stereo frames.
func (s *Synth) render(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameSize := channelCount * bitDepth
	numSamples := len(buf) / frameSize

	for i := 0; i < numSamples; i++ {
		var sample float64
		for _, v := range s.voices {
			if v.active {
				sample += v.next() * 0.2
			}
		}

		sample *= s.masterVolume
		sample = min(max(sample, -1), 1)
		sampleInt := int16(sample * 32767)

		idx := i * frameSize
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}
}

// next returns the voice's next sample and advances its phase and envelope.
func (v *voice) next() float64 {
	out := oscillate(v.wave, v.phase) * v.envelope

	v.phase += v.frequency / sampleRate
	if v.phase >= 1.0 {
		v.phase -= 1.0
	}

	if !v.releasing {
		v.remaining--
		if v.remaining <= 0 {
			v.releasing = true
		}
	}

	switch {
	case v.releasing:
		v.envelope *= 0.9995
		if v.envelope < 0.001 {
			v.active = false
		}
	case v.envelope < 1.0:
		v.envelope = min(v.envelope+0.001, 1.0)
	}
	return out
}
