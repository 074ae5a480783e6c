// Package clock provides the recurring timer the beat scheduler runs on.
package clock

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrInvalidPeriod is returned when a timer is requested with a
	// non-positive period.
	ErrInvalidPeriod = errors.New("clock: period must be positive")

	// ErrClosed is returned by Every on a Ticker that has been closed.
	ErrClosed = errors.New("clock: ticker closed")
)

// Clock creates recurring timers. fire is called once per period until
// the returned Timer is stopped. Implementations must call fire on the
// goroutine that owns the engine state, never concurrently with it.
type Clock interface {
	Every(period time.Duration, fire func()) (Timer, error)
}

// Timer is a running recurring timer. Stop is idempotent; an error means
// the timer could not be cancelled and may still fire.
type Timer interface {
	Stop() error
}

// Ticker is a real-time Clock. Fires are not run directly: they are sent
// on a channel that the host's event loop drains and runs, so timer
// callbacks interleave with input events instead of racing them.
type Ticker struct {
	clock clockwork.Clock
	fires chan func()

	once sync.Once
	done chan struct{}
}

func NewTicker(buffer int) *Ticker {
	return newTicker(clockwork.NewRealClock(), buffer)
}

func newTicker(c clockwork.Clock, buffer int) *Ticker {
	return &Ticker{
		clock: c,
		fires: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Fires returns the channel the host must read fire callbacks from.
func (t *Ticker) Fires() <-chan func() {
	return t.fires
}

// Done is closed once the ticker is closed. Hosts select on it next to
// Fires so that a pending read ends.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}

// Close stops every timer created by t and releases readers blocked on
// Fires. Safe to call more than once.
func (t *Ticker) Close() {
	t.once.Do(func() { close(t.done) })
}

func (t *Ticker) Every(period time.Duration, fire func()) (Timer, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	select {
	case <-t.done:
		return nil, ErrClosed
	default:
	}
	tt := &tickerTimer{
		ticker: t.clock.NewTicker(period),
		done:   make(chan struct{}),
	}
	go tt.run(t.fires, t.done, fire)
	return tt, nil
}

type tickerTimer struct {
	ticker clockwork.Ticker
	once   sync.Once
	done   chan struct{}
}

func (tt *tickerTimer) run(out chan<- func(), closed <-chan struct{}, fire func()) {
	defer tt.ticker.Stop()
	for {
		select {
		case <-tt.ticker.Chan():
			select {
			case out <- fire:
			case <-tt.done:
				return
			case <-closed:
				return
			}
		case <-tt.done:
			return
		case <-closed:
			return
		}
	}
}

func (tt *tickerTimer) Stop() error {
	tt.once.Do(func() {
		tt.ticker.Stop()
		close(tt.done)
	})
	return nil
}
