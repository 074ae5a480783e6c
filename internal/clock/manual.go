package clock

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

// Manual is a Clock driven by Advance on top of a fake clock. Fires run
// synchronously inside Advance in deadline order, ties broken by creation
// order, which makes it suitable for simulated time.
type Manual struct {
	fake   *clockwork.FakeClock
	start  time.Time
	timers []*manualTimer
}

func NewManual() *Manual {
	fc := clockwork.NewFakeClock()
	return &Manual{fake: fc, start: fc.Now()}
}

// Now returns the simulated time elapsed since the clock was created.
func (m *Manual) Now() time.Duration {
	return m.fake.Since(m.start)
}

// Active returns the number of timers that have not been stopped.
func (m *Manual) Active() int {
	return len(m.timers)
}

func (m *Manual) Every(period time.Duration, fire func()) (Timer, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	t := &manualTimer{
		clock:  m,
		period: period,
		next:   m.fake.Now().Add(period),
		ticker: m.fake.NewTicker(period),
		fire:   fire,
	}
	m.timers = append(m.timers, t)
	return t, nil
}

// Advance moves simulated time forward by d, firing every timer deadline
// that falls inside the window. A timer stopped or created by a fire
// callback takes effect for the rest of the window.
func (m *Manual) Advance(d time.Duration) {
	end := m.fake.Now().Add(d)
	for {
		due, ok := m.nextDue(end)
		if !ok {
			break
		}
		m.fake.Advance(due.Sub(m.fake.Now()))
		for _, t := range slices.Clone(m.timers) {
			if !slices.Contains(m.timers, t) {
				continue
			}
			select {
			case <-t.ticker.Chan():
				t.next = t.next.Add(t.period)
				t.fire()
			default:
			}
		}
	}
	m.fake.Advance(end.Sub(m.fake.Now()))
}

func (m *Manual) nextDue(end time.Time) (time.Time, bool) {
	var due time.Time
	found := false
	for _, t := range m.timers {
		if t.next.After(end) {
			continue
		}
		if !found || t.next.Before(due) {
			due, found = t.next, true
		}
	}
	return due, found
}

type manualTimer struct {
	clock  *Manual
	period time.Duration
	next   time.Time
	ticker clockwork.Ticker
	fire   func()
}

func (t *manualTimer) Stop() error {
	t.ticker.Stop()
	m := t.clock
	m.timers = slices.DeleteFunc(m.timers, func(o *manualTimer) bool { return o == t })
	return nil
}
