package game

import (
	"sync"
	"time"
)

// Ticker delivers periodic ticks
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests swap it for a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock ticks on wall time
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	*time.Ticker
}

func (t systemTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// Timer counts whole seconds until it is stopped
type Timer struct {
	mu       sync.Mutex
	elapsed  int
	done     chan struct{}
	stopOnce sync.Once
}

// StartTimer starts counting and calls onTick with the elapsed seconds after
// every tick. onTick runs on the timer goroutine.
func StartTimer(clock Clock, onTick func(elapsed int)) *Timer {
	t := &Timer{done: make(chan struct{})}
	ticker := clock.NewTicker(time.Second)
	go t.run(ticker, onTick)
	return t
}

func (t *Timer) run(ticker Ticker, onTick func(int)) {
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C():
			t.mu.Lock()
			select {
			case <-t.done:
				t.mu.Unlock()
				return
			default:
			}
			t.elapsed++
			elapsed := t.elapsed
			t.mu.Unlock()

			if onTick != nil {
				onTick(elapsed)
			}
		}
	}
}

// Stop halts the timer and returns the final count. The count never changes
// after Stop returns; further calls are no-ops.
func (t *Timer) Stop() int {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		close(t.done)
		t.mu.Unlock()
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Elapsed returns the seconds counted so far
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Stopped reports whether Stop has been called
func (t *Timer) Stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
