package game

import (
	"sync"
	"time"
)

// LongPressDuration is how long a press must be held to count as a flag
const LongPressDuration = 500 * time.Millisecond

// GestureState is the state of a single press
type GestureState int

const (
	GestureIdle GestureState = iota
	GesturePending
	GestureFired
	GestureCanceled
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GesturePending:
		return "pending"
	case GestureFired:
		return "fired"
	case GestureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// GestureAction is what the caller should do after a release
type GestureAction int

const (
	NoAction GestureAction = iota
	TapAction
)

// Gesture tells a tap from a long press. Exactly one of them wins: the
// deferred long-press callback or the tap returned from Release.
type Gesture struct {
	mu          sync.Mutex
	state       GestureState
	duration    time.Duration
	timer       *time.Timer
	onLongPress func()
}

// NewGesture creates an idle gesture that calls onLongPress once the press has
// been held for duration.
func NewGesture(duration time.Duration, onLongPress func()) *Gesture {
	return &Gesture{
		duration:    duration,
		onLongPress: onLongPress,
	}
}

// Press starts the gesture. It returns false if the gesture was already used.
func (g *Gesture) Press() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GestureIdle {
		return false
	}
	g.state = GesturePending
	g.timer = time.AfterFunc(g.duration, g.fire)
	return true
}

// Release ends the gesture. A release before the long press fired is a tap.
func (g *Gesture) Release() GestureAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GesturePending {
		return NoAction
	}
	g.state = GestureCanceled
	g.timer.Stop()
	return TapAction
}

// Move cancels a pending press without producing a tap
func (g *Gesture) Move() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GesturePending {
		return
	}
	g.state = GestureCanceled
	g.timer.Stop()
}

// State returns the current gesture state
func (g *Gesture) State() GestureState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gesture) fire() {
	g.mu.Lock()
	if g.state != GesturePending {
		g.mu.Unlock()
		return
	}
	g.state = GestureFired
	g.mu.Unlock()

	if g.onLongPress != nil {
		g.onLongPress()
	}
}
