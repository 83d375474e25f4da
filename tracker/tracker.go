package tracker

import (
	"math"
	"sync"
	"time"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/binding"
)

// DefaultTargetRate is the tick rate hold counts are normalized to.
const DefaultTargetRate = 60

// actionState is the per-action tracking state. The adjusted hold count
// is derived from holdElapsed on demand, never stored.
type actionState struct {
	pressed     bool
	holdElapsed time.Duration
	rawFrames   int
}

// Tracker is the discrete, per-frame variant: the game loop calls
// Sample exactly once per tick, and hold durations are normalized to
// the target tick rate so observers see stable frame counts regardless
// of the real frame rate.
type Tracker struct {
	binder     *Binder
	targetRate float64
	now        func() time.Time

	// mu guards the whole sampling pass; Disable racing a pass waits
	// for it to finish and then resets.
	mu         sync.Mutex
	enabled    bool
	lastSample time.Time
	states     map[binding.Action]*actionState
}

// NewTracker builds a tracker over a binder. A targetRate of zero or
// below falls back to DefaultTargetRate. The tracker starts enabled.
func NewTracker(bd *Binder, targetRate float64) *Tracker {
	if targetRate <= 0 {
		targetRate = DefaultTargetRate
	}
	t := &Tracker{
		binder:     bd,
		targetRate: targetRate,
		now:        time.Now,
		enabled:    true,
		states:     make(map[binding.Action]*actionState, len(bd.order)),
	}
	for _, a := range bd.order {
		t.states[a] = &actionState{}
	}
	t.lastSample = t.now()
	return t
}

// Binder returns the shared binding core.
func (t *Tracker) Binder() *Binder { return t.binder }

// edgeEvent and holdEvent are the notifications one sampling pass
// produces. They are collected while the state mutex is held and fired
// after it is released, so handlers observe the fully updated pass and
// may call back into the tracker.
type edgeEvent struct {
	action  binding.Action
	pressed bool
}

type holdEvent struct {
	action      binding.Action
	frame, prev int
	raw         int
}

// Sample runs one tracking pass. Call exactly once per game-loop tick.
//
// While the tracker is disabled this returns immediately, reading and
// firing nothing. Disabling freezes the action-level pipeline only; the
// backend can still be queried raw for physical actuation.
func (t *Tracker) Sample() {
	var edges []edgeEvent
	var holds []holdEvent

	t.mu.Lock()
	if !t.enabled {
		t.mu.Unlock()
		return
	}

	now := t.now()
	dt := now.Sub(t.lastSample)
	t.lastSample = now
	if dt < 0 {
		dt = 0
	}

	// Edge pass: detect threshold crossings since the previous sample.
	for _, a := range t.binder.order {
		pressed := t.binder.controls[a].Actuation() > backend.PressThreshold
		st := t.states[a]
		if pressed == st.pressed {
			continue
		}
		st.pressed = pressed
		edges = append(edges, edgeEvent{action: a, pressed: pressed})
	}

	// Hold pass: actions pressed as of this pass accumulate hold time;
	// everything else carries zero hold state.
	for _, a := range t.binder.order {
		st := t.states[a]
		if !st.pressed {
			st.holdElapsed = 0
			st.rawFrames = 0
			continue
		}
		prev := adjustedFrames(st.holdElapsed, t.targetRate)
		st.holdElapsed += dt
		st.rawFrames++
		holds = append(holds, holdEvent{
			action: a,
			frame:  adjustedFrames(st.holdElapsed, t.targetRate),
			prev:   prev,
			raw:    st.rawFrames,
		})
	}
	t.mu.Unlock()

	// Delivery happens outside the lock. The pass is already complete,
	// so a handler reading Pressed or Hold sees a consistent snapshot,
	// and one calling Disable takes effect from the next pass on.
	for _, e := range edges {
		if e.pressed {
			t.binder.observers.fireKeyDown(e.action)
		} else {
			t.binder.observers.fireKeyUp(e.action)
		}
	}
	rawWanted := t.binder.observers.hasRawHold()
	for _, h := range holds {
		t.binder.observers.fireHold(h.action, h.frame, h.prev)
		if rawWanted {
			t.binder.observers.fireRawHold(h.action, h.raw)
		}
	}
}

// Enable resumes sampling. The sample clock is re-based so the first
// tick after enabling does not see the disabled gap as hold time.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
	t.lastSample = t.now()
}

// Disable suspends sampling and hard-resets every action to released
// with zero hold counters. This is a reset, not a pause: re-enabling
// starts clean rather than resuming mid-hold.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
	for _, st := range t.states {
		st.pressed = false
		st.holdElapsed = 0
		st.rawFrames = 0
	}
}

// Enabled reports whether the tracker is sampling.
func (t *Tracker) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Pressed reports the tracked pressed state of an action.
func (t *Tracker) Pressed(a binding.Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[a]
	return ok && st.pressed
}

// Hold returns the accumulated hold time and raw sample count for an
// action. Both are zero while the action is released.
func (t *Tracker) Hold(a binding.Action) (time.Duration, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[a]
	if !ok {
		return 0, 0
	}
	return st.holdElapsed, st.rawFrames
}

// adjustedFrames converts accumulated hold time into the frame count an
// ideal loop at the target rate would have reached.
func adjustedFrames(held time.Duration, targetRate float64) int {
	return int(math.Round(held.Seconds() * targetRate))
}
