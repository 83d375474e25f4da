package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/binding"
)

var (
	// ErrNoCancellation means Run was started without a context; the
	// loop would be unstoppable.
	ErrNoCancellation = errors.New("sampler started without a cancellation context")

	// ErrSamplerRunning means a sampling loop is already active on
	// this instance. At most one loop per sampler.
	ErrSamplerRunning = errors.New("sampler loop already running")
)

// holdState is the per-action state of the continuous variant. Time
// basis is timestamps, not frame counts: this loop may tick far more
// often than any display refresh.
type holdState struct {
	pressed   bool
	pressedAt time.Time
}

// Sampler is the continuous variant: a long-lived background loop
// ticking at the process-wide backend polling rate, independent of the
// game loop. It shares the Binder (bindings, observers, rebind
// coordinator) with the discrete Tracker; only the timing model
// differs.
type Sampler struct {
	binder  *Binder
	now     func() time.Time
	running atomic.Bool

	mu     sync.Mutex
	states map[binding.Action]*holdState
}

// NewSampler builds a continuous sampler over a binder.
func NewSampler(bd *Binder) *Sampler {
	s := &Sampler{
		binder: bd,
		now:    time.Now,
		states: make(map[binding.Action]*holdState, len(bd.order)),
	}
	for _, a := range bd.order {
		s.states[a] = &holdState{}
	}
	return s
}

// Binder returns the shared binding core.
func (s *Sampler) Binder() *Binder { return s.binder }

// Running reports whether a sampling loop is active.
func (s *Sampler) Running() bool { return s.running.Load() }

// Run samples until ctx is cancelled, ticking at the process-wide
// polling rate (backend.SetPollingRate). enabled is re-evaluated every
// tick: while it returns false, capture continues but no notifications
// are delivered. A nil predicate means always enabled.
//
// Run fails before any state mutation if ctx is nil or a loop is
// already active. The backend event subscription acquired at loop start
// is released on every exit path. Cancellation is cooperative, checked
// once per tick; callers wanting a timeout race the context against an
// external timer.
func (s *Sampler) Run(ctx context.Context, enabled func() bool) error {
	if ctx == nil {
		return ErrNoCancellation
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrSamplerRunning
	}
	defer s.running.Store(false)

	stop, err := s.binder.backend.Listen(s.binder.group.MapID)
	if err != nil {
		return err
	}
	defer stop()

	ticker := time.NewTicker(backend.PollingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			notify := enabled == nil || enabled()
			s.tick(s.now(), notify)
			// Re-arm with the current process-wide rate so a
			// SetPollingRate call reaches loops already running.
			ticker.Reset(backend.PollingInterval())
		}
	}
}

// tick runs one sampling pass. With notify false the pressed state and
// press timestamps still update — suppression hides notifications, it
// does not stop capture. Like Tracker.Sample, notifications are
// collected under the lock and fired after it, so handlers may read the
// sampler back.
func (s *Sampler) tick(now time.Time, notify bool) {
	var edges []edgeEvent
	var held []binding.Action

	s.mu.Lock()
	for _, a := range s.binder.order {
		pressed := s.binder.controls[a].Actuation() > backend.PressThreshold
		st := s.states[a]
		if pressed != st.pressed {
			st.pressed = pressed
			if pressed {
				st.pressedAt = now
			}
			edges = append(edges, edgeEvent{action: a, pressed: pressed})
		}
		if st.pressed {
			held = append(held, a)
		} else {
			st.pressedAt = time.Time{}
		}
	}
	pressedAt := make(map[binding.Action]time.Time, len(held))
	for _, a := range held {
		pressedAt[a] = s.states[a].pressedAt
	}
	s.mu.Unlock()

	if !notify {
		return
	}
	for _, e := range edges {
		if e.pressed {
			s.binder.observers.fireKeyDown(e.action)
		} else {
			s.binder.observers.fireKeyUp(e.action)
		}
	}
	for _, a := range held {
		s.binder.observers.fireHoldTime(a, pressedAt[a], now)
	}
}

// Pressed reports the tracked pressed state of an action.
func (s *Sampler) Pressed(a binding.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[a]
	return ok && st.pressed
}

// PressedAt returns when an action was pressed; the zero time while it
// is released.
func (s *Sampler) PressedAt(a binding.Action) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[a]
	if !ok {
		return time.Time{}
	}
	return st.pressedAt
}
