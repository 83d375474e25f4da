package tracker

import (
	"sync"
	"time"

	"github.com/automoto/inputkit/binding"
)

// KeyHandler receives key-down and key-up notifications.
type KeyHandler func(action binding.Action)

// HoldHandler receives frame-rate-adjusted hold notifications. frame is
// the adjusted hold count for this sample, prevFrame the count reported
// by the previous sample. Equal values mean a no-op frame (real rate
// above target); a gap above one means frames to interpolate (real rate
// below target) — the tracker supplies only the endpoints.
type HoldHandler func(action binding.Action, frame, prevFrame int)

// RawHoldHandler receives the raw sample count, +1 per sample held.
type RawHoldHandler func(action binding.Action, frames int)

// HoldTimeHandler receives timestamp-based hold notifications from the
// continuous sampler.
type HoldTimeHandler func(action binding.Action, pressedAt, now time.Time)

// RebindHandler receives the outcome of a rebind attempt.
type RebindHandler func(result RebindResult)

// Observers is an ordered set of callback lists. Handlers fire in
// registration order per event.
type Observers struct {
	mu       sync.Mutex
	keyDown  []KeyHandler
	keyUp    []KeyHandler
	hold     []HoldHandler
	rawHold  []RawHoldHandler
	holdTime []HoldTimeHandler
	rebind   []RebindHandler
}

// AddKeyDown registers a key-down handler.
func (o *Observers) AddKeyDown(h KeyHandler) {
	o.mu.Lock()
	o.keyDown = append(o.keyDown, h)
	o.mu.Unlock()
}

// AddKeyUp registers a key-up handler.
func (o *Observers) AddKeyUp(h KeyHandler) {
	o.mu.Lock()
	o.keyUp = append(o.keyUp, h)
	o.mu.Unlock()
}

// AddHold registers an adjusted-count hold handler.
func (o *Observers) AddHold(h HoldHandler) {
	o.mu.Lock()
	o.hold = append(o.hold, h)
	o.mu.Unlock()
}

// AddRawHold registers a raw-count hold handler.
func (o *Observers) AddRawHold(h RawHoldHandler) {
	o.mu.Lock()
	o.rawHold = append(o.rawHold, h)
	o.mu.Unlock()
}

// AddHoldTime registers a timestamp hold handler.
func (o *Observers) AddHoldTime(h HoldTimeHandler) {
	o.mu.Lock()
	o.holdTime = append(o.holdTime, h)
	o.mu.Unlock()
}

// AddRebind registers a rebind-outcome handler.
func (o *Observers) AddRebind(h RebindHandler) {
	o.mu.Lock()
	o.rebind = append(o.rebind, h)
	o.mu.Unlock()
}

// Clear drops every registered handler.
func (o *Observers) Clear() {
	o.mu.Lock()
	o.keyDown = nil
	o.keyUp = nil
	o.hold = nil
	o.rawHold = nil
	o.holdTime = nil
	o.rebind = nil
	o.mu.Unlock()
}

func (o *Observers) fireKeyDown(a binding.Action) {
	o.mu.Lock()
	hs := append([]KeyHandler(nil), o.keyDown...)
	o.mu.Unlock()
	for _, h := range hs {
		h(a)
	}
}

func (o *Observers) fireKeyUp(a binding.Action) {
	o.mu.Lock()
	hs := append([]KeyHandler(nil), o.keyUp...)
	o.mu.Unlock()
	for _, h := range hs {
		h(a)
	}
}

func (o *Observers) fireHold(a binding.Action, frame, prevFrame int) {
	o.mu.Lock()
	hs := append([]HoldHandler(nil), o.hold...)
	o.mu.Unlock()
	for _, h := range hs {
		h(a, frame, prevFrame)
	}
}

// hasRawHold reports whether any raw-count observer is registered; the
// raw notification is skipped entirely when nobody listens.
func (o *Observers) hasRawHold() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.rawHold) > 0
}

func (o *Observers) fireRawHold(a binding.Action, frames int) {
	o.mu.Lock()
	hs := append([]RawHoldHandler(nil), o.rawHold...)
	o.mu.Unlock()
	for _, h := range hs {
		h(a, frames)
	}
}

func (o *Observers) fireHoldTime(a binding.Action, pressedAt, now time.Time) {
	o.mu.Lock()
	hs := append([]HoldTimeHandler(nil), o.holdTime...)
	o.mu.Unlock()
	for _, h := range hs {
		h(a, pressedAt, now)
	}
}

func (o *Observers) fireRebind(r RebindResult) {
	o.mu.Lock()
	hs := append([]RebindHandler(nil), o.rebind...)
	o.mu.Unlock()
	for _, h := range hs {
		h(r)
	}
}
