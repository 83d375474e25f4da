package tracker

import (
	"fmt"
	"strings"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/binding"
)

// Swap describes the resolution of a binding collision: the bumped
// action inherited the rebinding target's previous control path.
type Swap struct {
	Action binding.Action
	Path   string
}

// RebindResult is the outcome of one rebind attempt. A nil Swapped
// means no collision occurred; an empty ReadableKey is only ever seen
// on cancellation.
type RebindResult struct {
	Action      binding.Action
	Cancelled   bool
	ReadableKey string
	Duplicate   bool
	Swapped     *Swap
}

// rebindSession is the transient Capturing state of the coordinator.
type rebindSession struct {
	action       binding.Action
	previousPath string
	capture      backend.Capture
}

// RequestRebind starts one interactive rebind of action. The whole
// control map is disabled for the duration of the capture so game input
// cannot race it; it comes back as soon as a candidate is applied, so
// the UI reflects the new binding immediately even while the capture is
// still settling.
//
// customize edits the capture filters (expected device, cancel path,
// exclusions, settle delay) starting from defaults; nil leaves the
// defaults. onComplete fires when the capture settles, onCancel when it
// is cancelled; either may be nil.
//
// Collisions are resolved by swapping: if another action's effective
// path already equals the captured path (case-insensitively), that
// action takes over the rebinding target's previous path. The first
// match in group order wins; bindings are expected to be duplicate-free
// outside an in-progress rebind, so multiple matches indicate a
// pre-existing invariant violation and get no special handling.
//
// At most one rebind may be live per binder; a second request fails
// with ErrRebindInProgress. Rebinding a locked group fails with
// ErrNotRebindable.
func (bd *Binder) RequestRebind(action binding.Action, customize func(*backend.CaptureOptions), onComplete, onCancel func()) error {
	if !bd.group.Rebindable {
		return fmt.Errorf("rebind %q in group %q: %w", action, bd.group.Name, ErrNotRebindable)
	}
	ctl, ok := bd.controls[action]
	if !ok {
		return fmt.Errorf("rebind %q in group %q: %w", action, bd.group.Name, ErrNotBound)
	}

	bd.rebindMu.Lock()
	if bd.session != nil {
		bd.rebindMu.Unlock()
		return fmt.Errorf("rebind %q: %w", action, ErrRebindInProgress)
	}
	sess := &rebindSession{
		action:       action,
		previousPath: ctl.EffectivePath(),
	}
	bd.session = sess
	bd.rebindMu.Unlock()

	// Suspend all raw input delivery for the map, not just this
	// action's notifications. Capture must not race normal game input.
	bd.backend.SetMapEnabled(bd.group.MapID, false)

	opts := backend.CaptureOptions{SettleDelay: backend.DefaultSettleDelay}
	if customize != nil {
		customize(&opts)
	}

	capture, err := bd.backend.BeginCapture(ctl, opts, backend.CaptureCallbacks{
		OnApply: func(path string) {
			bd.applyCandidate(sess, ctl, path)
		},
		OnCancel: func() {
			bd.observers.fireRebind(RebindResult{Action: action, Cancelled: true})
			bd.endSession(sess)
			bd.backend.SetMapEnabled(bd.group.MapID, true)
			if onCancel != nil {
				onCancel()
			}
		},
		OnComplete: func() {
			bd.endSession(sess)
			if onComplete != nil {
				onComplete()
			}
		},
	})
	if err != nil {
		bd.rebindMu.Lock()
		bd.session = nil
		bd.rebindMu.Unlock()
		bd.backend.SetMapEnabled(bd.group.MapID, true)
		return fmt.Errorf("rebind %q: begin capture: %w", action, err)
	}

	bd.rebindMu.Lock()
	sess.capture = capture
	bd.rebindMu.Unlock()
	return nil
}

// applyCandidate handles one captured path. It can run more than once
// before the capture settles; the duplicate check always runs against
// the mapping state as of this candidate.
func (bd *Binder) applyCandidate(sess *rebindSession, target backend.Control, path string) {
	target.ApplyOverride(path)

	result := RebindResult{
		Action:      sess.action,
		ReadableKey: bd.backend.DisplayName(path),
	}
	if dup, ok := bd.findDuplicate(sess.action, path); ok {
		// The swap: the bumped action inherits the rebinding target's
		// old control.
		bd.controls[dup].ApplyOverride(sess.previousPath)
		result.Duplicate = true
		result.Swapped = &Swap{Action: dup, Path: sess.previousPath}
	}
	bd.observers.fireRebind(result)

	// Input goes live again even though the capture may still be
	// settling, so the new binding is usable immediately.
	bd.backend.SetMapEnabled(bd.group.MapID, true)
}

// findDuplicate scans every other action in group order for an
// effective path equal to the newly applied one.
func (bd *Binder) findDuplicate(target binding.Action, path string) (binding.Action, bool) {
	for _, a := range bd.order {
		if a == target {
			continue
		}
		if strings.EqualFold(bd.controls[a].EffectivePath(), path) {
			return a, true
		}
	}
	return "", false
}

// endSession disposes capture resources and returns to Idle. Safe if
// the session already ended (cancel followed by a late complete).
func (bd *Binder) endSession(sess *rebindSession) {
	bd.rebindMu.Lock()
	capture := sess.capture
	if bd.session == sess {
		bd.session = nil
	}
	bd.rebindMu.Unlock()
	if capture != nil {
		capture.Dispose()
	}
}

// Rebinding reports whether a rebind capture is currently live.
func (bd *Binder) Rebinding() bool {
	bd.rebindMu.Lock()
	defer bd.rebindMu.Unlock()
	return bd.session != nil
}
