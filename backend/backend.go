// Package backend defines the contract between trackers and a raw
// input layer. The tracker core never touches device APIs directly; it
// reads actuation values, requests interactive captures and renders
// display names through these interfaces.
package backend

import "time"

// PressThreshold is the actuation value above which a control counts
// as pressed. Matches the analog deadzone feel of a light trigger pull.
const PressThreshold = 0.2

// DefaultSettleDelay is the capture debounce window. Noisy hardware can
// actuate several controls in quick succession; capture only settles
// after this much quiet time.
const DefaultSettleDelay = 100 * time.Millisecond

// Control is one bindable input control inside a control map.
type Control interface {
	// Name is the control's name within its map ("jump", "fire").
	Name() string

	// Path is the nominal control path the control was authored with.
	Path() string

	// EffectivePath is the override path when one is active, otherwise
	// the nominal path.
	EffectivePath() string

	// Actuation returns the current analog actuation value. Disabled
	// controls (or controls in a disabled map) read as zero.
	Actuation() float64

	// ApplyOverride rebinds the control to a new path at runtime.
	ApplyOverride(path string)

	// ClearOverride restores the nominal path.
	ClearOverride()

	// SetEnabled enables or disables this one control.
	SetEnabled(enabled bool)
}

// CaptureOptions filter an interactive capture.
type CaptureOptions struct {
	// ExpectedDevice restricts candidates to one device class, given as
	// a path prefix ("<Keyboard>"). Empty accepts any device.
	ExpectedDevice string

	// CancelPath aborts the capture when actuated ("<Keyboard>/escape").
	CancelPath string

	// ExcludePaths are control paths that never count as candidates.
	ExcludePaths []string

	// SettleDelay is the debounce window before the capture completes.
	SettleDelay time.Duration
}

// CaptureCallbacks receive capture progress. OnApply may fire more than
// once before the capture settles; only the last application is final.
type CaptureCallbacks struct {
	OnApply    func(path string)
	OnCancel   func()
	OnComplete func()
}

// Capture is a live interactive capture operation.
type Capture interface {
	// Cancel aborts the capture; the OnCancel callback fires.
	Cancel()

	// Dispose releases capture resources. Safe to call more than once.
	Dispose()
}

// Backend is the raw input collaborator.
type Backend interface {
	// FindControl resolves a control by map and name. Unresolvable
	// controls are a configuration error, not a runtime condition.
	FindControl(mapID, name string) (Control, error)

	// SetMapEnabled enables or disables a whole control map.
	SetMapEnabled(mapID string, enabled bool)

	// DisplayName renders a control path as a human-readable label.
	DisplayName(path string) string

	// BeginCapture starts an interactive capture of the next physical
	// actuation, to be applied to target.
	BeginCapture(target Control, opts CaptureOptions, cb CaptureCallbacks) (Capture, error)

	// Listen acquires the backend's event subscription for a map, used
	// by continuous samplers. The returned stop function releases it
	// and must be called on every exit path.
	Listen(mapID string) (stop func(), err error)
}
