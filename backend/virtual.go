package backend

import (
	"fmt"
	"strings"
	"sync"
)

// Virtual is an in-memory backend with no device underneath. Actuation
// values are scripted by the caller, and interactive captures are driven
// by SimulateCandidate/SimulateCancel/SimulateComplete. Tests use it as
// the collaborator; host applications can use it for headless runs and
// input replay.
type Virtual struct {
	mu           sync.Mutex
	controls     map[string]*VirtualControl // keyed mapID + "/" + name
	disabledMaps map[string]bool
	listeners    map[string]int
	capture      *virtualCapture
}

// NewVirtual returns an empty virtual backend.
func NewVirtual() *Virtual {
	return &Virtual{
		controls:     make(map[string]*VirtualControl),
		disabledMaps: make(map[string]bool),
		listeners:    make(map[string]int),
	}
}

// AddControl registers a control under a map with a nominal path.
func (v *Virtual) AddControl(mapID, name, path string) *VirtualControl {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := &VirtualControl{backend: v, mapID: mapID, name: name, path: path, enabled: true}
	v.controls[mapID+"/"+name] = c
	return c
}

// FindControl implements Backend.
func (v *Virtual) FindControl(mapID, name string) (Control, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.controls[mapID+"/"+name]
	if !ok {
		return nil, fmt.Errorf("virtual backend: no control %q in map %q", name, mapID)
	}
	return c, nil
}

// SetMapEnabled implements Backend.
func (v *Virtual) SetMapEnabled(mapID string, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disabledMaps[mapID] = !enabled
}

// MapEnabled reports whether a map is currently enabled.
func (v *Virtual) MapEnabled(mapID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.disabledMaps[mapID]
}

// DisplayName implements Backend. "<Keyboard>/space" renders as
// "Space"; paths without a device prefix are title-cased as-is.
func (v *Virtual) DisplayName(path string) string {
	if path == "" {
		return ""
	}
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Listen implements Backend. The virtual backend has no event pump to
// start, but it counts subscriptions so tests can assert the release.
func (v *Virtual) Listen(mapID string) (func(), error) {
	v.mu.Lock()
	v.listeners[mapID]++
	v.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			v.listeners[mapID]--
			v.mu.Unlock()
		})
	}, nil
}

// ListenerCount reports active subscriptions for a map.
func (v *Virtual) ListenerCount(mapID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listeners[mapID]
}

// BeginCapture implements Backend.
func (v *Virtual) BeginCapture(target Control, opts CaptureOptions, cb CaptureCallbacks) (Capture, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.capture != nil {
		return nil, fmt.Errorf("virtual backend: capture already in progress")
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	c := &virtualCapture{backend: v, target: target, opts: opts, cb: cb}
	v.capture = c
	return c, nil
}

// SimulateCandidate feeds one actuated control path into the live
// capture, honoring the capture's filters. Returns true when the path
// was accepted as a candidate.
func (v *Virtual) SimulateCandidate(path string) bool {
	v.mu.Lock()
	c := v.capture
	v.mu.Unlock()
	if c == nil {
		return false
	}
	return c.offer(path)
}

// SimulateCancel cancels the live capture, as if the cancel control had
// been actuated.
func (v *Virtual) SimulateCancel() {
	v.mu.Lock()
	c := v.capture
	v.mu.Unlock()
	if c != nil {
		c.Cancel()
	}
}

// SimulateComplete settles the live capture, as if the debounce window
// had elapsed.
func (v *Virtual) SimulateComplete() {
	v.mu.Lock()
	c := v.capture
	v.mu.Unlock()
	if c != nil {
		c.complete()
	}
}

// VirtualControl is a scripted control.
type VirtualControl struct {
	backend *Virtual
	mapID   string
	name    string
	path    string

	mu        sync.Mutex
	override  string
	actuation float64
	enabled   bool
}

// Name implements Control.
func (c *VirtualControl) Name() string { return c.name }

// Path implements Control.
func (c *VirtualControl) Path() string { return c.path }

// EffectivePath implements Control.
func (c *VirtualControl) EffectivePath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override != "" {
		return c.override
	}
	return c.path
}

// Actuation implements Control. Reads zero while the control or its map
// is disabled.
func (c *VirtualControl) Actuation() float64 {
	if !c.backend.MapEnabled(c.mapID) {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return 0
	}
	return c.actuation
}

// SetActuation scripts the raw actuation value.
func (c *VirtualControl) SetActuation(v float64) {
	c.mu.Lock()
	c.actuation = v
	c.mu.Unlock()
}

// Press scripts a full actuation.
func (c *VirtualControl) Press() { c.SetActuation(1) }

// Release scripts a zero actuation.
func (c *VirtualControl) Release() { c.SetActuation(0) }

// ApplyOverride implements Control.
func (c *VirtualControl) ApplyOverride(path string) {
	c.mu.Lock()
	c.override = path
	c.mu.Unlock()
}

// ClearOverride implements Control.
func (c *VirtualControl) ClearOverride() {
	c.mu.Lock()
	c.override = ""
	c.mu.Unlock()
}

// SetEnabled implements Control.
func (c *VirtualControl) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

type virtualCapture struct {
	backend *Virtual
	target  Control
	opts    CaptureOptions
	cb      CaptureCallbacks

	mu       sync.Mutex
	done     bool
	disposed bool
}

// offer runs the capture filters against one candidate path.
func (c *virtualCapture) offer(path string) bool {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return false
	}
	opts := c.opts
	c.mu.Unlock()

	if opts.CancelPath != "" && strings.EqualFold(path, opts.CancelPath) {
		c.Cancel()
		return false
	}
	for _, ex := range opts.ExcludePaths {
		if strings.EqualFold(path, ex) {
			return false
		}
	}
	if opts.ExpectedDevice != "" && !strings.HasPrefix(path, opts.ExpectedDevice) {
		return false
	}
	if c.cb.OnApply != nil {
		c.cb.OnApply(path)
	}
	return true
}

func (c *virtualCapture) complete() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()
	if c.cb.OnComplete != nil {
		c.cb.OnComplete()
	}
}

// Cancel implements Capture.
func (c *virtualCapture) Cancel() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()
	if c.cb.OnCancel != nil {
		c.cb.OnCancel()
	}
}

// Dispose implements Capture.
func (c *virtualCapture) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.done = true
	c.mu.Unlock()

	c.backend.mu.Lock()
	if c.backend.capture == c {
		c.backend.capture = nil
	}
	c.backend.mu.Unlock()
}
