// Package ebitenbackend implements the backend contract over ebiten's
// polling API. The host game owns one Backend, calls Update once per
// frame from its Update method, and hands the backend to a tracker
// binder.
package ebitenbackend

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/automoto/inputkit/backend"
)

// Backend reads keyboard, mouse and standard-layout gamepad controls.
type Backend struct {
	mu           sync.Mutex
	controls     map[string]*control // keyed mapID + "/" + name
	disabledMaps map[string]bool
	listeners    map[string]int
	capture      *capture

	// reused across frames to avoid per-frame allocations
	gamepadIDs  []ebiten.GamepadID
	pressedKeys []ebiten.Key
}

// New returns an empty ebiten backend.
func New() *Backend {
	return &Backend{
		controls:     make(map[string]*control),
		disabledMaps: make(map[string]bool),
		listeners:    make(map[string]int),
	}
}

// Update refreshes device state and pumps any live capture. Call once
// per frame, before sampling.
func (b *Backend) Update() {
	b.mu.Lock()
	b.gamepadIDs = ebiten.AppendGamepadIDs(b.gamepadIDs[:0])
	gamepads := b.gamepadIDs
	live := b.capture
	b.mu.Unlock()

	if live != nil {
		live.update(gamepads)
	}
}

// FindControl implements backend.Backend. Controls are created on first
// lookup; a name that resolves to no known key, mouse button or gamepad
// button is a configuration error.
func (b *Backend) FindControl(mapID, name string) (backend.Control, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.controls[mapID+"/"+name]; ok {
		return c, nil
	}
	path, ok := pathForName(name)
	if !ok {
		return nil, fmt.Errorf("ebiten backend: unknown control name %q", name)
	}
	c := &control{backend: b, mapID: mapID, name: name, path: path, enabled: true}
	b.controls[mapID+"/"+name] = c
	return c, nil
}

// SetMapEnabled implements backend.Backend.
func (b *Backend) SetMapEnabled(mapID string, enabled bool) {
	b.mu.Lock()
	b.disabledMaps[mapID] = !enabled
	b.mu.Unlock()
}

func (b *Backend) mapEnabled(mapID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.disabledMaps[mapID]
}

// DisplayName implements backend.Backend.
func (b *Backend) DisplayName(path string) string {
	return displayName(path)
}

// Listen implements backend.Backend. Ebiten needs no subscription to
// poll, so this only tracks the refcount continuous samplers hold.
func (b *Backend) Listen(mapID string) (func(), error) {
	b.mu.Lock()
	b.listeners[mapID]++
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.listeners[mapID]--
			b.mu.Unlock()
		})
	}, nil
}

// BeginCapture implements backend.Backend. The capture is driven by
// Update: each frame, just-pressed controls are filtered and applied,
// and the capture settles once SettleDelay passes with no new
// candidate.
func (b *Backend) BeginCapture(target backend.Control, opts backend.CaptureOptions, cb backend.CaptureCallbacks) (backend.Capture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.capture != nil {
		return nil, fmt.Errorf("ebiten backend: capture already in progress")
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = backend.DefaultSettleDelay
	}
	c := &capture{backend: b, opts: opts, cb: cb, started: time.Now()}
	b.capture = c
	return c, nil
}

// poll reads the actuation of one control path against current device
// state.
func (b *Backend) poll(path string) float64 {
	device, name := splitPath(path)
	switch device {
	case deviceKeyboard:
		if k, ok := keyByName[name]; ok && ebiten.IsKeyPressed(k) {
			return 1
		}
	case deviceMouse:
		if btn, ok := mouseByName[name]; ok && ebiten.IsMouseButtonPressed(btn) {
			return 1
		}
	case deviceGamepad:
		btn, ok := gamepadByName[name]
		if !ok {
			return 0
		}
		b.mu.Lock()
		gamepads := b.gamepadIDs
		b.mu.Unlock()
		for _, gp := range gamepads {
			if !ebiten.IsStandardGamepadLayoutAvailable(gp) {
				continue
			}
			if ebiten.IsStandardGamepadButtonPressed(gp, btn) {
				return 1
			}
		}
	}
	return 0
}

// control is one resolved ebiten control.
type control struct {
	backend *Backend
	mapID   string
	name    string
	path    string

	mu       sync.Mutex
	override string
	enabled  bool
}

func (c *control) Name() string { return c.name }
func (c *control) Path() string { return c.path }

func (c *control) EffectivePath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override != "" {
		return c.override
	}
	return c.path
}

func (c *control) Actuation() float64 {
	if !c.backend.mapEnabled(c.mapID) {
		return 0
	}
	c.mu.Lock()
	enabled := c.enabled
	c.mu.Unlock()
	if !enabled {
		return 0
	}
	return c.backend.poll(c.EffectivePath())
}

func (c *control) ApplyOverride(path string) {
	c.mu.Lock()
	c.override = path
	c.mu.Unlock()
}

func (c *control) ClearOverride() {
	c.mu.Lock()
	c.override = ""
	c.mu.Unlock()
}

func (c *control) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// capture is one interactive capture, pumped once per frame.
type capture struct {
	backend *Backend
	opts    backend.CaptureOptions
	cb      backend.CaptureCallbacks

	mu          sync.Mutex
	started     time.Time
	applied     bool
	lastApplied time.Time
	done        bool
}

func (c *capture) update(gamepads []ebiten.GamepadID) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	opts := c.opts
	c.mu.Unlock()

	now := time.Now()
	for _, path := range c.justPressedPaths(gamepads) {
		if opts.CancelPath != "" && equalPath(path, opts.CancelPath) {
			c.Cancel()
			return
		}
		if excluded(path, opts.ExcludePaths) {
			continue
		}
		if opts.ExpectedDevice != "" {
			device, _ := splitPath(path)
			if device != opts.ExpectedDevice {
				continue
			}
		}
		c.mu.Lock()
		c.applied = true
		c.lastApplied = now
		c.mu.Unlock()
		if c.cb.OnApply != nil {
			c.cb.OnApply(path)
		}
	}

	// Settle once the debounce window passes with no new candidate.
	c.mu.Lock()
	settle := c.applied && !c.done && now.Sub(c.lastApplied) >= opts.SettleDelay
	if settle {
		c.done = true
	}
	c.mu.Unlock()
	if settle && c.cb.OnComplete != nil {
		c.cb.OnComplete()
	}
}

// justPressedPaths collects the control paths actuated this frame.
func (c *capture) justPressedPaths(gamepads []ebiten.GamepadID) []string {
	var paths []string

	c.backend.mu.Lock()
	c.backend.pressedKeys = inpututil.AppendJustPressedKeys(c.backend.pressedKeys[:0])
	keys := c.backend.pressedKeys
	c.backend.mu.Unlock()
	for _, k := range keys {
		paths = append(paths, deviceKeyboard+"/"+lowerFirst(k.String()))
	}

	for btn, name := range mouseName {
		if inpututil.IsMouseButtonJustPressed(btn) {
			paths = append(paths, deviceMouse+"/"+name)
		}
	}

	for name, btn := range gamepadByName {
		for _, gp := range gamepads {
			if !ebiten.IsStandardGamepadLayoutAvailable(gp) {
				continue
			}
			if inpututil.IsStandardGamepadButtonJustPressed(gp, btn) {
				paths = append(paths, deviceGamepad+"/"+name)
				break
			}
		}
	}
	return paths
}

// Cancel implements backend.Capture.
func (c *capture) Cancel() {
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

// Dispose implements backend.Capture.
func (c *capture) Dispose() {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()

	c.backend.mu.Lock()
	if c.backend.capture == c {
		c.backend.capture = nil
	}
	c.backend.mu.Unlock()
}
