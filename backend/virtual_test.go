package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualFindControl(t *testing.T) {
	v := NewVirtual()
	v.AddControl("gameplay", "jump", "<Keyboard>/space")

	ctl, err := v.FindControl("gameplay", "jump")
	require.NoError(t, err)
	assert.Equal(t, "jump", ctl.Name())
	assert.Equal(t, "<Keyboard>/space", ctl.Path())
	assert.Equal(t, "<Keyboard>/space", ctl.EffectivePath())

	_, err = v.FindControl("gameplay", "missing")
	require.Error(t, err)
}

func TestVirtualOverrides(t *testing.T) {
	v := NewVirtual()
	c := v.AddControl("g", "jump", "<Keyboard>/space")

	c.ApplyOverride("<Keyboard>/q")
	assert.Equal(t, "<Keyboard>/q", c.EffectivePath())
	assert.Equal(t, "<Keyboard>/space", c.Path(), "nominal path is untouched")

	c.ClearOverride()
	assert.Equal(t, "<Keyboard>/space", c.EffectivePath())
}

func TestVirtualActuationHonorsEnableState(t *testing.T) {
	v := NewVirtual()
	c := v.AddControl("g", "jump", "<Keyboard>/space")
	c.Press()
	assert.Equal(t, 1.0, c.Actuation())

	c.SetEnabled(false)
	assert.Zero(t, c.Actuation())
	c.SetEnabled(true)

	v.SetMapEnabled("g", false)
	assert.Zero(t, c.Actuation(), "disabled map silences its controls")
	v.SetMapEnabled("g", true)
	assert.Equal(t, 1.0, c.Actuation())
}

func TestVirtualDisplayName(t *testing.T) {
	v := NewVirtual()
	assert.Equal(t, "Space", v.DisplayName("<Keyboard>/space"))
	assert.Equal(t, "Space", v.DisplayName("space"))
	assert.Equal(t, "", v.DisplayName(""))
}

func TestVirtualListenRefcount(t *testing.T) {
	v := NewVirtual()
	stop1, err := v.Listen("g")
	require.NoError(t, err)
	stop2, err := v.Listen("g")
	require.NoError(t, err)
	assert.Equal(t, 2, v.ListenerCount("g"))

	stop1()
	stop1() // stop is idempotent
	assert.Equal(t, 1, v.ListenerCount("g"))
	stop2()
	assert.Zero(t, v.ListenerCount("g"))
}

func TestVirtualCaptureSingleton(t *testing.T) {
	v := NewVirtual()
	c := v.AddControl("g", "jump", "space")

	cap1, err := v.BeginCapture(c, CaptureOptions{}, CaptureCallbacks{})
	require.NoError(t, err)
	_, err = v.BeginCapture(c, CaptureOptions{}, CaptureCallbacks{})
	require.Error(t, err)

	// disposing frees the slot
	cap1.Dispose()
	_, err = v.BeginCapture(c, CaptureOptions{}, CaptureCallbacks{})
	require.NoError(t, err)
}

func TestVirtualCaptureCallbacksAfterDone(t *testing.T) {
	v := NewVirtual()
	c := v.AddControl("g", "jump", "space")

	var applies, cancels int
	capt, err := v.BeginCapture(c, CaptureOptions{}, CaptureCallbacks{
		OnApply:  func(string) { applies++ },
		OnCancel: func() { cancels++ },
	})
	require.NoError(t, err)

	assert.True(t, v.SimulateCandidate("q"))
	capt.Cancel()
	capt.Cancel()
	assert.Equal(t, 1, cancels, "cancel fires once")

	assert.False(t, v.SimulateCandidate("w"), "finished captures ignore candidates")
	assert.Equal(t, 1, applies)
}
