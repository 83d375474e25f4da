package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/binding"
)

const (
	actJump   binding.Action = "jump"
	actFire   binding.Action = "fire"
	actRebind binding.Action = "rebind"
)

const tick60 = time.Second / 60

// fakeClock drives the tracker's notion of wall time.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recorder collects fired notifications in order.
type recorder struct {
	downs []binding.Action
	ups   []binding.Action
	holds [][3]interface{} // action, frame, prevFrame
	raws  [][2]interface{} // action, frames
}

func (r *recorder) attach(obs *Observers) {
	obs.AddKeyDown(func(a binding.Action) { r.downs = append(r.downs, a) })
	obs.AddKeyUp(func(a binding.Action) { r.ups = append(r.ups, a) })
	obs.AddHold(func(a binding.Action, frame, prev int) {
		r.holds = append(r.holds, [3]interface{}{a, frame, prev})
	})
	obs.AddRawHold(func(a binding.Action, frames int) {
		r.raws = append(r.raws, [2]interface{}{a, frames})
	})
}

// rig is a virtual backend with the three-action gameplay group.
type rig struct {
	backend *backend.Virtual
	binder  *Binder
	tracker *Tracker
	clock   *fakeClock
	rec     *recorder

	jump, fire, reb *backend.VirtualControl
}

func newRig(t *testing.T) *rig {
	t.Helper()
	vb := backend.NewVirtual()
	r := &rig{
		backend: vb,
		clock:   newFakeClock(),
		rec:     &recorder{},
		jump:    vb.AddControl("gameplay", "space", "space"),
		fire:    vb.AddControl("gameplay", "mouse0", "mouse0"),
		reb:     vb.AddControl("gameplay", "r", "r"),
	}
	g, err := binding.NewGroup("gameplay", "builtin", "gameplay", true, []binding.Binding{
		{Action: actJump, Control: "space"},
		{Action: actFire, Control: "mouse0"},
		{Action: actRebind, Control: "r"},
	})
	require.NoError(t, err)
	r.binder, err = NewBinder(vb, g)
	require.NoError(t, err)
	r.tracker = NewTracker(r.binder, 60)
	r.tracker.now = r.clock.Now
	r.tracker.lastSample = r.clock.Now()
	r.rec.attach(r.binder.Observers())
	return r
}

// sample advances the clock and runs one pass, like a real loop tick.
func (r *rig) sample(dt time.Duration) {
	r.clock.Advance(dt)
	r.tracker.Sample()
}

func TestEdgeDetection(t *testing.T) {
	r := newRig(t)

	// below threshold is not a press
	r.jump.SetActuation(0.15)
	r.sample(tick60)
	assert.Empty(t, r.rec.downs)

	r.jump.SetActuation(0.25)
	r.sample(tick60)
	require.Equal(t, []binding.Action{actJump}, r.rec.downs)

	// holding does not re-fire key-down
	r.sample(tick60)
	r.sample(tick60)
	assert.Equal(t, []binding.Action{actJump}, r.rec.downs)
	assert.Empty(t, r.rec.ups)

	r.jump.Release()
	r.sample(tick60)
	require.Equal(t, []binding.Action{actJump}, r.rec.ups)

	// staying released does not re-fire key-up
	r.sample(tick60)
	assert.Equal(t, []binding.Action{actJump}, r.rec.ups)
}

func TestHoldScenarioAtMatchingRate(t *testing.T) {
	r := newRig(t)

	r.jump.Press()
	for i := 0; i < 5; i++ {
		r.sample(tick60)
	}

	require.Len(t, r.rec.holds, 5)
	for i, h := range r.rec.holds {
		assert.Equal(t, actJump, h[0])
		assert.Equal(t, i+1, h[1], "adjusted frame at tick %d", i+1)
		assert.Equal(t, i, h[2], "previous adjusted frame at tick %d", i+1)
	}
	require.Len(t, r.rec.raws, 5)
	for i, h := range r.rec.raws {
		assert.Equal(t, i+1, h[1], "raw frame at tick %d", i+1)
	}

	r.jump.Release()
	r.sample(tick60)
	held, raw := r.tracker.Hold(actJump)
	assert.Zero(t, held)
	assert.Zero(t, raw)
}

func TestHoldResetAfterRelease(t *testing.T) {
	r := newRig(t)

	r.fire.Press()
	r.sample(tick60)
	r.sample(tick60)
	r.fire.Release()
	r.sample(tick60)

	held, raw := r.tracker.Hold(actFire)
	assert.Zero(t, held)
	assert.Zero(t, raw)
	assert.False(t, r.tracker.Pressed(actFire))

	// a fresh press starts counting from one again
	r.fire.Press()
	r.sample(tick60)
	held, raw = r.tracker.Hold(actFire)
	assert.Equal(t, tick60, held)
	assert.Equal(t, 1, raw)
}

func TestAdjustedCountsAtFastRate(t *testing.T) {
	r := newRig(t)

	// real loop at 120Hz against a 60Hz target: adjusted counts repeat,
	// raw counts keep stepping by one.
	r.jump.Press()
	last := 0
	for i := 0; i < 8; i++ {
		r.sample(time.Second / 120)
	}
	require.Len(t, r.rec.holds, 8)
	for i, h := range r.rec.holds {
		frame := h[1].(int)
		prev := h[2].(int)
		assert.GreaterOrEqual(t, frame, last, "adjusted counts must not decrease")
		assert.LessOrEqual(t, frame-prev, 1)
		last = frame
		assert.Equal(t, i+1, r.rec.raws[i][1], "raw count steps by one")
	}
	assert.Equal(t, 4, last, "8 ticks at 120Hz is 4 target frames")
}

func TestAdjustedCountsAtSlowRate(t *testing.T) {
	r := newRig(t)

	// real loop at 20Hz against a 60Hz target: counts jump by three,
	// the tracker reports only the endpoints.
	r.jump.Press()
	for i := 0; i < 3; i++ {
		r.sample(time.Second / 20)
	}
	require.Len(t, r.rec.holds, 3)
	for i, h := range r.rec.holds {
		assert.Equal(t, (i+1)*3, h[1])
		assert.Equal(t, i*3, h[2])
	}
}

func TestRawHoldSkippedWithoutObserver(t *testing.T) {
	vb := backend.NewVirtual()
	space := vb.AddControl("g", "space", "space")
	g, err := binding.NewGroup("g", "", "g", true, []binding.Binding{{Action: actJump, Control: "space"}})
	require.NoError(t, err)
	bd, err := NewBinder(vb, g)
	require.NoError(t, err)
	clock := newFakeClock()
	tr := NewTracker(bd, 60)
	tr.now = clock.Now
	tr.lastSample = clock.Now()

	var holds int
	bd.Observers().AddHold(func(binding.Action, int, int) { holds++ })

	space.Press()
	clock.Advance(tick60)
	tr.Sample()
	assert.Equal(t, 1, holds)
}

func TestDisabledSampleIsNoop(t *testing.T) {
	r := newRig(t)

	r.tracker.Disable()
	r.jump.Press()
	r.sample(tick60)
	r.sample(tick60)

	assert.Empty(t, r.rec.downs)
	assert.Empty(t, r.rec.holds)
	assert.False(t, r.tracker.Pressed(actJump))
}

func TestDisableResetsHoldCounters(t *testing.T) {
	r := newRig(t)

	r.jump.Press()
	for i := 0; i < 10; i++ {
		r.sample(tick60)
	}
	held, raw := r.tracker.Hold(actJump)
	require.Equal(t, 10, raw)
	require.Equal(t, 10*tick60, held)

	// disable is a hard reset, not a pause
	r.tracker.Disable()
	held, raw = r.tracker.Hold(actJump)
	assert.Zero(t, held)
	assert.Zero(t, raw)
	assert.False(t, r.tracker.Pressed(actJump))

	// re-enabling with the key still physically down restarts the
	// count from a fresh press
	r.tracker.Enable()
	r.rec.holds = nil
	r.sample(tick60)
	require.Len(t, r.rec.holds, 1)
	assert.Equal(t, 1, r.rec.holds[0][1])
	assert.Equal(t, 0, r.rec.holds[0][2])
	_, raw = r.tracker.Hold(actJump)
	assert.Equal(t, 1, raw)

	// and the re-press fired a fresh key-down
	assert.Equal(t, []binding.Action{actJump, actJump}, r.rec.downs)
}

func TestEnableRebasesSampleClock(t *testing.T) {
	r := newRig(t)

	r.jump.Press()
	r.sample(tick60)
	r.tracker.Disable()

	// a long disabled gap must not count as hold time
	r.clock.Advance(5 * time.Second)
	r.tracker.Enable()
	r.sample(tick60)

	held, _ := r.tracker.Hold(actJump)
	assert.Equal(t, tick60, held)
}

func TestObserversFireInRegistrationOrder(t *testing.T) {
	r := newRig(t)

	var order []string
	r.binder.Observers().AddKeyDown(func(binding.Action) { order = append(order, "first") })
	r.binder.Observers().AddKeyDown(func(binding.Action) { order = append(order, "second") })

	r.jump.Press()
	r.sample(tick60)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestObserversClear(t *testing.T) {
	r := newRig(t)

	r.binder.Observers().Clear()
	r.jump.Press()
	r.sample(tick60)
	assert.Empty(t, r.rec.downs)
}

func TestIndependentActions(t *testing.T) {
	r := newRig(t)

	r.jump.Press()
	r.fire.Press()
	r.sample(tick60)
	assert.ElementsMatch(t, []binding.Action{actJump, actFire}, r.rec.downs)

	r.fire.Release()
	r.sample(tick60)
	assert.Equal(t, []binding.Action{actFire}, r.rec.ups)
	assert.True(t, r.tracker.Pressed(actJump))
	assert.False(t, r.tracker.Pressed(actFire))
}

func TestHandlersMayReadTrackerState(t *testing.T) {
	r := newRig(t)

	var pressedInDown bool
	var heldInHold time.Duration
	var rawInHold int
	var releasedInUp bool
	r.binder.Observers().AddKeyDown(func(a binding.Action) {
		pressedInDown = r.tracker.Pressed(a)
	})
	r.binder.Observers().AddHold(func(a binding.Action, frame, prev int) {
		heldInHold, rawInHold = r.tracker.Hold(a)
	})
	r.binder.Observers().AddKeyUp(func(a binding.Action) {
		releasedInUp = !r.tracker.Pressed(a)
	})

	r.jump.Press()
	done := make(chan struct{})
	go func() {
		r.sample(tick60)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Sample did not return with a state-reading handler registered")
	}
	assert.True(t, pressedInDown, "key-down handler sees the action pressed")
	assert.Equal(t, tick60, heldInHold, "hold handler sees the updated hold time")
	assert.Equal(t, 1, rawInHold)

	r.jump.Release()
	r.sample(tick60)
	assert.True(t, releasedInUp, "key-up handler sees the action released")
}

func TestHandlerMayDisableTracker(t *testing.T) {
	r := newRig(t)

	r.binder.Observers().AddKeyDown(func(binding.Action) { r.tracker.Disable() })
	r.jump.Press()
	r.sample(tick60)
	assert.False(t, r.tracker.Enabled())
	assert.False(t, r.tracker.Pressed(actJump), "disable from a handler hard-resets state")
}

func TestControlDisableReadsAsReleased(t *testing.T) {
	r := newRig(t)

	r.jump.Press()
	r.sample(tick60)
	require.True(t, r.tracker.Pressed(actJump))

	// disabling one control releases only its action
	r.jump.SetEnabled(false)
	r.fire.Press()
	r.sample(tick60)
	assert.Equal(t, []binding.Action{actJump}, r.rec.ups)
	assert.True(t, r.tracker.Pressed(actFire))

	r.jump.SetEnabled(true)
	r.sample(tick60)
	assert.Equal(t, []binding.Action{actJump, actFire, actJump}, r.rec.downs)
}
