// Command inputkit-demo is a small playable exercise of the tracker:
// move a square with Jump/Dash/Fire, press R to rebind Jump live, and
// see overrides survive restarts.
package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/quasilyte/gdata"
	"github.com/yohamta/donburi"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/backend/ebitenbackend"
	"github.com/automoto/inputkit/binding"
	"github.com/automoto/inputkit/config"
	"github.com/automoto/inputkit/fonts"
	"github.com/automoto/inputkit/tracker"
)

const (
	screenWidth  = 640
	screenHeight = 360

	groundY    = 300
	gravity    = 0.5
	jumpSpeed  = -9.0
	walkSpeed  = 2.0
	dashFactor = 0.08
)

// PlayerData is the demo's single moving entity.
type PlayerData struct {
	X, Y   float64
	VX, VY float64
	Flash  int // frames left of fire flash
}

var Player = donburi.NewComponentType[PlayerData]()

// Game owns the backend, the tracker stack and the donburi world.
type Game struct {
	backend *ebitenbackend.Backend
	binder  *tracker.Binder
	track   *tracker.Tracker
	world   donburi.World
	player  *donburi.Entry

	saves   *gdata.Manager
	status  string
	dashing int // adjusted hold frames of the dash action
}

func NewGame() (*Game, error) {
	be := ebitenbackend.New()

	groups := config.DefaultGroups()
	var gameplay *binding.Group
	for _, g := range groups {
		if g.Name == "gameplay" {
			gameplay = g
		}
	}

	binder, err := tracker.NewBinder(be, gameplay)
	if err != nil {
		return nil, err
	}

	world := donburi.NewWorld()
	entry := world.Entry(world.Create(Player))
	Player.SetValue(entry, PlayerData{X: screenWidth / 2, Y: groundY})

	g := &Game{
		backend: be,
		binder:  binder,
		track:   tracker.NewTracker(binder, tracker.DefaultTargetRate),
		world:   world,
		player:  entry,
		status:  "press R to rebind Jump",
	}

	if m, err := gdata.Open(gdata.Config{AppName: "inputkit-demo"}); err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	} else {
		g.saves = m
		g.restoreOverrides()
	}

	obs := binder.Observers()
	obs.AddKeyDown(g.onKeyDown)
	obs.AddHold(g.onHold)
	obs.AddRebind(g.onRebind)
	return g, nil
}

func (g *Game) onKeyDown(a binding.Action) {
	p := Player.Get(g.player)
	switch a {
	case config.ActionJump:
		if p.Y >= groundY {
			p.VY = jumpSpeed
		}
	case config.ActionFire:
		p.Flash = 10
	case config.ActionRebind:
		g.startRebind()
	}
}

func (g *Game) onHold(a binding.Action, frame, prevFrame int) {
	if a != config.ActionDash {
		return
	}
	if frame == prevFrame {
		return // fast frame, nothing new to apply
	}
	g.dashing = frame
}

func (g *Game) onRebind(r tracker.RebindResult) {
	switch {
	case r.Cancelled:
		g.status = "rebind cancelled"
	case r.Duplicate:
		g.status = fmt.Sprintf("Jump is now %s (swapped with %s)", r.ReadableKey, r.Swapped.Action)
	default:
		g.status = "Jump is now " + r.ReadableKey
	}
}

func (g *Game) startRebind() {
	err := g.binder.RequestRebind(config.ActionJump,
		func(opts *backend.CaptureOptions) {
			opts.ExpectedDevice = "<Keyboard>"
			opts.CancelPath = "<Keyboard>/escape"
			opts.ExcludePaths = []string{"<Keyboard>/r"}
		},
		func() { g.saveOverrides() },
		nil,
	)
	if err != nil {
		log.Printf("Warning: rebind request rejected: %v", err)
		return
	}
	g.status = "press a key for Jump (Esc cancels)"
}

// saveOverrides persists every active override path. Serialization is
// the caller's job; the tracker only hands out the mapping.
func (g *Game) saveOverrides() {
	if g.saves == nil {
		return
	}
	overrides := map[binding.Action]string{}
	for _, a := range g.binder.Group().Actions() {
		ctl, _ := g.binder.Control(a)
		if ctl.EffectivePath() != ctl.Path() {
			overrides[a] = ctl.EffectivePath()
		}
	}
	data, err := json.Marshal(overrides)
	if err != nil {
		log.Printf("Warning: Could not serialize bindings: %v", err)
		return
	}
	if err := g.saves.SaveItem("bindings", data); err != nil {
		log.Printf("Warning: Could not save bindings: %v", err)
	}
}

func (g *Game) restoreOverrides() {
	data, err := g.saves.LoadItem("bindings")
	if err != nil || data == nil {
		return
	}
	var overrides map[binding.Action]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		log.Printf("Warning: Could not parse saved bindings: %v", err)
		return
	}
	if err := g.binder.ApplyOverrides(overrides); err != nil {
		log.Printf("Warning: Could not restore bindings: %v", err)
	}
}

func (g *Game) Update() error {
	g.backend.Update()
	g.dashing = 0
	g.track.Sample()
	g.updatePlayer()
	return nil
}

func (g *Game) updatePlayer() {
	p := Player.Get(g.player)

	speed := walkSpeed
	if g.dashing > 0 {
		speed += dashFactor * float64(g.dashing)
	}
	p.X += speed
	if p.X > screenWidth {
		p.X = 0
	}

	p.VY += gravity
	p.Y += p.VY
	if p.Y > groundY {
		p.Y = groundY
		p.VY = 0
	}
	if p.Flash > 0 {
		p.Flash--
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	p := Player.Get(g.player)

	fill := color.RGBA{R: 0x41, G: 0x6c, B: 0xb7, A: 0xff}
	if p.Flash > 0 {
		fill = color.RGBA{R: 0xe8, G: 0x5d, B: 0x3a, A: 0xff}
	}
	vector.DrawFilledRect(screen, float32(p.X)-12, float32(p.Y)-24, 24, 24, fill, false)
	vector.StrokeLine(screen, 0, groundY, screenWidth, groundY, 1, color.White, false)

	face := fonts.Regular.Get()
	y := 24
	bindings := g.binder.CurrentBindings()
	actions := g.binder.Group().Actions()
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	for _, a := range actions {
		text.Draw(screen, fmt.Sprintf("%-8s %s", a, bindings[a]), face, 16, y, color.White)
		y += 18
	}
	text.Draw(screen, g.status, face, 16, screenHeight-16, color.RGBA{R: 0xcf, G: 0xcf, B: 0x6a, A: 0xff})
}

func (g *Game) Layout(w, h int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	fonts.LoadDefaults()

	game, err := NewGame()
	if err != nil {
		log.Fatalf("Failed to set up input: %v", err)
	}

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("inputkit demo")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}
