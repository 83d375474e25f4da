// Package tracker turns raw backend actuation into logical action
// state. A Binder resolves a binding group against a backend and owns
// the observer lists and the rebind coordinator; the per-frame Tracker
// and the background Sampler both hold one by composition and layer
// their own timing model on top.
package tracker

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/inputkit/backend"
	"github.com/automoto/inputkit/binding"
)

var (
	// ErrNotBound means an action has no binding in the group. Seen
	// from ApplyOverrides it signals corrupt configuration data.
	ErrNotBound = errors.New("action not bound in group")

	// ErrNotRebindable means the group's rebind policy forbids the
	// requested rebind.
	ErrNotRebindable = errors.New("binding group is not rebindable")

	// ErrRebindInProgress means a rebind was requested while another
	// one is capturing. A usage error; the request is not queued.
	ErrRebindInProgress = errors.New("rebind already in progress")
)

// Binder is the shared core of both tracker variants: the binding
// group, the resolved backend controls and the observer lists.
type Binder struct {
	backend   backend.Backend
	group     *binding.Group
	controls  map[binding.Action]backend.Control
	order     []binding.Action
	observers Observers

	// rebind session state; at most one live session per binder.
	rebindMu sync.Mutex
	session  *rebindSession
}

// NewBinder resolves every binding in the group through the backend.
// An unresolvable control is fatal. A nil or empty group is not: the
// binder constructs with an empty action set so callers degrade rather
// than crash.
func NewBinder(b backend.Backend, g *binding.Group) (*Binder, error) {
	if g == nil {
		log.Printf("Warning: binder created with no binding group")
		g = &binding.Group{}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(g.Bindings) == 0 {
		log.Printf("Warning: binding group %q has no bindings", g.Name)
	}

	bd := &Binder{
		backend:  b,
		group:    g,
		controls: make(map[binding.Action]backend.Control, len(g.Bindings)),
		order:    make([]binding.Action, 0, len(g.Bindings)),
	}
	for _, bind := range g.Bindings {
		ctl, err := b.FindControl(g.MapID, bind.Control)
		if err != nil {
			return nil, fmt.Errorf("resolve control %q for action %q: %w", bind.Control, bind.Action, err)
		}
		bd.controls[bind.Action] = ctl
		bd.order = append(bd.order, bind.Action)
	}
	return bd, nil
}

// Group returns the binding group.
func (bd *Binder) Group() *binding.Group { return bd.group }

// Backend returns the raw input collaborator.
func (bd *Binder) Backend() backend.Backend { return bd.backend }

// Observers returns the shared observer lists.
func (bd *Binder) Observers() *Observers { return &bd.observers }

// Control returns the resolved control for an action.
func (bd *Binder) Control(a binding.Action) (backend.Control, bool) {
	ctl, ok := bd.controls[a]
	return ctl, ok
}

// CurrentBindings maps every action in the group to the human-readable
// form of its current effective control path. Pure read.
func (bd *Binder) CurrentBindings() map[binding.Action]string {
	out := make(map[binding.Action]string, len(bd.order))
	for _, a := range bd.order {
		out[a] = bd.backend.DisplayName(bd.controls[a].EffectivePath())
	}
	return out
}

// ApplyOverrides applies a batch of action-to-path overrides, e.g. to
// restore a saved configuration. A nil or empty mapping and a locked
// group are both silent no-ops. An action with no binding in the group
// is a configuration-data mismatch and fails loudly, with no override
// applied: the whole batch is validated before anything mutates.
func (bd *Binder) ApplyOverrides(m map[binding.Action]string) error {
	if len(m) == 0 {
		return nil
	}
	if !bd.group.Rebindable {
		return nil
	}
	for a := range m {
		if _, ok := bd.controls[a]; !ok {
			return fmt.Errorf("apply override for %q in group %q: %w", a, bd.group.Name, ErrNotBound)
		}
	}
	for a, path := range m {
		bd.controls[a].ApplyOverride(path)
	}
	return nil
}

// ResetOverrides clears every active override in the group, restoring
// the nominal bindings. Like ApplyOverrides, a locked group is a silent
// no-op.
func (bd *Binder) ResetOverrides() {
	if !bd.group.Rebindable {
		return
	}
	for _, a := range bd.order {
		bd.controls[a].ClearOverride()
	}
}
