package binding

import "fmt"

// Action identifies a logical game action ("jump", "fire", "menuBack").
// The application defines the set; values are opaque to the tracker.
type Action string

// Binding pairs a logical action with the name of a backend control.
type Binding struct {
	Action  Action
	Control string
}

// Group is a named set of bindings sharing one control map and one
// rebind policy. Groups are built once, before a tracker exists, and
// are read-only afterwards; runtime changes go through overrides.
type Group struct {
	// Name identifies the group ("gameplay", "menu").
	Name string

	// Asset is the identifier of the source asset the group came from.
	Asset string

	// MapID is the backend control-map the group's controls live in.
	MapID string

	// Rebindable reports whether the user may rebind this group.
	// Overrides are ignored for locked groups.
	Rebindable bool

	// Bindings in declaration order. Order matters: duplicate scans
	// during a rebind walk this list front to back.
	Bindings []Binding
}

// NewGroup builds a validated group. Actions must be unique within a
// group; control names may repeat (the rebind-time duplicate check is
// what polices those).
func NewGroup(name, asset, mapID string, rebindable bool, bindings []Binding) (*Group, error) {
	g := &Group{
		Name:       name,
		Asset:      asset,
		MapID:      mapID,
		Rebindable: rebindable,
		Bindings:   bindings,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the group invariants.
func (g *Group) Validate() error {
	seen := make(map[Action]struct{}, len(g.Bindings))
	for _, b := range g.Bindings {
		if b.Action == "" {
			return fmt.Errorf("binding group %q: empty action", g.Name)
		}
		if b.Control == "" {
			return fmt.Errorf("binding group %q: action %q has no control", g.Name, b.Action)
		}
		if _, dup := seen[b.Action]; dup {
			return fmt.Errorf("binding group %q: duplicate action %q", g.Name, b.Action)
		}
		seen[b.Action] = struct{}{}
	}
	return nil
}

// Find returns the binding for an action.
func (g *Group) Find(a Action) (Binding, bool) {
	for _, b := range g.Bindings {
		if b.Action == a {
			return b, true
		}
	}
	return Binding{}, false
}

// Actions returns the group's actions in declaration order.
func (g *Group) Actions() []Action {
	out := make([]Action, 0, len(g.Bindings))
	for _, b := range g.Bindings {
		out = append(out, b.Action)
	}
	return out
}
