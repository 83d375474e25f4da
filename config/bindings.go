// Package config holds binding-group definitions: the in-code defaults
// applications start from and a TOML loader for shipping them as data.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/automoto/inputkit/binding"
)

// Logical actions the default groups use. Applications define their
// own; these exist for the demo and for tests.
const (
	ActionJump   binding.Action = "jump"
	ActionFire   binding.Action = "fire"
	ActionDash   binding.Action = "dash"
	ActionRebind binding.Action = "rebind"

	ActionMenuUp     binding.Action = "menuUp"
	ActionMenuDown   binding.Action = "menuDown"
	ActionMenuSelect binding.Action = "menuSelect"
	ActionMenuBack   binding.Action = "menuBack"
)

// DefaultGroups returns the built-in gameplay and menu groups. Gameplay
// is user-rebindable; menu navigation is locked.
func DefaultGroups() []*binding.Group {
	return []*binding.Group{
		{
			Name:       "gameplay",
			Asset:      "builtin",
			MapID:      "gameplay",
			Rebindable: true,
			Bindings: []binding.Binding{
				{Action: ActionJump, Control: "space"},
				{Action: ActionFire, Control: "mouse0"},
				{Action: ActionDash, Control: "shiftLeft"},
				{Action: ActionRebind, Control: "r"},
			},
		},
		{
			Name:       "menu",
			Asset:      "builtin",
			MapID:      "menu",
			Rebindable: false,
			Bindings: []binding.Binding{
				{Action: ActionMenuUp, Control: "arrowUp"},
				{Action: ActionMenuDown, Control: "arrowDown"},
				{Action: ActionMenuSelect, Control: "enter"},
				{Action: ActionMenuBack, Control: "escape"},
			},
		},
	}
}

type bindingsFile struct {
	Groups []groupSection `toml:"group"`
}

type groupSection struct {
	Name       string           `toml:"name"`
	Asset      string           `toml:"asset"`
	Map        string           `toml:"map"`
	Rebindable bool             `toml:"rebindable"`
	Bindings   []bindingSection `toml:"binding"`
}

type bindingSection struct {
	Action  string `toml:"action"`
	Control string `toml:"control"`
}

// LoadGroups reads binding groups from a TOML file:
//
//	[[group]]
//	name = "gameplay"
//	map = "gameplay"
//	rebindable = true
//
//	[[group.binding]]
//	action = "jump"
//	control = "space"
func LoadGroups(path string) ([]*binding.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	groups, err := ParseGroups(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// ParseGroups decodes binding groups from TOML source.
func ParseGroups(data string) ([]*binding.Group, error) {
	var f bindingsFile
	if err := toml.Unmarshal([]byte(data), &f); err != nil {
		return nil, err
	}
	groups := make([]*binding.Group, 0, len(f.Groups))
	for _, gs := range f.Groups {
		bindings := make([]binding.Binding, 0, len(gs.Bindings))
		for _, bs := range gs.Bindings {
			bindings = append(bindings, binding.Binding{
				Action:  binding.Action(bs.Action),
				Control: bs.Control,
			})
		}
		g, err := binding.NewGroup(gs.Name, gs.Asset, gs.Map, gs.Rebindable, bindings)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
