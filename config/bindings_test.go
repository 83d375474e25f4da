package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/inputkit/binding"
)

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups(`
[[group]]
name = "gameplay"
asset = "player.bindings"
map = "gameplay"
rebindable = true

[[group.binding]]
action = "jump"
control = "space"

[[group.binding]]
action = "fire"
control = "mouse0"

[[group]]
name = "menu"
map = "menu"

[[group.binding]]
action = "menuBack"
control = "escape"
`)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	g := groups[0]
	assert.Equal(t, "gameplay", g.Name)
	assert.Equal(t, "player.bindings", g.Asset)
	assert.Equal(t, "gameplay", g.MapID)
	assert.True(t, g.Rebindable)
	assert.Equal(t, []binding.Binding{
		{Action: "jump", Control: "space"},
		{Action: "fire", Control: "mouse0"},
	}, g.Bindings)

	assert.False(t, groups[1].Rebindable, "rebindable defaults to locked")
}

func TestParseGroupsEmpty(t *testing.T) {
	groups, err := ParseGroups("")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestParseGroupsRejectsDuplicateActions(t *testing.T) {
	_, err := ParseGroups(`
[[group]]
name = "gameplay"
map = "gameplay"

[[group.binding]]
action = "jump"
control = "space"

[[group.binding]]
action = "jump"
control = "w"
`)
	require.Error(t, err)
}

func TestDefaultGroupsAreValid(t *testing.T) {
	groups := DefaultGroups()
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.NoError(t, g.Validate())
	}

	var gameplay *binding.Group
	for _, g := range groups {
		if g.Name == "gameplay" {
			gameplay = g
		}
	}
	require.NotNil(t, gameplay)
	assert.True(t, gameplay.Rebindable)
	b, ok := gameplay.Find(ActionJump)
	require.True(t, ok)
	assert.Equal(t, "space", b.Control)
}
