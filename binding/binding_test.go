package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroupValid(t *testing.T) {
	g, err := NewGroup("gameplay", "builtin", "gameplay", true, []Binding{
		{Action: "jump", Control: "space"},
		{Action: "fire", Control: "mouse0"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Action{"jump", "fire"}, g.Actions())

	b, ok := g.Find("fire")
	require.True(t, ok)
	assert.Equal(t, "mouse0", b.Control)

	_, ok = g.Find("missing")
	assert.False(t, ok)
}

func TestNewGroupRejectsDuplicateActions(t *testing.T) {
	_, err := NewGroup("g", "", "g", true, []Binding{
		{Action: "jump", Control: "space"},
		{Action: "jump", Control: "w"},
	})
	require.Error(t, err)
}

func TestNewGroupAllowsDuplicateControls(t *testing.T) {
	// control collisions are legal at rest; the rebind-time duplicate
	// check is what polices them
	_, err := NewGroup("g", "", "g", true, []Binding{
		{Action: "jump", Control: "space"},
		{Action: "confirm", Control: "space"},
	})
	require.NoError(t, err)
}

func TestNewGroupRejectsEmptyFields(t *testing.T) {
	_, err := NewGroup("g", "", "g", true, []Binding{{Action: "", Control: "space"}})
	require.Error(t, err)

	_, err = NewGroup("g", "", "g", true, []Binding{{Action: "jump", Control: ""}})
	require.Error(t, err)
}
