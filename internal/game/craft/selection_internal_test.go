package craft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

func TestSelection_Insert_EvictsEveryConflictingMember(t *testing.T) {
	el := func(id string, e gem.Element) *gem.Component {
		return &gem.Component{ID: id, Subtype: gem.Subtype(e.String()), Tier: gem.TierCommon, Payload: gem.ElementPayload{Element: e}}
	}
	buff := &gem.Component{ID: "haste", Subtype: "haste", Tier: gem.TierCommon, Payload: gem.BuffPayload{Duration: 60}}
	// Two elements coexisting is unreachable through Insert; build it directly.
	sel := &Selection{items: []*gem.Component{el("fire", gem.ElementFire), buff, el("ice", gem.ElementIce)}}

	evicted := sel.Insert(el("dark", gem.ElementDark))
	require.Len(t, evicted, 2)
	assert.Equal(t, "ice", evicted[0].ID)
	assert.Equal(t, "fire", evicted[1].ID)
	assert.Equal(t, []string{"haste", "dark"}, sel.IDs())
}
