package gem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

func TestEncodePayload_Element(t *testing.T) {
	p := gem.ElementPayload{Element: gem.ElementIce, CastEffect: "frost_cast", CastOffset: gem.Vec3{Y: 1.5}}
	cat, data, err := gem.EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, gem.CategoryElement, cat)
	assert.JSONEq(t, `{"element":"ice","cast_effect":"frost_cast","cast_offset":{"x":0,"y":1.5,"z":0}}`, string(data))

	back, err := gem.DecodePayload(cat, data)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestEncodePayload_Nil(t *testing.T) {
	_, _, err := gem.EncodePayload(nil)
	assert.ErrorIs(t, err, gem.ErrUnknownPayload)
}

func TestDecodePayload_Rejects(t *testing.T) {
	_, err := gem.DecodePayload(gem.CategoryUnknown, []byte(`{}`))
	assert.ErrorIs(t, err, gem.ErrUnknownPayload)
	_, err = gem.DecodePayload(gem.CategoryElement, []byte(`{"element":"plasma"}`))
	assert.Error(t, err)
	_, err = gem.DecodePayload(gem.CategoryDamage, []byte(`not json`))
	assert.Error(t, err)
}

func TestProperty_GeneratedPayloadsSurviveCodec(t *testing.T) {
	gen := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		g, err := gen.Generate(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		if err != nil {
			rt.Fatal(err)
		}
		cat, data, err := gem.EncodePayload(g.Payload)
		if err != nil {
			rt.Fatal(err)
		}
		if cat != g.Category() {
			rt.Fatalf("category %s != %s", cat, g.Category())
		}
		back, err := gem.DecodePayload(cat, data)
		if err != nil {
			rt.Fatal(err)
		}
		if back != g.Payload {
			rt.Fatalf("payload changed: %#v -> %#v", g.Payload, back)
		}
	})
}
