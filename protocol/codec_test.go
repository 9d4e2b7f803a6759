package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellarena/sim"
)

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())

	c, err = CodecByName("msgpack")
	require.NoError(t, err)
	assert.True(t, c.Binary())

	_, err = CodecByName("xml")
	assert.Error(t, err)
}

func TestInputThroughBothCodecs(t *testing.T) {
	msg := Input{
		Input:     sim.InputSnapshot{Forward: true, Sprint: true, Sequence: 17},
		Position:  Vector{X: 9, Y: 9, Z: 9},
		Rotation:  Vector{Y: 1.25},
		Animation: "run-forward",
	}
	for _, c := range []Codec{JSON, Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Encode(MsgInput, msg)
			require.NoError(t, err)

			env, err := c.DecodeEnvelope(b)
			require.NoError(t, err)
			assert.Equal(t, MsgInput, env.T)

			got, err := DecodePayload[Input](env)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestEncodeRejectsBadEnvelopes(t *testing.T) {
	for _, c := range []Codec{JSON, Msgpack} {
		_, err := c.Encode("", Register{})
		assert.Error(t, err)
		_, err = c.Encode(MsgRegister, nil)
		assert.Error(t, err)
		_, err = c.DecodeEnvelope(nil)
		assert.Error(t, err)
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	env, err := JSON.DecodeEnvelope([]byte(`{"t":"cast_spell"}`))
	require.NoError(t, err)
	_, err = DecodePayload[CastSpell](env)
	assert.Error(t, err)
}

func TestClientMessageShape(t *testing.T) {
	raw := []byte(`{"t":"input","p":{"input":{"forward":true,"castSpell":true,"sequence":3},"rotation":{"x":0,"y":0.5,"z":0},"animation":"walk-forward"}}`)
	env, err := JSON.DecodeEnvelope(raw)
	require.NoError(t, err)
	in, err := DecodePayload[Input](env)
	require.NoError(t, err)
	assert.True(t, in.Input.Forward)
	assert.True(t, in.Input.CastSpell)
	assert.Equal(t, uint32(3), in.Input.Sequence)
	assert.Equal(t, sim.V(0, 0.5, 0), in.Rotation.Vec())
}

func TestNewState(t *testing.T) {
	expires := time.UnixMilli(1_700_000_060_000)
	st := NewState(sim.Snapshot{
		Players: []sim.ActivePlayer{{
			Identity: "a", Username: "Alice", Position: sim.V(1, 2, 3), Health: 90, MaxHealth: 100, Color: "cyan",
		}},
		Projectiles: []sim.Projectile{{
			ID: 7, Caster: "a", Target: "a", Position: sim.V(4, 5, 6), Kind: sim.KindHomingSphere, ExpiresAt: expires,
		}},
	})
	require.Len(t, st.Players, 1)
	require.Len(t, st.Projectiles, 1)
	assert.Equal(t, Vector{X: 1, Y: 2, Z: 3}, st.Players[0].Position)
	assert.Equal(t, 90, st.Players[0].Health)
	assert.Equal(t, uint64(7), st.Projectiles[0].ID)
	assert.Equal(t, int64(1_700_000_060_000), st.Projectiles[0].ExpiresAt)
}

func TestMessageConstants(t *testing.T) {
	assert.Equal(t, "register", MsgRegister)
	assert.Equal(t, "input", MsgInput)
	assert.Equal(t, "cast_spell", MsgCastSpell)
	assert.Equal(t, "welcome", MsgWelcome)
	assert.Equal(t, "state", MsgState)
}
