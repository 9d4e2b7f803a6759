package server

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellarena/protocol"
	"spellarena/sim"
)

type fakeConn struct {
	codec  protocol.Codec
	sendCh chan []byte
	closed atomic.Bool
}

func newFakeConn(codec protocol.Codec, queue int) *fakeConn {
	return &fakeConn{codec: codec, sendCh: make(chan []byte, queue)}
}

func (f *fakeConn) Enqueue(b []byte) bool {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
		return true
	default:
		return false
	}
}

func (f *fakeConn) Codec() protocol.Codec { return f.codec }

func (f *fakeConn) Close() { f.closed.Store(true) }

// nextState 读出队列中的下一条 state 消息
func (f *fakeConn) nextState(t *testing.T) protocol.State {
	t.Helper()
	select {
	case b := <-f.sendCh:
		env, err := f.codec.DecodeEnvelope(b)
		require.NoError(t, err)
		require.Equal(t, protocol.MsgState, env.T)
		st, err := protocol.DecodePayload[protocol.State](env)
		require.NoError(t, err)
		return st
	default:
		t.Fatal("no message queued")
		return protocol.State{}
	}
}

func newTestRoom(t *testing.T, opts ...sim.Option) *Room {
	t.Helper()
	world := sim.NewWorld(sim.NewMemStore(), opts...)
	return NewRoom("test", world, time.Second, time.Second)
}

func envelope(t *testing.T, msgType string, payload any) protocol.Envelope {
	t.Helper()
	b, err := protocol.JSON.Encode(msgType, payload)
	require.NoError(t, err)
	env, err := protocol.JSON.DecodeEnvelope(b)
	require.NoError(t, err)
	return env
}

func rawEnvelope(t *testing.T, raw string) protocol.Envelope {
	t.Helper()
	env, err := protocol.JSON.DecodeEnvelope([]byte(raw))
	require.NoError(t, err)
	return env
}

func TestNewRoomWritesSchedule(t *testing.T) {
	r := newTestRoom(t)
	sched, ok := r.World().Schedule()
	require.True(t, ok)
	assert.Equal(t, time.Second, sched.Interval)
}

func TestDispatchRegisterInputCast(t *testing.T) {
	r := newTestRoom(t)
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice", Class: "mage"}))
	r.Dispatch("bob", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Bob", Class: "rogue"}))

	alice, ok := r.World().Player("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", alice.Username)
	assert.Equal(t, sim.V(-2.5, 1, 0), alice.Position)

	r.Dispatch("alice", envelope(t, protocol.MsgInput, protocol.Input{
		Input:     sim.InputSnapshot{Forward: true, Sequence: 3},
		Position:  protocol.Vector{X: 100, Y: 100, Z: 100},
		Animation: "run-forward",
	}))
	moved, ok := r.World().Player("alice")
	require.True(t, ok)
	assert.InDelta(t, -7.5/60, moved.Position.Z(), 1e-9)
	assert.Equal(t, uint32(3), moved.LastInputSeq)
	assert.Equal(t, "run-forward", moved.Animation)

	r.Dispatch("alice", envelope(t, protocol.MsgCastSpell, protocol.CastSpell{Spell: "fireball"}))
	r.Dispatch("ghost", envelope(t, protocol.MsgCastSpell, protocol.CastSpell{Spell: "fireball"}))
	r.Dispatch("ghost", envelope(t, protocol.MsgInput, protocol.Input{Input: sim.InputSnapshot{Left: true}}))

	snap, err := r.World().Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Projectiles, 1)
	assert.Equal(t, sim.Identity("bob"), snap.Projectiles[0].Target)

	m := r.Metrics()
	assert.Equal(t, int64(1), m.InputsApplied)
	assert.Equal(t, int64(1), m.InputsIgnored)
	assert.Equal(t, int64(1), m.SpellsCast)
	assert.Equal(t, int64(1), m.SpellsIgnored)
	assert.Zero(t, m.MalformedMessages)
}

func TestDispatchMalformed(t *testing.T) {
	r := newTestRoom(t)
	r.Dispatch("alice", rawEnvelope(t, `{"t":"dance","p":{}}`))
	r.Dispatch("alice", rawEnvelope(t, `{"t":"input","p":"oops"}`))
	r.Dispatch("alice", rawEnvelope(t, `{"t":"register"}`))

	assert.Equal(t, int64(3), r.Metrics().MalformedMessages)
	_, ok := r.World().Player("alice")
	assert.False(t, ok)
}

func TestJoinReplacesOlderConnection(t *testing.T) {
	r := newTestRoom(t)
	first := newFakeConn(protocol.JSON, 4)
	second := newFakeConn(protocol.JSON, 4)

	r.JoinPlayer("alice", first)
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice", Class: "mage"}))
	r.JoinPlayer("alice", second)
	assert.True(t, first.closed.Load())
	assert.Equal(t, 1, r.NumPlayers())

	// 旧连接的读协程退出不应让角色下线
	r.LeavePlayer("alice", first)
	_, ok := r.World().Player("alice")
	assert.True(t, ok)
	assert.Equal(t, 1, r.NumPlayers())

	r.LeavePlayer("alice", second)
	assert.True(t, second.closed.Load())
	assert.Zero(t, r.NumPlayers())
	_, ok = r.World().Player("alice")
	assert.False(t, ok)
	lo, ok := r.World().LoggedOut("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", lo.Username)
}

func TestBroadcastEncodesPerCodec(t *testing.T) {
	r := newTestRoom(t)
	jc := newFakeConn(protocol.JSON, 4)
	mc := newFakeConn(protocol.Msgpack, 4)
	full := newFakeConn(protocol.JSON, 0)

	r.JoinPlayer("alice", jc)
	r.JoinPlayer("bob", mc)
	r.JoinPlayer("carol", full)
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice", Class: "mage"}))
	r.Dispatch("bob", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Bob", Class: "rogue"}))

	r.Broadcast()

	for _, c := range []*fakeConn{jc, mc} {
		st := c.nextState(t)
		require.Len(t, st.Players, 2)
		assert.Equal(t, "alice", st.Players[0].Identity)
		assert.Equal(t, "bob", st.Players[1].Identity)
		assert.Equal(t, 100, st.Players[1].Health)
	}
	assert.Equal(t, int64(1), r.Metrics().ChanFullDiscarded)
}

func TestRunTickRecordsReport(t *testing.T) {
	tuning := sim.DefaultTuning()
	tuning.ProjectileSpeed = 5
	r := newTestRoom(t, sim.WithTuning(tuning))
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice"}))
	r.Dispatch("bob", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Bob"}))
	r.Dispatch("alice", envelope(t, protocol.MsgCastSpell, protocol.CastSpell{Spell: "bolt"}))

	sched, ok := r.World().Schedule()
	require.True(t, ok)

	// 两人相距 5，速度 5、dt 1s：第一次移动到目标处，第二次命中
	r.RunTick(sched)
	r.RunTick(sched)

	m := r.Metrics()
	assert.Equal(t, int64(2), m.TickCount)
	assert.Equal(t, int64(1), m.ProjectilesHit)
	assert.Equal(t, int64(10), m.DamageDealt)
	assert.Equal(t, int64(2), r.tickSeq.Load())

	bob, ok := r.World().Player("bob")
	require.True(t, ok)
	assert.Equal(t, 90, bob.Health)
}

type brokenStore struct {
	sim.Store
}

func (brokenStore) Transact(func(tx sim.Tx) error) error { return errors.New("disk on fire") }

func TestRunTickCountsAbortedTicks(t *testing.T) {
	world := sim.NewWorld(brokenStore{Store: sim.NewMemStore()})
	r := NewRoom("broken", world, time.Second, time.Second)

	r.RunTick(sim.TickSchedule{ID: 1, Interval: time.Second})

	assert.Equal(t, int64(1), r.Metrics().TickErrors)
	assert.Zero(t, r.Metrics().TickCount)
	assert.Zero(t, r.tickSeq.Load())
}

func TestStopClosesConnectionsAndLogsOut(t *testing.T) {
	r := newTestRoom(t)
	c := newFakeConn(protocol.JSON, 4)
	r.JoinPlayer("alice", c)
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice"}))
	r.StartTicker(time.Second)

	r.Stop()
	r.Stop()

	assert.True(t, c.closed.Load())
	assert.Zero(t, r.NumPlayers())
	_, ok := r.World().LoggedOut("alice")
	assert.True(t, ok)
}

// gatedStore 在 armed 时让下一次写事务停在入口，直到 release 被关闭
type gatedStore struct {
	sim.Store
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Transact(fn func(tx sim.Tx) error) error {
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return s.Store.Transact(fn)
}

func TestRejoinWaitsForPendingDisconnect(t *testing.T) {
	store := &gatedStore{
		Store:   sim.NewMemStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewRoom("gated", sim.NewWorld(store), time.Second, time.Second)
	first := newFakeConn(protocol.JSON, 4)
	r.JoinPlayer("alice", first)
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice", Class: "mage"}))

	store.armed.Store(true)
	left := make(chan struct{})
	go func() {
		r.LeavePlayer("alice", first)
		close(left)
	}()
	<-store.entered

	second := newFakeConn(protocol.JSON, 4)
	joined := make(chan struct{})
	go func() {
		r.JoinPlayer("alice", second)
		close(joined)
	}()
	assert.Never(t, func() bool {
		select {
		case <-joined:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(store.release)
	<-left
	<-joined
	r.Dispatch("alice", envelope(t, protocol.MsgRegister, protocol.Register{Username: "Alice", Class: "mage"}))

	p, ok := r.World().Player("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Username)
	_, ok = r.World().LoggedOut("alice")
	assert.False(t, ok)
	assert.False(t, second.closed.Load())
	assert.Equal(t, 1, r.NumPlayers())
}
