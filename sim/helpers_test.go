package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store *MemStore
	world *World
	clock *fakeClock
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		store: NewMemStore(),
		clock: &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		logs:  logs,
	}
	f.world = NewWorld(f.store, WithClock(f.clock.Now), WithLogger(zap.New(core).Sugar()))
	return f
}

func (f *fixture) warnings(snippet string) int {
	return f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet(snippet).Len()
}

func (f *fixture) seedPlayer(t *testing.T, p ActivePlayer) {
	t.Helper()
	if p.MaxHealth == 0 {
		p.MaxHealth = 100
		if p.Health == 0 {
			p.Health = 100
		}
	}
	require.NoError(t, f.store.Transact(func(tx Tx) error {
		_, err := tx.Players().Insert(p)
		return err
	}))
}

func (f *fixture) seedProjectile(t *testing.T, p Projectile) Projectile {
	t.Helper()
	var row Projectile
	require.NoError(t, f.store.Transact(func(tx Tx) error {
		var err error
		row, err = tx.Projectiles().Insert(p)
		return err
	}))
	return row
}

func (f *fixture) projectile(id uint64) (Projectile, bool) {
	var (
		p  Projectile
		ok bool
	)
	_ = f.store.View(func(tx Tx) error {
		p, ok = tx.Projectiles().Find(id)
		return nil
	})
	return p, ok
}

func (f *fixture) projectileCount() int {
	n := 0
	_ = f.store.View(func(tx Tx) error {
		n = tx.Projectiles().Count()
		return nil
	})
	return n
}

// requireSingleState 身份最多只出现在在线表或离线表之一
func (f *fixture) requireSingleState(t *testing.T, id Identity) {
	t.Helper()
	_, active := f.world.Player(id)
	_, away := f.world.LoggedOut(id)
	require.False(t, active && away, "identity %s is both active and logged out", id)
}

var oneSecond = TickSchedule{ID: 1, Interval: time.Second}
