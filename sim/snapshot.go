package sim

import (
	"cmp"
	"slices"
)

// Snapshot 某一时刻的在线玩家与弹体，按主键排序
type Snapshot struct {
	Players     []ActivePlayer
	Projectiles []Projectile
}

// Snapshot 读取当前状态，用于广播
func (w *World) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := w.store.View(func(tx Tx) error {
		snap.Players = slices.Collect(tx.Players().All())
		snap.Projectiles = slices.Collect(tx.Projectiles().All())
		return nil
	})
	slices.SortFunc(snap.Players, func(a, b ActivePlayer) int { return cmp.Compare(a.Identity, b.Identity) })
	slices.SortFunc(snap.Projectiles, func(a, b Projectile) int { return cmp.Compare(a.ID, b.ID) })
	return snap, err
}

// Player 查询在线玩家
func (w *World) Player(id Identity) (ActivePlayer, bool) {
	var (
		p  ActivePlayer
		ok bool
	)
	err := w.store.View(func(tx Tx) error {
		p, ok = tx.Players().Find(id)
		return nil
	})
	if err != nil {
		w.log.Errorf("lookup %s: %v", id, err)
		return p, false
	}
	return p, ok
}

// LoggedOut 查询离线存档
func (w *World) LoggedOut(id Identity) (LoggedOutPlayer, bool) {
	var (
		p  LoggedOutPlayer
		ok bool
	)
	err := w.store.View(func(tx Tx) error {
		p, ok = tx.LoggedOut().Find(id)
		return nil
	})
	if err != nil {
		w.log.Errorf("lookup %s: %v", id, err)
		return p, false
	}
	return p, ok
}
