package sim

import (
	"fmt"
	"time"
)

// OnConnect 会话建立只记录日志，角色由 Register 显式生成
func (w *World) OnConnect(id Identity) {
	w.log.Infof("client connected: %s", id)
}

// OnDisconnect 在线玩家转存为离线记录；已离线则刷新 last seen；未知身份忽略
func (w *World) OnDisconnect(id Identity, at time.Time) error {
	w.log.Infof("client disconnected: %s", id)
	return w.store.Transact(func(tx Tx) error {
		if p, ok := tx.Players().Find(id); ok {
			w.log.Infof("moving player %s to logged out table", id)
			if _, err := tx.LoggedOut().Insert(logOut(p, at)); err != nil {
				return fmt.Errorf("disconnect %s: %w", id, err)
			}
			tx.Players().Delete(id)
			return nil
		}
		w.log.Warnf("disconnect by %s: not in active player table", id)
		if lo, ok := tx.LoggedOut().Find(id); ok {
			lo.LastSeen = at
			if err := tx.LoggedOut().Update(lo); err != nil {
				return fmt.Errorf("disconnect %s: %w", id, err)
			}
			w.log.Warnf("updated last seen for already logged out player %s", id)
		}
		return nil
	})
}

// Register 新建或恢复在线玩家；已在线时忽略
func (w *World) Register(id Identity, username, class string) error {
	w.log.Infof("registering player %s (%s) with class %s", username, id, class)
	t := w.Tuning()
	return w.store.Transact(func(tx Tx) error {
		if _, ok := tx.Players().Find(id); ok {
			w.log.Warnf("player %s is already active", id)
			return nil
		}

		count := tx.Players().Count()
		color := Palette[count%len(Palette)]
		spawn := t.SpawnPoint(count)

		var p ActivePlayer
		if lo, ok := tx.LoggedOut().Find(id); ok {
			w.log.Infof("player %s is rejoining", id)
			p = rejoin(lo, spawn, color)
			tx.LoggedOut().Delete(id)
		} else {
			w.log.Infof("registering new player %s", id)
			p = newPlayer(id, username, class, spawn, color, t)
		}
		if _, err := tx.Players().Insert(p); err != nil {
			return fmt.Errorf("register %s: %w", id, err)
		}
		return nil
	})
}

func newPlayer(id Identity, username, class string, spawn Vec3, color string, t Tuning) ActivePlayer {
	return ActivePlayer{
		Identity:  id,
		Username:  username,
		Class:     class,
		Position:  spawn,
		Health:    t.DefaultHealth,
		MaxHealth: t.DefaultHealth,
		Mana:      t.DefaultMana,
		MaxMana:   t.DefaultMana,
		Animation: AnimIdle,
		Color:     color,
		Grounded:  true,
	}
}

// rejoin 保留名称、职业与生命/法力，位置、朝向与派生状态重置
func rejoin(lo LoggedOutPlayer, spawn Vec3, color string) ActivePlayer {
	return ActivePlayer{
		Identity:  lo.Identity,
		Username:  lo.Username,
		Class:     lo.Class,
		Position:  spawn,
		Health:    lo.Health,
		MaxHealth: lo.MaxHealth,
		Mana:      lo.Mana,
		MaxMana:   lo.MaxMana,
		Animation: AnimIdle,
		Color:     color,
		Grounded:  true,
	}
}

func logOut(p ActivePlayer, at time.Time) LoggedOutPlayer {
	return LoggedOutPlayer{
		Identity:  p.Identity,
		Username:  p.Username,
		Class:     p.Class,
		Position:  p.Position,
		Rotation:  p.Rotation,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Mana:      p.Mana,
		MaxMana:   p.MaxMana,
		LastSeen:  at,
	}
}
