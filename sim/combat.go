package sim

import (
	"fmt"
	"math"
	"time"
)

// Outcome 一次 tick 中单个弹体的结局
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeExpired
	OutcomeTargetMissing
	OutcomeHit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeExpired:
		return "expired"
	case OutcomeTargetMissing:
		return "target_missing"
	case OutcomeHit:
		return "hit"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// CastSpell 向最近的其他在线玩家发射追踪弹；没有其他玩家时以自己为目标。
// 返回新弹体与是否创建成功。
func (w *World) CastSpell(caster Identity, spell string) (Projectile, bool, error) {
	t := w.Tuning()
	now := w.clock()
	var (
		created Projectile
		ok      bool
	)
	err := w.store.Transact(func(tx Tx) error {
		c, found := tx.Players().Find(caster)
		if !found {
			w.log.Warnf("player %s tried to cast %s but is not active", caster, spell)
			return nil
		}
		target := selectTarget(tx.Players(), c)
		row, err := tx.Projectiles().Insert(Projectile{
			Caster:    caster,
			Position:  c.Position,
			Target:    target,
			Speed:     t.ProjectileSpeed,
			CreatedAt: now,
			ExpiresAt: now.Add(t.ProjectileLifetime),
			Kind:      KindHomingSphere,
		})
		if err != nil {
			return fmt.Errorf("cast %s: %w", spell, err)
		}
		if target == caster {
			w.log.Infof("player %s cast %s: homing sphere %d targeting self", caster, spell, row.ID)
		} else {
			w.log.Infof("player %s cast %s: homing sphere %d targeting %s", caster, spell, row.ID, target)
		}
		created, ok = row, true
		return nil
	})
	if err != nil {
		return Projectile{}, false, err
	}
	return created, ok, nil
}

// selectTarget 取距离施法者最近的其他玩家，距离相同时取先遍历到的
func selectTarget(players Table[Identity, ActivePlayer], caster ActivePlayer) Identity {
	target := caster.Identity
	nearest := math.MaxFloat64
	for p := range players.All() {
		if p.Identity == caster.Identity {
			continue
		}
		if d := Distance(caster.Position, p.Position); d < nearest {
			nearest = d
			target = p.Identity
		}
	}
	return target
}

// TickReport 一次 tick 的统计
type TickReport struct {
	Moved         int
	Expired       int
	Hit           int
	TargetMissing int
	Damage        int
}

func (r *TickReport) record(o Outcome) {
	switch o {
	case OutcomeMoved:
		r.Moved++
	case OutcomeExpired:
		r.Expired++
	case OutcomeTargetMissing:
		r.TargetMissing++
	case OutcomeHit:
		r.Hit++
	}
}

// advanceProjectiles 推进所有弹体：先扫描并标记删除，扫描结束后统一删除
func (w *World) advanceProjectiles(tx Tx, now time.Time, dt float64, t Tuning) (TickReport, error) {
	var (
		report  TickReport
		doomed  []uint64
		updates []Projectile
	)
	for p := range tx.Projectiles().All() {
		o, damage, err := w.stepProjectile(tx, &p, now, dt, t)
		if err != nil {
			return report, err
		}
		report.record(o)
		report.Damage += damage
		if o == OutcomeMoved {
			updates = append(updates, p)
		} else {
			doomed = append(doomed, p.ID)
		}
	}
	for _, p := range updates {
		if err := tx.Projectiles().Update(p); err != nil {
			return report, fmt.Errorf("projectile %d: %w", p.ID, err)
		}
	}
	for _, id := range doomed {
		tx.Projectiles().Delete(id)
	}
	return report, nil
}

// stepProjectile 依次检查：过期、目标缺失、命中、追踪移动，每个 tick 至多触发一种结局
func (w *World) stepProjectile(tx Tx, p *Projectile, now time.Time, dt float64, t Tuning) (Outcome, int, error) {
	if !now.Before(p.ExpiresAt) {
		w.log.Infof("projectile %d expired after %.1fs", p.ID, now.Sub(p.CreatedAt).Seconds())
		return OutcomeExpired, 0, nil
	}

	target, ok := tx.Players().Find(p.Target)
	if !ok {
		w.log.Infof("projectile %d target %s no longer exists", p.ID, p.Target)
		return OutcomeTargetMissing, 0, nil
	}

	if dist := Distance(p.Position, target.Position); dist <= t.HitRadius {
		w.log.Infof("projectile %d hit %s at distance %.2f", p.ID, target.Identity, dist)
		if target.Identity == p.Caster {
			w.log.Infof("projectile %d hit caster %s: no self damage", p.ID, p.Caster)
			return OutcomeHit, 0, nil
		}
		before := target.Health
		target.Health = max(target.Health-t.SpellDamage, 0)
		if err := tx.Players().Update(target); err != nil {
			return OutcomeHit, 0, fmt.Errorf("projectile %d damage: %w", p.ID, err)
		}
		w.log.Infof("projectile %d dealt %d damage to %s (health %d -> %d)",
			p.ID, t.SpellDamage, target.Identity, before, target.Health)
		return OutcomeHit, before - target.Health, nil
	}

	dir := target.Position.Sub(p.Position)
	if Magnitude(dir) > Epsilon {
		p.Position = Add(p.Position, Scale(Normalize(dir), p.Speed*dt))
	}
	return OutcomeMoved, 0, nil
}
