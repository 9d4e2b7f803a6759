package server

import (
	"sync/atomic"

	"spellarena/sim"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount           int64 // Tick 次数
	TickErrors          int64 // 中止（未提交）的 Tick
	InputsApplied       int64 // 已应用的输入
	InputsIgnored       int64 // 因玩家不在线被忽略的输入
	SpellsCast          int64 // 生成的弹体数
	SpellsIgnored       int64 // 因施法者不在线被忽略的施法
	ProjectilesHit      int64
	ProjectilesExpired  int64
	ProjectilesOrphaned int64 // 目标已离线
	DamageDealt         int64
	MalformedMessages   int64 // 无法解析的客户端消息
	ChanFullDiscarded   int64 // 因发送队列满被丢弃的广播
	TotalTickNs         int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncTickError()         { atomic.AddInt64(&m.TickErrors, 1) }
func (m *RoomMetrics) IncMalformed()         { atomic.AddInt64(&m.MalformedMessages, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }

func (m *RoomMetrics) IncInput(applied bool) {
	if applied {
		atomic.AddInt64(&m.InputsApplied, 1)
		return
	}
	atomic.AddInt64(&m.InputsIgnored, 1)
}

func (m *RoomMetrics) IncSpell(created bool) {
	if created {
		atomic.AddInt64(&m.SpellsCast, 1)
		return
	}
	atomic.AddInt64(&m.SpellsIgnored, 1)
}

// AddTick 累计一次成功提交的 Tick
func (m *RoomMetrics) AddTick(ns int64, r sim.TickReport) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	atomic.AddInt64(&m.ProjectilesHit, int64(r.Hit))
	atomic.AddInt64(&m.ProjectilesExpired, int64(r.Expired))
	atomic.AddInt64(&m.ProjectilesOrphaned, int64(r.TargetMissing))
	atomic.AddInt64(&m.DamageDealt, int64(r.Damage))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":           tick,
		"tick_errors":          atomic.LoadInt64(&m.TickErrors),
		"inputs_applied":       atomic.LoadInt64(&m.InputsApplied),
		"inputs_ignored":       atomic.LoadInt64(&m.InputsIgnored),
		"spells_cast":          atomic.LoadInt64(&m.SpellsCast),
		"spells_ignored":       atomic.LoadInt64(&m.SpellsIgnored),
		"projectiles_hit":      atomic.LoadInt64(&m.ProjectilesHit),
		"projectiles_expired":  atomic.LoadInt64(&m.ProjectilesExpired),
		"projectiles_orphaned": atomic.LoadInt64(&m.ProjectilesOrphaned),
		"damage_dealt":         atomic.LoadInt64(&m.DamageDealt),
		"malformed_messages":   atomic.LoadInt64(&m.MalformedMessages),
		"chan_full_discarded":  atomic.LoadInt64(&m.ChanFullDiscarded),
		"avg_tick_ms":          avgMs,
	}
}
