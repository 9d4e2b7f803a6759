package server

import (
	"encoding/json"
	"net/http"
	"time"

	"spellarena/config"
)

// tuningPatch 管理接口的部分更新载荷；时长以秒表示
type tuningPatch struct {
	PlayerSpeed           *float64 `json:"playerSpeed,omitempty"`
	SprintMultiplier      *float64 `json:"sprintMultiplier,omitempty"`
	InputDelta            *float64 `json:"inputDelta,omitempty"`
	ProjectileSpeed       *float64 `json:"projectileSpeed,omitempty"`
	ProjectileLifetimeSec *float64 `json:"projectileLifetimeSec,omitempty"`
	HitRadius             *float64 `json:"hitRadius,omitempty"`
	SpellDamage           *int     `json:"spellDamage,omitempty"`
}

// HandleAdminConfig 提供房间玩法参数的读取与热更新
// GET /admin/config?room=arena-1  返回当前参数
// POST /admin/config?room=arena-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room := m.GetOrCreateRoom(r.URL.Query().Get("room"))
	world := room.World()

	switch r.Method {
	case http.MethodGet:
		t := world.Tuning()
		lifetime := t.ProjectileLifetime.Seconds()
		cur := tuningPatch{
			PlayerSpeed:           &t.PlayerSpeed,
			SprintMultiplier:      &t.SprintMultiplier,
			InputDelta:            &t.InputDelta,
			ProjectileSpeed:       &t.ProjectileSpeed,
			ProjectileLifetimeSec: &lifetime,
			HitRadius:             &t.HitRadius,
			SpellDamage:           &t.SpellDamage,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cur)
	case http.MethodPost:
		var body tuningPatch
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t := world.Tuning()
		if body.PlayerSpeed != nil {
			t.PlayerSpeed = *body.PlayerSpeed
		}
		if body.SprintMultiplier != nil {
			t.SprintMultiplier = *body.SprintMultiplier
		}
		if body.InputDelta != nil {
			t.InputDelta = *body.InputDelta
		}
		if body.ProjectileSpeed != nil {
			t.ProjectileSpeed = *body.ProjectileSpeed
		}
		if body.ProjectileLifetimeSec != nil {
			t.ProjectileLifetime = time.Duration(*body.ProjectileLifetimeSec * float64(time.Second))
		}
		if body.HitRadius != nil {
			t.HitRadius = *body.HitRadius
		}
		if body.SpellDamage != nil {
			t.SpellDamage = *body.SpellDamage
		}
		if err := config.ValidateTuning(t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		world.SetTuning(t)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infof("tuning updated: room=%s speed=%.2f sprint=%.2f projectile=%.2f lifetime=%s hit=%.2f damage=%d",
			room.ID, t.PlayerSpeed, t.SprintMultiplier, t.ProjectileSpeed, t.ProjectileLifetime, t.HitRadius, t.SpellDamage)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=arena-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := m.Room(r.URL.Query().Get("room"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    room.ID,
		"tick":    room.tickSeq.Load(),
		"players": room.NumPlayers(),
		"metrics": room.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
