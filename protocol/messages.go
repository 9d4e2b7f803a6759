package protocol

import "spellarena/sim"

// 客户端 -> 服务端

type Register struct {
	Username string `json:"username" msgpack:"username"`
	Class    string `json:"class" msgpack:"class"`
}

// Input 客户端位置会被接收但不参与计算
type Input struct {
	Input     sim.InputSnapshot `json:"input" msgpack:"input"`
	Position  Vector            `json:"position" msgpack:"position"`
	Rotation  Vector            `json:"rotation" msgpack:"rotation"`
	Animation string            `json:"animation" msgpack:"animation"`
}

type CastSpell struct {
	Spell string `json:"spell" msgpack:"spell"`
}

// 服务端 -> 客户端

// Welcome Token 是重连凭据，只发给本人，不出现在 state 中
type Welcome struct {
	Identity    string  `json:"identity" msgpack:"identity"`
	Token       string  `json:"token" msgpack:"token"`
	TickSeconds float64 `json:"tickSeconds" msgpack:"tickSeconds"`
	Codec       string  `json:"codec" msgpack:"codec"`
}

type State struct {
	Players     []PlayerState     `json:"players" msgpack:"players"`
	Projectiles []ProjectileState `json:"projectiles" msgpack:"projectiles"`
}

type PlayerState struct {
	Identity  string  `json:"identity" msgpack:"identity"`
	Username  string  `json:"username" msgpack:"username"`
	Class     string  `json:"class" msgpack:"class"`
	Position  Vector  `json:"position" msgpack:"position"`
	Rotation  Vector  `json:"rotation" msgpack:"rotation"`
	Health    int     `json:"health" msgpack:"health"`
	MaxHealth int     `json:"maxHealth" msgpack:"maxHealth"`
	Mana      int     `json:"mana" msgpack:"mana"`
	MaxMana   int     `json:"maxMana" msgpack:"maxMana"`
	Animation string  `json:"animation" msgpack:"animation"`
	Moving    bool    `json:"moving" msgpack:"moving"`
	Running   bool    `json:"running" msgpack:"running"`
	Attacking bool    `json:"attacking" msgpack:"attacking"`
	Casting   bool    `json:"casting" msgpack:"casting"`
	LastSeq   uint32  `json:"lastSeq" msgpack:"lastSeq"`
	Color     string  `json:"color" msgpack:"color"`
	VerticalV float64 `json:"verticalVelocity" msgpack:"verticalVelocity"`
	Grounded  bool    `json:"grounded" msgpack:"grounded"`
}

type ProjectileState struct {
	ID        uint64 `json:"id" msgpack:"id"`
	Caster    string `json:"caster" msgpack:"caster"`
	Target    string `json:"target" msgpack:"target"`
	Position  Vector `json:"position" msgpack:"position"`
	Kind      string `json:"kind" msgpack:"kind"`
	ExpiresAt int64  `json:"expiresAt" msgpack:"expiresAt"` // unix 毫秒
}

func FromVec(v sim.Vec3) Vector { return Vector{X: v.X(), Y: v.Y(), Z: v.Z()} }

func (v Vector) Vec() sim.Vec3 { return sim.V(v.X, v.Y, v.Z) }

// NewState 由模拟快照构造广播消息
func NewState(snap sim.Snapshot) State {
	st := State{
		Players:     make([]PlayerState, 0, len(snap.Players)),
		Projectiles: make([]ProjectileState, 0, len(snap.Projectiles)),
	}
	for _, p := range snap.Players {
		st.Players = append(st.Players, PlayerState{
			Identity:  string(p.Identity),
			Username:  p.Username,
			Class:     p.Class,
			Position:  FromVec(p.Position),
			Rotation:  FromVec(p.Rotation),
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Mana:      p.Mana,
			MaxMana:   p.MaxMana,
			Animation: p.Animation,
			Moving:    p.Moving,
			Running:   p.Running,
			Attacking: p.Attacking,
			Casting:   p.Casting,
			LastSeq:   p.LastInputSeq,
			Color:     p.Color,
			VerticalV: p.VerticalVelocity,
			Grounded:  p.Grounded,
		})
	}
	for _, p := range snap.Projectiles {
		st.Projectiles = append(st.Projectiles, ProjectileState{
			ID:        p.ID,
			Caster:    string(p.Caster),
			Target:    string(p.Target),
			Position:  FromVec(p.Position),
			Kind:      p.Kind,
			ExpiresAt: p.ExpiresAt.UnixMilli(),
		})
	}
	return st
}
