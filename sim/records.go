package sim

import "time"

// Identity 会话/玩家的唯一标识（由身份提供方给出，核心不解析其内容）
type Identity string

// InputSnapshot 客户端一次输入的动作位与序列号
type InputSnapshot struct {
	Forward   bool   `json:"forward" msgpack:"forward"`
	Backward  bool   `json:"backward" msgpack:"backward"`
	Left      bool   `json:"left" msgpack:"left"`
	Right     bool   `json:"right" msgpack:"right"`
	Sprint    bool   `json:"sprint" msgpack:"sprint"`
	Jump      bool   `json:"jump" msgpack:"jump"`
	Attack    bool   `json:"attack" msgpack:"attack"`
	CastSpell bool   `json:"castSpell" msgpack:"castSpell"`
	Sequence  uint32 `json:"sequence" msgpack:"sequence"`
}

// Moving 是否按下任一方向键
func (in InputSnapshot) Moving() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

// ActivePlayer 在线玩家（权威状态）
type ActivePlayer struct {
	Identity         Identity
	Username         string
	Class            string
	Position         Vec3
	Rotation         Vec3
	Health           int
	MaxHealth        int
	Mana             int
	MaxMana          int
	Animation        string
	Moving           bool
	Running          bool
	Attacking        bool
	Casting          bool
	LastInputSeq     uint32
	Input            InputSnapshot
	Color            string
	VerticalVelocity float64
	Grounded         bool
}

// LoggedOutPlayer 离线玩家的存档，重新注册时恢复
type LoggedOutPlayer struct {
	Identity  Identity
	Username  string
	Class     string
	Position  Vec3
	Rotation  Vec3
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	LastSeen  time.Time
}

// Projectile 追踪弹
type Projectile struct {
	ID        uint64
	Caster    Identity
	Position  Vec3
	Target    Identity
	Speed     float64
	CreatedAt time.Time
	ExpiresAt time.Time
	Kind      string
}

// TickSchedule 周期推进的调度记录
type TickSchedule struct {
	ID       uint64
	Interval time.Duration
}

const (
	AnimIdle         = "idle"
	KindHomingSphere = "homing_sphere"
)

// Palette 玩家颜色，按在线人数轮转分配
var Palette = []string{"cyan", "magenta", "yellow", "lightgreen", "white", "orange"}
