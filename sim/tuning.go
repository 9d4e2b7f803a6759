package sim

import "time"

// Tuning 玩法参数，可由配置文件与管理接口调整
type Tuning struct {
	PlayerSpeed        float64       `yaml:"player_speed" json:"playerSpeed"`
	SprintMultiplier   float64       `yaml:"sprint_multiplier" json:"sprintMultiplier"`
	InputDelta         float64       `yaml:"input_delta" json:"inputDelta"` // 每条输入消息估算的帧时长（秒）
	ProjectileSpeed    float64       `yaml:"projectile_speed" json:"projectileSpeed"`
	ProjectileLifetime time.Duration `yaml:"projectile_lifetime" json:"projectileLifetime"`
	HitRadius          float64       `yaml:"hit_radius" json:"hitRadius"`
	SpellDamage        int           `yaml:"spell_damage" json:"spellDamage"`
	SpawnSpacing       float64       `yaml:"spawn_spacing" json:"spawnSpacing"`
	SpawnOffsetX       float64       `yaml:"spawn_offset_x" json:"spawnOffsetX"`
	SpawnHeight        float64       `yaml:"spawn_height" json:"spawnHeight"`
	DefaultHealth      int           `yaml:"default_health" json:"defaultHealth"`
	DefaultMana        int           `yaml:"default_mana" json:"defaultMana"`
}

// DefaultTuning 默认玩法参数
func DefaultTuning() Tuning {
	return Tuning{
		PlayerSpeed:        7.5,
		SprintMultiplier:   1.8,
		InputDelta:         1.0 / 60.0,
		ProjectileSpeed:    15,
		ProjectileLifetime: 60 * time.Second,
		HitRadius:          1.0,
		SpellDamage:        10,
		SpawnSpacing:       5,
		SpawnOffsetX:       -2.5,
		SpawnHeight:        1,
		DefaultHealth:      100,
		DefaultMana:        100,
	}
}

// Kinematics 位移计算所需的速度参数
func (t Tuning) Kinematics() Kinematics {
	return Kinematics{Speed: t.PlayerSpeed, SprintMultiplier: t.SprintMultiplier}
}

// SpawnPoint 按在线人数横向错开出生点
func (t Tuning) SpawnPoint(activeCount int) Vec3 {
	return V(float64(activeCount)*t.SpawnSpacing+t.SpawnOffsetX, t.SpawnHeight, 0)
}
