package sim

import "fmt"

// ApplyInput 把一次输入作用到玩家记录上。
// 帧时长固定为 dt，不采用客户端上报的值；朝向与动画直接采用客户端上报值。
// 序列号只记录，不用于丢弃乱序输入。
func ApplyInput(p *ActivePlayer, k Kinematics, dt float64, in InputSnapshot, clientRotation Vec3, clientAnimation string) {
	p.Position = ComputeDisplacement(k, p.Position, clientRotation, in, dt)
	p.Rotation = clientRotation
	p.Animation = clientAnimation
	p.Input = in
	p.LastInputSeq = in.Sequence
	p.Moving = in.Moving()
	p.Running = p.Moving && in.Sprint
	p.Attacking = in.Attack
	p.Casting = in.CastSpell
}

// SubmitInput 处理一条输入消息，返回是否找到在线玩家并应用
func (w *World) SubmitInput(id Identity, in InputSnapshot, clientRotation Vec3, clientAnimation string) (bool, error) {
	t := w.Tuning()
	applied := false
	err := w.store.Transact(func(tx Tx) error {
		p, ok := tx.Players().Find(id)
		if !ok {
			w.log.Warnf("player %s tried to update input but is not active", id)
			return nil
		}
		ApplyInput(&p, t.Kinematics(), t.InputDelta, in, clientRotation, clientAnimation)
		if err := tx.Players().Update(p); err != nil {
			return fmt.Errorf("input %s: %w", id, err)
		}
		applied = true
		return nil
	})
	return applied && err == nil, err
}
