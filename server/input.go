package server

import (
	"spellarena/protocol"
	"spellarena/sim"
)

// Dispatch 处理一条已解出外层的客户端消息。
// 任何单个客户端的异常消息都只记录日志，不影响共享世界。
func (r *Room) Dispatch(id sim.Identity, env protocol.Envelope) {
	switch env.T {
	case protocol.MsgRegister:
		msg, err := protocol.DecodePayload[protocol.Register](env)
		if err != nil {
			r.malformed(id, env, err)
			return
		}
		if err := r.world.Register(id, msg.Username, msg.Class); err != nil {
			r.log.Errorf("register %s: %v", id, err)
		}
	case protocol.MsgInput:
		msg, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			r.malformed(id, env, err)
			return
		}
		applied, err := r.world.SubmitInput(id, msg.Input, msg.Rotation.Vec(), msg.Animation)
		if err != nil {
			r.log.Errorf("input %s: %v", id, err)
			return
		}
		r.metrics.IncInput(applied)
	case protocol.MsgCastSpell:
		msg, err := protocol.DecodePayload[protocol.CastSpell](env)
		if err != nil {
			r.malformed(id, env, err)
			return
		}
		_, created, err := r.world.CastSpell(id, msg.Spell)
		if err != nil {
			r.log.Errorf("cast %s: %v", id, err)
			return
		}
		r.metrics.IncSpell(created)
	default:
		r.malformed(id, env, nil)
	}
}

func (r *Room) malformed(id sim.Identity, env protocol.Envelope, err error) {
	r.metrics.IncMalformed()
	if err != nil {
		r.log.Debugf("dropping %q from %s: %v", env.T, id, err)
		return
	}
	r.log.Debugf("dropping unknown message type %q from %s", env.T, id)
}
