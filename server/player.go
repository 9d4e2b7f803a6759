package server

import (
	"spellarena/protocol"
	"spellarena/sim"
)

// Conn 玩家连接的发送端
type Conn interface {
	// Enqueue 非阻塞入队，队列满时返回 false
	Enqueue(b []byte) bool
	Codec() protocol.Codec
	Close()
}

// Player 房间内的一个在线会话；角色数据在 sim 中维护
type Player struct {
	Identity sim.Identity
	Conn     Conn
}
