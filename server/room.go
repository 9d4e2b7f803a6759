package server

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"spellarena/protocol"
	"spellarena/sim"
)

// Room 房间：一个权威世界 + 连接在其上的会话。
// 客户端消息到达即以事务方式作用于世界，Tick 由房间的计时器驱动。
type Room struct {
	ID string

	world   *sim.World
	metrics *RoomMetrics
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	players map[sim.Identity]*Player

	broadcastInterval time.Duration
	tickSeq           atomic.Int64
	tickerStarted     atomic.Bool
	quit              chan struct{}
	stopOnce          sync.Once
	done              sync.WaitGroup
}

// NewRoom 创建房间并初始化世界（写入 tick 调度记录）
func NewRoom(id string, world *sim.World, tickInterval, broadcastInterval time.Duration) *Room {
	r := &Room{
		ID:                id,
		world:             world,
		metrics:           &RoomMetrics{},
		log:               Log.With("room", id),
		players:           make(map[sim.Identity]*Player),
		broadcastInterval: broadcastInterval,
		quit:              make(chan struct{}),
	}
	world.Init(tickInterval)
	return r
}

func (r *Room) World() *sim.World { return r.world }

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// NumPlayers 当前连接数
func (r *Room) NumPlayers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// JoinPlayer 登记连接；同一身份的旧连接会被关闭
func (r *Room) JoinPlayer(id sim.Identity, conn Conn) *Player {
	p := &Player{Identity: id, Conn: conn}
	r.mu.Lock()
	old, exists := r.players[id]
	r.players[id] = p
	r.mu.Unlock()
	if exists && old.Conn != conn {
		r.log.Warnf("identity %s connected again, closing previous session", id)
		old.Conn.Close()
	}
	r.world.OnConnect(id)
	return p
}

// LeavePlayer 连接断开：只有当前登记的连接断开时才让角色下线。
// 下线在持锁期间完成，同一身份的重连必须等它结束后才能登记。
func (r *Room) LeavePlayer(id sim.Identity, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok || p.Conn != conn {
		return
	}
	delete(r.players, id)
	conn.Close()
	if err := r.world.OnDisconnect(id, time.Now()); err != nil {
		r.log.Errorf("disconnect %s: %v", id, err)
	}
}

// Broadcast 将当前世界状态广播给所有连接，每种编码只序列化一次
func (r *Room) Broadcast() {
	snap, err := r.world.Snapshot()
	if err != nil {
		r.log.Errorf("snapshot: %v", err)
		return
	}
	state := protocol.NewState(snap)
	encoded := make(map[string][]byte, 2)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		codec := p.Conn.Codec()
		b, ok := encoded[codec.Name()]
		if !ok {
			b, err = codec.Encode(protocol.MsgState, state)
			if err != nil {
				r.log.Errorf("encode state (%s): %v", codec.Name(), err)
				return
			}
			encoded[codec.Name()] = b
		}
		if !p.Conn.Enqueue(b) {
			r.metrics.IncChanFullDiscarded()
		}
	}
}

// Stop 停止计时器并关闭所有连接
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		r.done.Wait()
		r.mu.Lock()
		defer r.mu.Unlock()
		players := r.players
		r.players = make(map[sim.Identity]*Player)
		for id, p := range players {
			p.Conn.Close()
			if err := r.world.OnDisconnect(id, time.Now()); err != nil {
				r.log.Errorf("disconnect %s: %v", id, err)
			}
		}
	})
}
