package server

import (
	"sync"
	"time"

	"spellarena/config"
	"spellarena/sim"
)

// RoomManager 管理多个房间的生命周期，每个房间拥有独立的存储与世界
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   config.Config

	identities *identityRegistry
}

func NewRoomManager(cfg config.Config) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), cfg: cfg, identities: newIdentityRegistry()}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	if id == "" {
		id = m.cfg.Server.DefaultArena
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		world := sim.NewWorld(sim.NewMemStore(),
			sim.WithLogger(Log.With("room", id)),
			sim.WithTuning(m.cfg.Sim.Tuning))
		r = NewRoom(id, world, m.cfg.Sim.TickInterval, time.Second/time.Duration(m.cfg.Server.BroadcastHz))
		m.rooms[id] = r
		r.StartTicker(m.cfg.Sim.TickInterval)
		Log.Infof("room %s created", id)
	}
	return r
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	if id == "" {
		id = m.cfg.Server.DefaultArena
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Stop 停止所有房间
func (m *RoomManager) Stop() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
