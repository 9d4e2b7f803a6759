package server

import (
	"sync"

	"github.com/google/uuid"

	"spellarena/sim"
)

// identityRegistry 身份提供方：公开身份随 state 广播，重连令牌只在 welcome 中发给本人
type identityRegistry struct {
	mu      sync.Mutex
	byToken map[string]sim.Identity
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{byToken: make(map[string]sim.Identity)}
}

// resolve 已登记的令牌返回原身份；否则分配新的身份与令牌
func (r *identityRegistry) resolve(token string) (sim.Identity, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != "" {
		if id, ok := r.byToken[token]; ok {
			return id, token
		}
	}
	id := sim.Identity(uuid.New().String())
	token = uuid.New().String()
	r.byToken[token] = id
	return id, token
}
