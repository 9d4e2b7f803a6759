package sim

import (
	"fmt"
	"iter"
	"maps"
	"sync"
)

type memTable[K comparable, V any] struct {
	rows   map[K]V
	key    func(V) K
	assign func(V, uint64) V // 非空表示自增主键
	seq    uint64
}

func newMemTable[K comparable, V any](key func(V) K, assign func(V, uint64) V) *memTable[K, V] {
	return &memTable[K, V]{rows: make(map[K]V), key: key, assign: assign}
}

func (t *memTable[K, V]) clone() *memTable[K, V] {
	return &memTable[K, V]{rows: maps.Clone(t.rows), key: t.key, assign: t.assign, seq: t.seq}
}

func (t *memTable[K, V]) Find(key K) (V, bool) {
	row, ok := t.rows[key]
	return row, ok
}

func (t *memTable[K, V]) Insert(row V) (V, error) {
	var zero K
	k := t.key(row)
	if t.assign != nil && k == zero {
		t.seq++
		row = t.assign(row, t.seq)
		k = t.key(row)
	}
	if _, exists := t.rows[k]; exists {
		return row, fmt.Errorf("insert %v: %w", k, ErrDuplicateKey)
	}
	t.rows[k] = row
	return row, nil
}

func (t *memTable[K, V]) Update(row V) error {
	k := t.key(row)
	if _, exists := t.rows[k]; !exists {
		return fmt.Errorf("update %v: %w", k, ErrNotFound)
	}
	t.rows[k] = row
	return nil
}

func (t *memTable[K, V]) Delete(key K) bool {
	if _, exists := t.rows[key]; !exists {
		return false
	}
	delete(t.rows, key)
	return true
}

func (t *memTable[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, row := range t.rows {
			if !yield(row) {
				return
			}
		}
	}
}

func (t *memTable[K, V]) Count() int { return len(t.rows) }

type memTx struct {
	players     *memTable[Identity, ActivePlayer]
	loggedOut   *memTable[Identity, LoggedOutPlayer]
	projectiles *memTable[uint64, Projectile]
	schedules   *memTable[uint64, TickSchedule]
}

func (tx *memTx) Players() Table[Identity, ActivePlayer]      { return tx.players }
func (tx *memTx) LoggedOut() Table[Identity, LoggedOutPlayer] { return tx.loggedOut }
func (tx *memTx) Projectiles() Table[uint64, Projectile]      { return tx.projectiles }
func (tx *memTx) Schedules() Table[uint64, TickSchedule]      { return tx.schedules }

func (tx *memTx) clone() *memTx {
	return &memTx{
		players:     tx.players.clone(),
		loggedOut:   tx.loggedOut.clone(),
		projectiles: tx.projectiles.clone(),
		schedules:   tx.schedules.clone(),
	}
}

// MemStore 内存事务存储：写事务串行执行，作用在表的副本上，成功后整体替换
type MemStore struct {
	mu    sync.RWMutex
	state *memTx
}

func NewMemStore() *MemStore {
	return &MemStore{state: &memTx{
		players:   newMemTable(func(p ActivePlayer) Identity { return p.Identity }, nil),
		loggedOut: newMemTable(func(p LoggedOutPlayer) Identity { return p.Identity }, nil),
		projectiles: newMemTable(func(p Projectile) uint64 { return p.ID },
			func(p Projectile, id uint64) Projectile { p.ID = id; return p }),
		schedules: newMemTable(func(s TickSchedule) uint64 { return s.ID },
			func(s TickSchedule, id uint64) TickSchedule { s.ID = id; return s }),
	}}
}

func (s *MemStore) Transact(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemStore) View(fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}
