package sim

import (
	"errors"
	"iter"
)

var (
	ErrNotFound     = errors.New("sim: record not found")
	ErrDuplicateKey = errors.New("sim: duplicate key")
)

// Table 按主键存取的实体表
type Table[K comparable, V any] interface {
	// Find 按主键查找
	Find(key K) (V, bool)
	// Insert 插入新行；自增表在主键为零值时分配主键，返回实际写入的行
	Insert(row V) (V, error)
	// Update 覆盖已存在的行
	Update(row V) error
	// Delete 删除，返回是否存在
	Delete(key K) bool
	// All 遍历全部行，顺序不作保证
	All() iter.Seq[V]
	Count() int
}

// Tx 一次事务内可见的全部表
type Tx interface {
	Players() Table[Identity, ActivePlayer]
	LoggedOut() Table[Identity, LoggedOutPlayer]
	Projectiles() Table[uint64, Projectile]
	Schedules() Table[uint64, TickSchedule]
}

// Store 事务性存储：Transact 中 fn 返回错误（或 panic）时本次所有写入都不生效
type Store interface {
	Transact(fn func(tx Tx) error) error
	// View 只读访问，fn 中不得写入
	View(fn func(tx Tx) error) error
}
