package sim

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// World 模拟状态的聚合根：所有入口都以一次事务作用于 store
type World struct {
	store  Store
	clock  func() time.Time
	log    *zap.SugaredLogger
	tuning atomic.Pointer[Tuning]
}

type Option func(*World)

// WithClock 替换时间源（测试中使用固定时钟）
func WithClock(clock func() time.Time) Option {
	return func(w *World) { w.clock = clock }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *World) { w.log = log }
}

func WithTuning(t Tuning) Option {
	return func(w *World) { w.tuning.Store(&t) }
}

// NewWorld 基于给定存储创建世界
func NewWorld(store Store, opts ...Option) *World {
	w := &World{store: store, clock: time.Now, log: zap.NewNop().Sugar()}
	def := DefaultTuning()
	w.tuning.Store(&def)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Tuning 当前玩法参数的副本
func (w *World) Tuning() Tuning { return *w.tuning.Load() }

// SetTuning 热更新玩法参数，下一次事务起生效
func (w *World) SetTuning(t Tuning) { w.tuning.Store(&t) }

func (w *World) Store() Store { return w.store }

// Init 首次启动时写入 tick 调度记录；失败只记录日志
func (w *World) Init(interval time.Duration) {
	w.log.Info("[INIT] initializing world")
	err := w.store.Transact(func(tx Tx) error {
		if tx.Schedules().Count() > 0 {
			w.log.Info("[INIT] tick already scheduled")
			return nil
		}
		row, err := tx.Schedules().Insert(TickSchedule{Interval: interval})
		if err != nil {
			return err
		}
		w.log.Infof("[INIT] tick schedule inserted: id=%d interval=%s", row.ID, row.Interval)
		return nil
	})
	if err != nil {
		w.log.Errorf("[INIT] failed to insert tick schedule: %v", err)
	}
}

// Schedule 返回当前的 tick 调度记录
func (w *World) Schedule() (TickSchedule, bool) {
	var (
		sched TickSchedule
		found bool
	)
	err := w.store.View(func(tx Tx) error {
		for s := range tx.Schedules().All() {
			sched, found = s, true
			break
		}
		return nil
	})
	if err != nil {
		w.log.Errorf("read tick schedule: %v", err)
		return TickSchedule{}, false
	}
	return sched, found
}
