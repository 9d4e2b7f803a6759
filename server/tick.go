package server

import (
	"time"

	"spellarena/sim"
)

// StartTicker 按世界中的调度记录周期调用 Tick，并按广播频率推送状态
func (r *Room) StartTicker(fallback time.Duration) {
	if !r.tickerStarted.CompareAndSwap(false, true) {
		return
	}
	sched, ok := r.world.Schedule()
	if !ok {
		r.log.Warnf("no tick schedule found, falling back to %s", fallback)
		sched = sim.TickSchedule{Interval: fallback}
	}

	r.done.Add(1)
	go func() {
		defer r.done.Done()
		ticker := time.NewTicker(sched.Interval)
		defer ticker.Stop()
		broadcast := time.NewTicker(r.broadcastInterval)
		defer broadcast.Stop()
		for {
			select {
			case <-r.quit:
				return
			case <-ticker.C:
				r.RunTick(sched)
			case <-broadcast.C:
				r.Broadcast()
			}
		}
	}()
}

// RunTick 执行一次 Tick 并记录指标；失败的 Tick 不提交任何修改
func (r *Room) RunTick(sched sim.TickSchedule) {
	start := time.Now()
	report, err := r.world.Tick(sched)
	if err != nil {
		r.metrics.IncTickError()
		r.log.Errorf("tick %d aborted: %v", r.tickSeq.Load()+1, err)
		return
	}
	r.tickSeq.Add(1)
	r.metrics.AddTick(time.Since(start).Nanoseconds(), report)
}
