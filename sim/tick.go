package sim

import "fmt"

// Tick 由外部调度器按 schedule 周期调用。dt 固定取调度间隔，不按实际触发时间计算。
// 整个 tick 是一次事务：出错或 panic 时不落盘任何修改。
func (w *World) Tick(sched TickSchedule) (report TickReport, err error) {
	t := w.Tuning()
	now := w.clock()
	dt := sched.Interval.Seconds()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick %d panic: %v", sched.ID, r)
			report = TickReport{}
			w.log.Errorf("tick aborted: %v", err)
		}
	}()

	err = w.store.Transact(func(tx Tx) error {
		var perr error
		report, perr = w.advanceProjectiles(tx, now, dt, t)
		return perr
	})
	if err != nil {
		return TickReport{}, err
	}
	w.log.Debugf("tick completed: %+v", report)
	return report, nil
}
