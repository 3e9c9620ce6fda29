package sweep

import (
	"context"
	"time"

	"github.com/riverqueue/river"
)

type SweepArgs struct{}

func (SweepArgs) Kind() string { return "expiry_sweep" }

// Worker выполняет обход как задачу River.
type Worker struct {
	river.WorkerDefaults[SweepArgs]
	sweeper *Sweeper
}

func NewWorker(s *Sweeper) *Worker {
	return &Worker{sweeper: s}
}

func (w *Worker) Work(ctx context.Context, _ *river.Job[SweepArgs]) error {
	_, err := w.sweeper.Run(ctx, time.Now())
	return err
}

// PeriodicJob ставит обход в очередь каждые interval, первый раз сразу после старта.
func PeriodicJob(interval time.Duration) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return SweepArgs{}, nil
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}
