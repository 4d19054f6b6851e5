package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

// Pool runs fire-and-forget tasks on a bounded set of goroutines. Submit never
// waits for a free worker: a saturated pool rejects the task with
// ants.ErrPoolOverload. A panicking task is logged and does not take the worker
// down.
type Pool struct {
	pool   *ants.Pool
	logger *logging.Logger
}

func NewPool(size int, logger *logging.Logger) (*Pool, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if size <= 0 {
		size = 4
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: pool, logger: logger.Named("worker")}, nil
}

func (p *Pool) Submit(task func()) error {
	err := p.pool.Submit(func() {
		var catcher panics.Catcher
		catcher.Try(task)
		if recovered := catcher.Recovered(); recovered != nil {
			p.logger.Error("background task panicked", "panic", recovered.Value, "stack", string(recovered.Stack))
		}
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		p.logger.Warn("worker pool saturated, task dropped", "running", p.pool.Running(), "capacity", p.pool.Cap())
	}
	if err != nil {
		return fmt.Errorf("submit task to worker pool: %w", err)
	}
	return nil
}

// Running reports the number of tasks currently executing.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release waits up to timeout for running tasks before stopping the pool.
func (p *Pool) Release(timeout time.Duration) error {
	if timeout <= 0 {
		p.pool.Release()
		return nil
	}
	return p.pool.ReleaseTimeout(timeout)
}
