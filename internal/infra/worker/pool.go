// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Task is one photo conversion. It receives the pool context.
type Task func(ctx context.Context) error

// Pool runs tasks on a fixed number of workers with a bounded queue.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	once sync.Once
	n    int
	log  *zerolog.Logger
}

func NewPool(workers, queue int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = workers * 4
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{jobs: make(chan Task, queue), quit: make(chan struct{}), n: workers, log: &l}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					metrics.SetQueueDepth(len(p.jobs))
					p.run(ctx, id, task)
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncConversionJob("panic")
			p.log.Error().Int("worker", id).Str("panic", fmt.Sprint(r)).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		metrics.IncConversionJob("error")
		p.log.Debug().Err(err).Int("worker", id).Msg("task error")
		return
	}
	metrics.IncConversionJob("ok")
}

// Stop signals workers to exit and waits for running tasks. Queued tasks are dropped.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit queues task. It never blocks: a full queue returns domain.ErrBusy.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return fmt.Errorf("%w: pool stopped", domain.ErrBusy)
	default:
	}
	select {
	case p.jobs <- task:
		metrics.SetQueueDepth(len(p.jobs))
		return nil
	default:
		metrics.IncConversionJob("rejected")
		return fmt.Errorf("%w: worker queue full", domain.ErrBusy)
	}
}
