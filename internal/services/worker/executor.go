package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// Executor runs blocking work on behalf of a caller.
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pool runs each job on its own goroutine with at most size jobs in flight.
//
// A caller whose context ends stops waiting and gets ctx.Err(); the job keeps
// running to completion and its result is dropped.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

func (p *Pool) Size() int {
	return int(p.size)
}

func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				utils.LogError(ctx, "Worker job panicked", fmt.Errorf("panic: %v", r))
				done <- fmt.Errorf("worker job panicked: %v", r)
			}
		}()
		// The job gets a context that outlives the caller's cancellation.
		done <- fn(context.WithoutCancel(ctx))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		utils.LogWarn(ctx, "Caller stopped waiting for worker job", utils.Fields{
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}
}

// Inline runs jobs synchronously on the caller's goroutine.
type Inline struct{}

func (Inline) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
