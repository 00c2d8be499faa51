// Package worker 提供基于 ants 的协程池。
//
// 所有并发扇出都走 Pool.Each：每个任务写自己的结果槽位，调用方在 Each 返回后统一合并。
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrPoolClosed 池已释放后仍提交任务。
var ErrPoolClosed = errors.New("worker pool is closed")

type Pool struct {
	pool *ants.Pool
	name string
	log  *zap.Logger
}

// DefaultSize min(8, CPU 核数)。
func DefaultSize() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

func New(name string, size int, log *zap.Logger) (*Pool, error) {
	if size <= 0 {
		size = DefaultSize()
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{name: name, log: log}
	panicHandler := func(v interface{}) {
		log.Error("worker panic recovered",
			zap.String("pool", name),
			zap.Any("panic", v),
			zap.Stack("stack"),
		)
	}
	ap, err := ants.NewPool(size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	p.pool = ap
	return p, nil
}

func (p *Pool) submit(fn func()) error {
	err := p.pool.Submit(fn)
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Each 对 [0,n) 中每个下标执行 fn 并等待全部完成。
// ctx 取消后尚未开始的任务被跳过，返回 ctx.Err()。
func (p *Pool) Each(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	var wg sync.WaitGroup
	var submitErr error
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		idx := i
		wg.Add(1)
		err := p.submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				p.log.Debug("task skipped: context cancelled", zap.String("pool", p.name), zap.Int("index", idx))
				return
			}
			fn(ctx, idx)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return submitErr
	}
	return ctx.Err()
}

// Release 等待运行中的任务结束后释放池。
func (p *Pool) Release() {
	if err := p.pool.ReleaseTimeout(30 * time.Second); err != nil {
		p.log.Warn("worker pool release timeout", zap.String("pool", p.name), zap.Error(err))
	}
}

func (p *Pool) Cap() int {
	return p.pool.Cap()
}

func (p *Pool) Metrics() map[string]int {
	return map[string]int{
		"running": p.pool.Running(),
		"free":    p.pool.Free(),
		"cap":     p.pool.Cap(),
	}
}
