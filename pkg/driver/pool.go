package driver

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"bemjs/pkg/compiler"
	"bemjs/pkg/errors"
)

// CheckResult is the outcome of compiling one file.
type CheckResult struct {
	Path     string
	Unit     *compiler.Unit
	Errors   []errors.ScriptError
	WorkerID int
	Duration time.Duration

	index int
}

// PoolStats counts the work a compile pool has done.
type PoolStats struct {
	WorkerCount   int
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	ActiveJobs    int
	TotalTime     time.Duration
}

// compilePool compiles files on a fixed set of goroutines. Each worker owns
// its compiler; units are immutable and safe to hand across goroutines.
type compilePool struct {
	numWorkers int
	encoding   string
	opts       compiler.Options

	jobQueue   chan checkJob
	resultChan chan *CheckResult
	wg         sync.WaitGroup

	started    int32 // atomic
	activeJobs int32 // atomic

	stats      PoolStats
	statsMutex sync.Mutex
}

type checkJob struct {
	index int
	path  string
}

type compileWorker struct {
	id       int
	pool     *compilePool
	compiler *compiler.Compiler
}

func newCompilePool(numWorkers int, encoding string, opts compiler.Options) *compilePool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &compilePool{numWorkers: numWorkers, encoding: encoding, opts: opts}
}

func (p *compilePool) start(ctx context.Context, jobs int) error {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return fmt.Errorf("compile pool already started")
	}
	p.jobQueue = make(chan checkJob, jobs)
	p.resultChan = make(chan *CheckResult, jobs)
	p.stats.WorkerCount = p.numWorkers
	for i := 0; i < p.numWorkers; i++ {
		w := &compileWorker{id: i, pool: p, compiler: compiler.New(p.opts)}
		p.wg.Add(1)
		go w.run(ctx)
	}
	return nil
}

func (p *compilePool) submit(ctx context.Context, job checkJob) error {
	select {
	case p.jobQueue <- job:
		atomic.AddInt32(&p.activeJobs, 1)
		p.statsMutex.Lock()
		p.stats.TotalJobs++
		p.statsMutex.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shutdown stops accepting jobs and closes the result channel once every
// worker has returned.
func (p *compilePool) shutdown() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		close(p.resultChan)
	}()
}

func (p *compilePool) getStats() PoolStats {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	stats := p.stats
	stats.ActiveJobs = int(atomic.LoadInt32(&p.activeJobs))
	return stats
}

func (w *compileWorker) run(ctx context.Context) {
	defer w.pool.wg.Done()
	for {
		select {
		case job, ok := <-w.pool.jobQueue:
			if !ok {
				return
			}
			result := w.process(job)

			w.pool.statsMutex.Lock()
			if len(result.Errors) == 0 {
				w.pool.stats.CompletedJobs++
			} else {
				w.pool.stats.FailedJobs++
			}
			w.pool.stats.TotalTime += result.Duration
			w.pool.statsMutex.Unlock()
			atomic.AddInt32(&w.pool.activeJobs, -1)

			select {
			case w.pool.resultChan <- result:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (w *compileWorker) process(job checkJob) *CheckResult {
	start := time.Now()
	result := &CheckResult{Path: job.path, WorkerID: w.id, index: job.index}
	src, err := readSource(job.path, w.pool.encoding)
	if err != nil {
		result.Errors = []errors.ScriptError{errors.AsScriptError(err)}
	} else if program, errs := parse(src); len(errs) > 0 {
		result.Errors = errs
	} else {
		result.Unit, result.Errors = compileProgram(w.compiler, program)
	}
	result.Duration = time.Since(start)
	return result
}

// CheckFiles compiles every file without running it, on up to workers
// goroutines (0 means one per CPU). Results come back in the order of
// paths. A cancelled context leaves the unfinished entries with a nil
// Unit and no errors, and returns the context error.
func CheckFiles(ctx context.Context, paths []string, encoding string, opts compiler.Options, workers int) ([]*CheckResult, PoolStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, PoolStats{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if workers > len(paths) {
		workers = len(paths)
	}
	pool := newCompilePool(workers, encoding, opts)
	if err := pool.start(ctx, len(paths)); err != nil {
		return nil, PoolStats{}, err
	}

	results := make([]*CheckResult, len(paths))
	for i, path := range paths {
		results[i] = &CheckResult{Path: path, index: i}
	}
	var submitErr error
	for i, path := range paths {
		if err := pool.submit(ctx, checkJob{index: i, path: path}); err != nil {
			submitErr = err
			break
		}
	}
	pool.shutdown()

	for {
		select {
		case result, ok := <-pool.resultChan:
			if !ok {
				return results, pool.getStats(), submitErr
			}
			results[result.index] = result
		case <-ctx.Done():
			return results, pool.getStats(), ctx.Err()
		}
	}
}
