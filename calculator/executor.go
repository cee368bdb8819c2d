package calculator

import (
	"sync"
	"time"
)

type task struct {
	start int
	end   int
	f     func(start, end int) error
}

type job struct {
	n int
	f func(start, end int) error
}

// executor splits the capsule columns [0, n) into tasks and runs them on a
// fixed set of workers. The master waits for every task before reporting.
type executor struct {
	workers int

	dispatchChan chan task
	doneSoFar    chan error
	start        chan job
	finish       chan error
	quit         chan struct{}

	wg   sync.WaitGroup
	once sync.Once
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	// split never yields more than 3*workers tasks
	return &executor{
		workers:      workers,
		dispatchChan: make(chan task, 3*workers),
		doneSoFar:    make(chan error, 3*workers),
		start:        make(chan job),
		finish:       make(chan error),
		quit:         make(chan struct{}),
	}
}

func (e *executor) run() {
	e.wg.Add(1 + e.workers)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case j := <-e.start:
				tasks := split(j.n, e.workers)
				for _, t := range tasks {
					t.f = j.f
					e.dispatchChan <- t
				}
				var first error
				for range tasks {
					if err := <-e.doneSoFar; err != nil && first == nil {
						first = err
					}
				}
				e.finish <- first
			case <-e.quit:
				return
			}
		}
	}()

	for i := 0; i < e.workers; i++ {
		go func() {
			defer e.wg.Done()
			for {
				select {
				case t := <-e.dispatchChan:
					e.doneSoFar <- t.f(t.start, t.end)
				case <-e.quit:
					return
				}
			}
		}()
	}
}

// dispatchTask runs f over [0, n) and blocks until every task is done.
func (e *executor) dispatchTask(n int, f func(start, end int) error) (time.Duration, error) {
	start := time.Now()
	if n <= 0 {
		return 0, nil
	}
	e.start <- job{n: n, f: f}
	err := <-e.finish
	return time.Since(start), err
}

func (e *executor) close() {
	e.once.Do(func() {
		close(e.quit)
		e.wg.Wait()
	})
}

// split divides [0, total) among the workers. Each worker gets its share as
// two halves, and the remainder is handed out one item at a time.
func split(total, workers int) []task {
	if total <= 0 {
		return nil
	}
	taskLen, remainder := total/workers, total%workers
	tasks := make([]task, 0, 2*workers+remainder)
	start := 0
	if taskLen == 1 {
		for start < total-remainder {
			tasks = append(tasks, task{start: start, end: start + 1})
			start++
		}
	} else if taskLen > 1 {
		half1 := taskLen / 2
		half2 := taskLen - half1
		for start < total-remainder {
			tasks = append(tasks, task{start: start, end: start + half1})
			start += half1
			tasks = append(tasks, task{start: start, end: start + half2})
			start += half2
		}
	}
	for i := 0; i < remainder; i++ {
		tasks = append(tasks, task{start: start, end: start + 1})
		start++
	}
	return tasks
}
