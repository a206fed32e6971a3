// fixed worker pool w round robin routing and sticky handles
package concurrent

import (
	"runtime"
	"sync"
)

// Task is one unit of work for a worker
type Task interface {
	Perform()
}

// Worker owns one task queue and one goroutine
type Worker struct {
	queue *Queue[Task]
}

// AssignTask targets this worker directly, used to keep a connection
// on the worker it was first dispatched to
func (w *Worker) AssignTask(t Task) bool {
	return w.queue.Send(t)
}

// run consumes tasks until receiving is stopped
func (w *Worker) run() {
	for {
		t, err := w.queue.Receive()
		if err != nil {
			return
		}
		w.perform(t)
	}
}

// a panicking task must not tear down the worker, the next receive proceeds
func (w *Worker) perform(t Task) {
	defer func() {
		recover()
	}()
	t.Perform()
}

// Pool routes tasks round robin over a fixed set of workers
type Pool struct {
	workers []*Worker
	next    int
	wg      sync.WaitGroup
}

// DefaultPoolSize overcommits the cpu for an io bound workload,
// ~50ms waiting on disk and socket per ~5ms of cpu
func DefaultPoolSize() int {
	return max(1, runtime.NumCPU()) * (1 + 50/5)
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{}
	for range size {
		p.workers = append(p.workers, &Worker{queue: NewQueue[Task](0)})
	}
	return p
}

func (p *Pool) Size() int {
	return len(p.workers)
}

// Start spawns one goroutine per worker
func (p *Pool) Start() {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.run()
		}(w)
	}
}

// SubmitTask picks the next worker and returns it so the caller can
// pin later tasks to the same one
func (p *Pool) SubmitTask(t Task) *Worker {
	w := p.workers[p.next]
	w.AssignTask(t)
	p.next = (p.next + 1) % len(p.workers)
	return w
}

// Quit stops every queue, tasks already dequeued still finish
func (p *Pool) Quit() {
	for _, w := range p.workers {
		w.queue.StopReceiving()
	}
}

// Wait joins every worker goroutine
func (p *Pool) Wait() {
	p.wg.Wait()
}
