package crawler

import (
	"sync"

	"github.com/nao1215/webcrawl/internal/model"
)

// Frontier is a LIFO stack of pending tasks shared by the workers.
// It tracks tasks that have been popped but not yet finished, so that
// workers wait for new tasks instead of exiting while a sibling may still
// push children.
type Frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	stack    []model.CrawlTask
	inflight int
	closed   bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	f := &Frontier{stack: make([]model.CrawlTask, 0)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push adds tasks so that the first task is popped first.
func (f *Frontier) Push(tasks ...model.CrawlTask) {
	if len(tasks) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(tasks) - 1; i >= 0; i-- {
		f.stack = append(f.stack, tasks[i])
	}
	f.cond.Broadcast()
}

// Pop removes the most recently pushed task. It blocks while the stack is
// empty and other tasks are in flight. ok is false once the frontier is
// exhausted or closed. Every successful Pop must be followed by Done.
func (f *Frontier) Pop() (task model.CrawlTask, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.stack) == 0 && f.inflight > 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed || len(f.stack) == 0 {
		return model.CrawlTask{}, false
	}

	last := len(f.stack) - 1
	task = f.stack[last]
	f.stack = f.stack[:last]
	f.inflight++
	return task, true
}

// Done marks a popped task as finished.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	if f.inflight == 0 && len(f.stack) == 0 {
		f.cond.Broadcast()
	}
}

// Close wakes all waiting workers and makes further Pops fail.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// Len returns the number of pending tasks.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}
