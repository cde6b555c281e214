package presenter

import "sync"

// Queue is an unbounded, ordered Scheduler for UI loops whose own hand-off
// can block. Schedule never blocks; a single goroutine forwards queued
// functions to deliver in order.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewQueue starts a queue forwarding to deliver.
func NewQueue(deliver func(func())) *Queue {
	queue := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go queue.forward(deliver)
	return queue
}

// Schedule enqueues fn. Calls after Close are dropped.
func (queue *Queue) Schedule(fn func()) {
	queue.mu.Lock()
	if queue.closed {
		queue.mu.Unlock()
		return
	}
	queue.pending = append(queue.pending, fn)
	queue.mu.Unlock()

	select {
	case queue.wake <- struct{}{}:
	default:
	}
}

// Close stops forwarding. Pending functions are discarded.
func (queue *Queue) Close() {
	queue.mu.Lock()
	if queue.closed {
		queue.mu.Unlock()
		return
	}
	queue.closed = true
	queue.pending = nil
	queue.mu.Unlock()
	close(queue.done)
}

func (queue *Queue) forward(deliver func(func())) {
	for {
		select {
		case <-queue.done:
			return
		case <-queue.wake:
		}

		for {
			queue.mu.Lock()
			batch := queue.pending
			queue.pending = nil
			closed := queue.closed
			queue.mu.Unlock()
			if closed || len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				deliver(fn)
			}
		}
	}
}
