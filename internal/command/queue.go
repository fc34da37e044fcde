package command

import "sync"

// Queue is an unbounded FIFO of commands with a single consumer. Push never
// blocks, so the control reader is never stalled by a slow consumer.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Command
	closed bool
}

// NewQueue returns an empty open queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends cmd. Pushes after Close are dropped.
func (q *Queue) Push(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, cmd)
	q.cond.Signal()
}

// Pop blocks until a command is available or the queue is closed and
// drained. The boolean is false once no further command will arrive.
func (q *Queue) Pop() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Command{}, false
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Close stops accepting pushes and wakes the consumer. Commands already
// queued are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
