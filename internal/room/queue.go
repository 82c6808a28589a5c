package room

import "sync"

// CommandQueue is the one genuinely multi-writer structure per room: many
// command-intake callers enqueue concurrently, the scheduler drains it
// alone at the top of each tick (§4.F, §5).
type CommandQueue struct {
	mu   sync.Mutex
	cmds []Command
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

func (q *CommandQueue) Enqueue(c Command) {
	q.mu.Lock()
	q.cmds = append(q.cmds, c)
	q.mu.Unlock()
}

// Drain removes and returns all queued commands in FIFO order.
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.cmds) == 0 {
		return nil
	}
	out := q.cmds
	q.cmds = nil
	return out
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}
