package session

import (
	"sync"
	"time"
)

// Replier holds at most one pending delayed task per key. Scheduling a new
// task for a key replaces the old one.
//
// A timer that already fired can race with Cancel, so the fired callback
// must Claim its id before acting; Claim fails for a replaced or cancelled
// task.
type Replier struct {
	mu      sync.Mutex
	pending map[string]*pendingTask
	nextID  uint64
}

type pendingTask struct {
	id    uint64
	timer *time.Timer
}

func NewReplier() *Replier {
	return &Replier{pending: make(map[string]*pendingTask)}
}

// Schedule runs fire(id) after delay, cancelling any task pending for key.
func (r *Replier) Schedule(key string, delay time.Duration, fire func(id uint64)) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.pending[key]; ok {
		old.timer.Stop()
	}
	r.nextID++
	id := r.nextID
	r.pending[key] = &pendingTask{
		id:    id,
		timer: time.AfterFunc(delay, func() { fire(id) }),
	}
	return id
}

// Claim removes the task for key if id is still the pending one.
func (r *Replier) Claim(key string, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.pending[key]
	if !ok || task.id != id {
		return false
	}
	delete(r.pending, key)
	return true
}

// Cancel drops the task pending for key and reports whether there was one.
func (r *Replier) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.pending[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(r.pending, key)
	return true
}

// CancelAll drops every pending task.
func (r *Replier) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, task := range r.pending {
		task.timer.Stop()
		delete(r.pending, key)
	}
}

// Pending reports whether a task is waiting for key.
func (r *Replier) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}
