package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStoreCreateGetDelete(t *testing.T) {
	st := NewStore(newTestGenerator(t), Options{}, time.Hour)
	defer st.Close()

	sess, err := st.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, ok := st.Get(sess.ID)
	if !ok || got != sess {
		t.Fatalf("Get(%s) = %v, %v; want the created session", sess.ID, got, ok)
	}
	if _, ok := st.Get("unknown"); ok {
		t.Error("Get(unknown) found a session")
	}

	other, _ := st.Create()
	if other.ID == sess.ID {
		t.Error("Create() reused a token")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}

	st.Delete(sess.ID)
	if _, ok := st.Get(sess.ID); ok {
		t.Error("Get() found a deleted session")
	}
	if _, err := sess.Posts(); !errors.Is(err, ErrClosed) {
		t.Errorf("deleted session Posts() error = %v, want ErrClosed", err)
	}
}

func TestStoreSweep(t *testing.T) {
	clock := &testClock{now: fixedNow}
	st := NewStore(newTestGenerator(t), Options{Now: clock.Now}, 30*time.Minute)
	defer st.Close()

	idle, _ := st.Create()
	active, _ := st.Create()

	clock.Advance(20 * time.Minute)
	st.Get(active.ID)
	clock.Advance(20 * time.Minute)

	if n := st.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, ok := st.Get(idle.ID); ok {
		t.Error("idle session survived Sweep")
	}
	if _, ok := st.Get(active.ID); !ok {
		t.Error("active session was swept")
	}
	if _, err := idle.Posts(); !errors.Is(err, ErrClosed) {
		t.Errorf("swept session Posts() error = %v, want ErrClosed", err)
	}
}

func TestStoreRunStopsWithContext(t *testing.T) {
	st := NewStore(newTestGenerator(t), Options{}, time.Hour)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
