package inbox

import (
	"testing"
	"time"

	"github.com/ssd-technologies/multikernel/internal/message"
)

func TestPush_AcceptsUpToCapacity(t *testing.T) {
	ib := New(2)
	if r := ib.Push(message.New(0, 0, message.Heartbeat, -1, "")); r != Accepted {
		t.Fatalf("1st push = %s, want Accepted", r)
	}
	if r := ib.Push(message.New(0, 0, message.Heartbeat, -1, "")); r != Accepted {
		t.Fatalf("2nd push = %s, want Accepted", r)
	}
	if r := ib.Push(message.New(0, 0, message.Heartbeat, -1, "")); r != RejectedFull {
		t.Fatalf("3rd push = %s, want Rejected(Full)", r)
	}
}

func TestPush_NeverBlocksWhenFull(t *testing.T) {
	ib := New(1)
	ib.Push(message.New(0, 0, message.Heartbeat, -1, ""))
	done := make(chan struct{})
	go func() {
		ib.Push(message.New(0, 0, message.Heartbeat, -1, ""))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked on a full queue")
	}
}

func TestPopNonblocking_FIFO(t *testing.T) {
	ib := New(10)
	ib.Push(message.New(0, 0, message.Create, 1, ""))
	ib.Push(message.New(0, 0, message.Create, 2, ""))

	m1, ok := ib.PopNonblocking()
	if !ok || m1.ProcessID != 1 {
		t.Fatalf("first pop = %+v, ok=%v, want pid 1", m1, ok)
	}
	m2, ok := ib.PopNonblocking()
	if !ok || m2.ProcessID != 2 {
		t.Fatalf("second pop = %+v, ok=%v, want pid 2", m2, ok)
	}
	if _, ok := ib.PopNonblocking(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestPopBlocking_ReturnsOnPush(t *testing.T) {
	ib := New(10)
	go func() {
		time.Sleep(20 * time.Millisecond)
		ib.Push(message.New(0, 0, message.Create, 9, ""))
	}()

	m, ok := ib.PopBlocking(time.Second)
	if !ok || m.ProcessID != 9 {
		t.Fatalf("PopBlocking = %+v, ok=%v, want pid 9", m, ok)
	}
}

func TestPopBlocking_TimesOut(t *testing.T) {
	ib := New(10)
	start := time.Now()
	_, ok := ib.PopBlocking(30 * time.Millisecond)
	if ok {
		t.Fatal("expected timeout on empty queue")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("PopBlocking took far longer than its timeout")
	}
}

func TestWakeAll_UnblocksConsumer(t *testing.T) {
	ib := New(10)
	done := make(chan struct{})
	go func() {
		ib.PopBlocking(5 * time.Second)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	ib.WakeAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WakeAll did not unblock a waiting consumer")
	}
}

func TestCapacity_ZeroBecomesOne(t *testing.T) {
	ib := New(0)
	if ib.Capacity() != 1 {
		t.Errorf("Capacity() = %d, want 1", ib.Capacity())
	}
}
