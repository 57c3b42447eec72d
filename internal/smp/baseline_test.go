package smp

import (
	"io"
	"log"
	"testing"
	"time"
)

func testBaseline(t *testing.T, cores int, quantum time.Duration) *Baseline {
	t.Helper()
	b := New(cores, quantum, 0xABCDEF, log.New(io.Discard, "", 0))
	b.Start()
	t.Cleanup(b.Stop)
	return b
}

func TestCreateProcess_PlacesOnLeastLoaded(t *testing.T) {
	b := testBaseline(t, 4, time.Hour)

	seen := make(map[int]int)
	for i := 0; i < 8; i++ {
		pid := b.CreateProcess(5)
		if pid < 0 {
			t.Fatalf("CreateProcess returned %d", pid)
		}
		b.mu.Lock()
		core := b.processes[pid].CoreID
		b.mu.Unlock()
		seen[core]++
	}
	for core, count := range seen {
		if count != 2 {
			t.Errorf("core %d got %d processes, want 2 (even spread)", core, count)
		}
	}
}

func TestCreateProcess_ChargesContentionCounters(t *testing.T) {
	b := testBaseline(t, 2, time.Hour)

	before := b.GetStatistics().LockContentions
	b.CreateProcess(5)
	after := b.GetStatistics().LockContentions

	if after <= before {
		t.Errorf("LockContentions did not increase: before=%d after=%d", before, after)
	}
}

func TestStop_JoinsWorkersPromptly(t *testing.T) {
	b := New(4, 5*time.Millisecond, 1, log.New(io.Discard, "", 0))
	b.Start()

	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return within the bounded wall-clock budget")
	}
}

func TestTick_DrainsTerminatedProcesses(t *testing.T) {
	b := testBaseline(t, 1, 5*time.Millisecond)

	for i := 0; i < 20; i++ {
		b.CreateProcess(5)
	}

	time.Sleep(1500 * time.Millisecond)

	remaining := b.GetStatistics().CurrentLoad
	if remaining > 10 {
		t.Fatalf("expected most processes to have drained, %d of 20 remain", remaining)
	}
}
