package kernel

import (
	"testing"
	"time"
)

// TestSchedulerPass_CurrentLoadMatchesTableSize exercises invariant 3 (§8):
// current_load must equal the PCB table size at the end of every pass.
func TestSchedulerPass_CurrentLoadMatchesTableSize(t *testing.T) {
	agents, _ := newTestAgents(t, 1, 10*time.Millisecond)
	defer stopAll(agents)

	a := agents[0]
	for i := 0; i < 5; i++ {
		a.CreateLocalProcess(5)
	}

	time.Sleep(50 * time.Millisecond)

	a.mu.Lock()
	load := a.currentLoad
	tableSize := len(a.processes)
	a.mu.Unlock()

	if load != tableSize {
		t.Fatalf("current_load=%d, table size=%d, want equal", load, tableSize)
	}
}

// TestSchedulerPass_StochasticDrainage is S5 scaled down: given enough
// scheduler passes, long-lived processes should trend toward termination.
func TestSchedulerPass_StochasticDrainage(t *testing.T) {
	agents, _ := newTestAgents(t, 1, 5*time.Millisecond)
	defer stopAll(agents)

	a := agents[0]
	for i := 0; i < 50; i++ {
		a.CreateLocalProcess(5)
	}

	time.Sleep(1500 * time.Millisecond)

	remaining := a.GetStatistics().CurrentLoad
	if remaining > 25 {
		t.Fatalf("expected most processes to have drained, %d of 50 remain", remaining)
	}
}

func TestAnyProcess_EmptyTable(t *testing.T) {
	agents, _ := newTestAgents(t, 1, time.Hour)
	defer stopAll(agents)

	if _, ok := agents[0].AnyProcess(); ok {
		t.Fatal("AnyProcess on an empty table should return false")
	}
}
