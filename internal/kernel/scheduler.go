package kernel

import (
	"github.com/ssd-technologies/multikernel/internal/message"
)

// schedulerPass runs one cycle of the scheduler: promote, charge the
// quantum, roll the termination policy, then sweep terminated PCBs so
// current_load always equals the resulting table size.
func (a *Agent) schedulerPass() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, pcb := range a.processes {
		if pcb.State == message.Ready || pcb.State == message.Running {
			pcb.State = message.Running
		}

		pcb.CPUTime += a.quantum
		a.executed.Add(1)
		a.switches.Add(1)

		if a.rng.Float64() < message.TerminationProbability(pcb.CPUTime) {
			pcb.State = message.Terminated
		}
	}

	for pid, pcb := range a.processes {
		if pcb.State == message.Terminated {
			delete(a.processes, pid)
		}
	}
	a.currentLoad = len(a.processes)
}

// AnyProcess returns an arbitrary pid from this agent's table, used by the
// coordinator's load balancer to pick a migration candidate. Map iteration
// order is unspecified, which is fine here: the balancer only needs *a*
// process to move, not a specific one.
func (a *Agent) AnyProcess() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for pid := range a.processes {
		return pid, true
	}
	return 0, false
}

// HasProcess reports whether pid is present in this agent's table right now.
// Exported for tests (and scenario drivers) that need to assert placement
// without reaching into package internals.
func (a *Agent) HasProcess(pid int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.processes[pid]
	return ok
}
