package message

import "time"

// State is the lifecycle state of a process control block.
type State string

const (
	Ready      State = "READY"
	Running    State = "RUNNING"
	Blocked    State = "BLOCKED"
	Terminated State = "TERMINATED"
)

// PCB is the per-process record owned by exactly one Agent at any instant.
// Pid is immutable once assigned; CoreID changes only via a MIGRATE
// handoff, never in place on the table that still references the old value.
type PCB struct {
	PID          int
	CoreID       int
	State        State
	Priority     int // 0..10, higher is more urgent; recorded but not consulted by the baseline scheduler
	CreationTime time.Time
	CPUTime      time.Duration
}

// NewPCB creates a READY PCB for pid on core, with the given priority and
// CreationTime stamped to now.
func NewPCB(pid, core, priority int) PCB {
	return PCB{
		PID:          pid,
		CoreID:       core,
		State:        Ready,
		Priority:     priority,
		CreationTime: time.Now(),
	}
}

// TerminationProbability implements the stochastic termination policy: the
// chance a PCB terminates on a given scheduler pass grows monotonically
// with its accumulated CPU time. Both the kernel package's
// per-core scheduler and the smp package's baseline scheduler apply this
// same policy to the same workload — only the coordination mechanism around
// it differs between the two.
func TerminationProbability(cpuTime time.Duration) float64 {
	switch {
	case cpuTime > 600*time.Millisecond:
		return 0.8
	case cpuTime > 300*time.Millisecond:
		return 0.5
	case cpuTime > 150*time.Millisecond:
		return 0.3
	default:
		return 0.2
	}
}
