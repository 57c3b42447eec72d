package smp

// Statistics is the SMP baseline's contrast counters: the load, processes
// executed and context switches that the kernel package's CoreStatistics
// also tracks (system-wide here, not per core; there are no message or
// latency counters), plus the contention counters that exist only because
// this implementation shares one table under one lock.
type Statistics struct {
	Cores              int
	CurrentLoad        int
	ProcessesExecuted  uint64
	ContextSwitches    uint64
	LockContentions    uint64
	CacheInvalidations uint64
}

// GetStatistics returns a snapshot. CurrentLoad is read under the same
// global lock every other operation uses, so this call is itself charged as
// a lock acquisition.
func (b *Baseline) GetStatistics() Statistics {
	b.mu.Lock()
	load := len(b.processes)
	b.lockContentions.Add(1)
	b.cacheInvalidations.Add(1)
	b.mu.Unlock()

	return Statistics{
		Cores:              b.cores,
		CurrentLoad:        load,
		ProcessesExecuted:  b.processesExecuted.Load(),
		ContextSwitches:    b.contextSwitches.Load(),
		LockContentions:    b.lockContentions.Load(),
		CacheInvalidations: b.cacheInvalidations.Load(),
	}
}
