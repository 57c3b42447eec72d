// Package smp implements the SMP baseline: the same create/schedule/
// terminate workload as the kernel package, but run by N workers sharing one
// process table under one global lock. It exists to make the multikernel's
// shared-nothing design falsifiable rather than asserted — every operation
// pays for the lock, deliberately left unoptimized so the contrast with the
// per-core design stays honest.
//
// The shape borrows internal/ratelimit's single mutex-guarded struct from
// the teacher codebase, scaled up to a shared table instead of one counter.
package smp

import (
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ssd-technologies/multikernel/internal/message"
)

// Baseline is the coarse-grained, single-lock contrast implementation.
type Baseline struct {
	cores   int
	quantum time.Duration
	log     *log.Logger

	mu        sync.Mutex // the one global lock; every operation below acquires it
	processes map[int]*message.PCB
	nextPID   int
	rng       *rand.Rand

	lockContentions    atomic.Uint64
	cacheInvalidations atomic.Uint64
	processesExecuted  atomic.Uint64
	contextSwitches    atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
}

// New builds a Baseline for the given number of cores. seed makes the
// termination policy reproducible across runs, the same reproducibility
// guarantee the multikernel side gets from per-core seeding, even though the
// baseline shares one RNG instead of one per core — sharing is deliberate
// here, it is one more lock acquisition to charge to contention, not a
// correctness concern.
func New(cores int, quantum time.Duration, seed uint64, out *log.Logger) *Baseline {
	return &Baseline{
		cores:     cores,
		quantum:   quantum,
		log:       log.New(out.Writer(), "[SMP] ", out.Flags()),
		processes: make(map[int]*message.PCB),
		rng:       rand.New(rand.NewPCG(seed, seed^0x2545F4914F6CDD1D)),
		stopCh:    make(chan struct{}),
	}
}

// Start launches one worker per core, each ticking the shared table under
// the global lock.
func (b *Baseline) Start() {
	b.log.Printf("starting %d workers over one shared table", b.cores)
	b.running.Store(true)
	for core := 0; core < b.cores; core++ {
		b.wg.Add(1)
		go b.workerLoop(core)
	}
}

// Stop signals every worker to exit and waits for them to join.
func (b *Baseline) Stop() {
	b.stopOnce.Do(func() {
		b.running.Store(false)
		close(b.stopCh)
	})
	b.wg.Wait()
}

// CreateProcess places a new process on the least-loaded core, scanning the
// shared table under the global lock — the same least-loaded selection as
// the multikernel side, just over a shared table instead of independent
// per-core counts. Every call is charged as a lock acquisition and a cache
// invalidation.
func (b *Baseline) CreateProcess(priority int) int {
	if !b.running.Load() {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lockContentions.Add(1)
	b.cacheInvalidations.Add(1)

	core := b.leastLoadedLocked()
	pid := b.nextPID
	b.nextPID++
	pcb := message.NewPCB(pid, core, priority)
	b.processes[pid] = &pcb
	return pid
}

// leastLoadedLocked scans the shared table for the core with the fewest
// PCBs. Callers must already hold mu.
func (b *Baseline) leastLoadedLocked() int {
	counts := make([]int, b.cores)
	for _, pcb := range b.processes {
		counts[pcb.CoreID]++
	}
	best := 0
	for i := 1; i < b.cores; i++ {
		if counts[i] < counts[best] {
			best = i
		}
	}
	return best
}

// workerLoop is the per-core tick loop. Every tick acquires the single
// global lock to run its scheduler pass, charging one lock contention and
// one cache invalidation regardless of whether any other worker was
// actually waiting — the counters are meant to reflect every acquire, not
// just contended ones.
func (b *Baseline) workerLoop(core int) {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		b.tick(core)

		select {
		case <-b.stopCh:
			return
		case <-time.After(b.quantum):
		}
	}
}

func (b *Baseline) tick(core int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lockContentions.Add(1)
	b.cacheInvalidations.Add(1)

	var terminated []int
	for pid, pcb := range b.processes {
		if pcb.CoreID != core {
			continue
		}
		if pcb.State == message.Ready || pcb.State == message.Running {
			pcb.State = message.Running
		}
		pcb.CPUTime += b.quantum
		b.processesExecuted.Add(1)
		b.contextSwitches.Add(1)

		if b.rng.Float64() < message.TerminationProbability(pcb.CPUTime) {
			pcb.State = message.Terminated
			terminated = append(terminated, pid)
		}
	}
	for _, pid := range terminated {
		delete(b.processes, pid)
	}
}
