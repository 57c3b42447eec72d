// Package kernel implements the per-core kernel agent: the sole mutator of
// one core's process table, the sole consumer of its inbox, and the owner of
// one worker goroutine that drives the scheduler. It plays the role
// internal/dht.Node plays in the teacher codebase — tying together a
// transport-like queue, a local table, and a message dispatch loop — with
// Kademlia lookups replaced by the PCB lifecycle and scheduler pass this
// domain actually needs.
package kernel

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ssd-technologies/multikernel/internal/inbox"
	"github.com/ssd-technologies/multikernel/internal/message"
)

// latencyEWMAWeight is the smoothing factor for avg_message_latency_us. A
// single in-flight message's latency is noisy, so this tracks a moving
// average instead of the last observed sample.
const latencyEWMAWeight = 0.2

// Agent is one logical core's kernel instance.
type Agent struct {
	id      int
	inbox   *inbox.Inbox
	table   *RoutingTable
	pids    *atomic.Uint64
	quantum time.Duration
	rng     *rand.Rand

	log    *log.Logger // tagged "[Core N] "
	msgLog *log.Logger // untagged, emits the "[MSG] Core X → Core Y: TYPE" line

	mu          sync.Mutex
	processes   map[int]*message.PCB
	currentLoad int

	sent, received, executed, switches atomic.Uint64
	avgLatencyBits                     atomic.Uint64 // math.Float64bits of the EWMA sample

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   atomic.Bool
}

// NewAgent constructs Agent id. pids is the process-wide atomic pid counter
// shared by every agent; masterSeed derives this agent's private RNG for the
// stochastic termination policy.
func NewAgent(id int, quantum time.Duration, pids *atomic.Uint64, masterSeed []byte, out *log.Logger) *Agent {
	return &Agent{
		id:        id,
		inbox:     inbox.New(100),
		pids:      pids,
		quantum:   quantum,
		rng:       newAgentRNG(masterSeed, id),
		log:       log.New(out.Writer(), fmt.Sprintf("[Core %d] ", id), out.Flags()),
		msgLog:    out,
		processes: make(map[int]*message.PCB),
		stopCh:    make(chan struct{}),
	}
}

// WithInboxCapacity overrides the default inbox capacity (100). Must be
// called before Start.
func (a *Agent) WithInboxCapacity(capacity int) *Agent {
	a.inbox = inbox.New(capacity)
	return a
}

// ID returns this agent's core id.
func (a *Agent) ID() int { return a.id }

// Inbox exposes the agent's inbox so peers (via the routing table) can push
// messages to it. Nothing outside this package may pop from it.
func (a *Agent) Inbox() *inbox.Inbox { return a.inbox }

// IsRunning reports whether Start has been called and Stop has not.
func (a *Agent) IsRunning() bool { return a.running.Load() }

// Start spawns this agent's worker goroutine. Idempotent: a second call is a
// no-op. table must be fully populated with every agent in the system before
// any agent starts — starting agents one at a time as their peers come up
// risks a send racing a peer that isn't in the table yet.
func (a *Agent) Start(table *RoutingTable) {
	a.startOnce.Do(func() {
		a.table = table
		a.running.Store(true)
		a.log.Printf("starting")
		a.wg.Add(1)
		go a.run()
	})
}

// Stop clears the running flag, wakes a blocked consumer, and joins the
// worker. Idempotent.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		a.running.Store(false)
		close(a.stopCh)
		a.inbox.WakeAll()
	})
	a.wg.Wait()
}

// Send validates dest, looks up the peer via the routing table, and pushes
// msg to its inbox. It never panics on a full queue: back-pressure is
// reported to the log, not to the caller.
func (a *Agent) Send(msg message.Message) {
	peer, ok := a.table.Peer(msg.DestCore)
	if !ok {
		a.log.Printf("ERROR: dropped message to invalid core %d", msg.DestCore)
		return
	}
	result := peer.inbox.Push(msg)
	if result == inbox.RejectedFull {
		a.log.Printf("ERROR: inbox full on core %d, dropping %s", msg.DestCore, msg.Type)
		return
	}
	a.sent.Add(1)
	a.msgLog.Printf("[MSG] Core %d → Core %d: %s", msg.SourceCore, msg.DestCore, msg.Type)
}

// Broadcast sends one addressed copy of msg to every core but this one —
// there is no multicast primitive in the transport, so a broadcast is just
// N-1 individual sends.
func (a *Agent) Broadcast(typ message.Type, pid int, payload string) {
	for core := 0; core < a.table.Len(); core++ {
		if core == a.id {
			continue
		}
		msg := message.New(a.id, core, typ, pid, payload)
		a.Send(msg)
	}
}

// CreateLocalProcess allocates a new pid from the shared counter, appends a
// READY PCB to this agent's table, and increments current_load. Returns the
// new pid, or -1 if the agent is not running. Safe to call both from the
// coordinator's own thread (initial placement) and from this agent's own
// worker (a CREATE message handler) — the table is internally synchronized
// precisely so both paths are safe.
func (a *Agent) CreateLocalProcess(priority int) int {
	if !a.running.Load() {
		return -1
	}
	pid := int(a.pids.Add(1)) - 1

	a.mu.Lock()
	pcb := message.NewPCB(pid, a.id, priority)
	a.processes[pid] = &pcb
	a.currentLoad = len(a.processes)
	a.mu.Unlock()

	return pid
}

// adoptMigratedProcess installs a PCB for pid arriving via MIGRATE, as-is,
// with no renumbering. If pid already exists locally — which should only
// happen if a pid gets reused by two concurrent migrations racing each
// other — it is logged and overwritten rather than rejected, since a
// dropped MIGRATE would silently lose a process.
func (a *Agent) adoptMigratedProcess(pid, priority int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.processes[pid]; exists {
		a.log.Printf("WARNING: MIGRATE for pid %d overwrites an existing local PCB", pid)
	}
	pcb := message.NewPCB(pid, a.id, priority)
	a.processes[pid] = &pcb
	a.currentLoad = len(a.processes)
}

// MigrateProcess emits a MIGRATE message to target carrying pid's fields,
// then removes the local PCB. Returns false if pid is not known locally,
// which the caller treats as a no-op rather than an error. The
// enqueue-then-remove order is deliberate: a peer scanning both tables
// concurrently can observe the pid in neither table for a brief window, but
// never in both.
func (a *Agent) MigrateProcess(pid, target int) bool {
	a.mu.Lock()
	pcb, ok := a.processes[pid]
	if !ok {
		a.mu.Unlock()
		return false
	}
	priority := pcb.Priority
	a.mu.Unlock()

	msg := message.New(a.id, target, message.Migrate, pid, message.PriorityPayload(priority))
	a.Send(msg)

	a.mu.Lock()
	delete(a.processes, pid)
	a.currentLoad = len(a.processes)
	a.mu.Unlock()
	return true
}

// TerminateProcess removes pid's PCB if present. Unknown pids are silently
// ignored.
func (a *Agent) TerminateProcess(pid int) {
	a.mu.Lock()
	delete(a.processes, pid)
	a.currentLoad = len(a.processes)
	a.mu.Unlock()
}

// GetStatistics returns a snapshot of this agent's counters. The fields are
// read individually rather than under one lock spanning all of them, so a
// concurrent update can make two fields in the same snapshot describe
// slightly different instants — acceptable for a stats display, not for
// anything that needs a consistent point-in-time view.
func (a *Agent) GetStatistics() message.CoreStatistics {
	a.mu.Lock()
	load := a.currentLoad
	a.mu.Unlock()

	return message.CoreStatistics{
		CoreID:              a.id,
		MessagesSent:        a.sent.Load(),
		MessagesReceived:    a.received.Load(),
		ProcessesExecuted:   a.executed.Load(),
		ContextSwitches:     a.switches.Load(),
		AvgMessageLatencyUs: math.Float64frombits(a.avgLatencyBits.Load()),
		CurrentLoad:         load,
	}
}

// recordLatency folds a new latency sample into the EWMA. The first sample
// seeds the average outright.
func (a *Agent) recordLatency(sample time.Duration) {
	us := float64(sample.Microseconds())
	for {
		old := a.avgLatencyBits.Load()
		oldF := math.Float64frombits(old)
		var next float64
		if old == 0 {
			next = us
		} else {
			next = latencyEWMAWeight*us + (1-latencyEWMAWeight)*oldF
		}
		if a.avgLatencyBits.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}

// run is the worker loop: drain the inbox, dispatch each message, run one
// scheduler pass, then sleep for the quantum (interruptibly, so Stop doesn't
// have to wait out a full quantum to join).
func (a *Agent) run() {
	defer a.wg.Done()
	defer a.log.Printf("stopped")

	for {
		select {
		case <-a.stopCh:
			return
		default:
		}

		for {
			msg, ok := a.inbox.PopNonblocking()
			if !ok {
				break
			}
			if msg.Type == message.Shutdown {
				a.running.Store(false)
				return
			}
			a.dispatch(msg)
		}

		a.schedulerPass()

		select {
		case <-a.stopCh:
			return
		case <-time.After(a.quantum):
		}
	}
}
