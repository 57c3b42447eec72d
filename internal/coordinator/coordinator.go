// Package coordinator implements the system coordinator: lifecycle of the N
// agents, load-aware placement, rebalancing, and aggregate reporting. It
// plays the thin-controller role a node tracker plays for shard assignment
// in a distributed system — its least-loaded-core selection is the same
// "scan for minimum used, take it" pattern, just scanning Agent load instead
// of node storage.
package coordinator

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ssd-technologies/multikernel/internal/config"
	"github.com/ssd-technologies/multikernel/internal/history"
	"github.com/ssd-technologies/multikernel/internal/kernel"
	"github.com/ssd-technologies/multikernel/internal/message"
)

// Coordinator owns every Agent in the system and is the only component
// allowed to build the routing table.
type Coordinator struct {
	cfg    config.Config
	agents []*kernel.Agent
	table  *kernel.RoutingTable
	pids   atomic.Uint64

	sysLog *log.Logger // tagged "[SYSTEM] "
	lbLog  *log.Logger // tagged "[LOAD BALANCER] "

	balancer sync.Mutex // scopes placement selection and rebalance only

	history *history.Store // optional; nil unless WithHistory is called

	startOnce sync.Once
	stopOnce  sync.Once
	running   atomic.Bool
}

// New builds N agents from cfg but does not start them. masterSeed derives
// every agent's private RNG; out is the shared writer every component's
// tagged logger derives from, so every component's log lines interleave on
// one stream the way a single process log would.
func New(cfg config.Config, masterSeed []byte, out *log.Logger) *Coordinator {
	c := &Coordinator{
		cfg:    cfg,
		sysLog: log.New(out.Writer(), "[SYSTEM] ", out.Flags()),
		lbLog:  log.New(out.Writer(), "[LOAD BALANCER] ", out.Flags()),
	}

	msgLog := log.New(out.Writer(), "", out.Flags())
	c.agents = make([]*kernel.Agent, cfg.Cores)
	for i := 0; i < cfg.Cores; i++ {
		c.agents[i] = kernel.NewAgent(i, cfg.Quantum, &c.pids, masterSeed, msgLog).
			WithInboxCapacity(cfg.InboxCapacity)
	}
	return c
}

// Start builds the routing table, hands it to every agent, then starts every
// agent's worker. The two-pass order is a hard requirement: no agent may be
// started — and so no agent may send — before every peer exists in the
// table.
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		c.sysLog.Printf("bringing up %d cores", c.cfg.Cores)
		c.table = kernel.NewRoutingTable(c.agents)
		for _, a := range c.agents {
			a.Start(c.table)
		}
		c.running.Store(true)
		c.sysLog.Printf("all cores started")
	})
}

// Shutdown enqueues a SHUTDOWN message to every agent, then stops each.
// Idempotent.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() {
		c.sysLog.Printf("shutdown requested")
		c.running.Store(false)
		for _, a := range c.agents {
			msg := message.New(message.SystemOrigin, a.ID(), message.Shutdown, -1, "")
			a.Inbox().Push(msg)
		}
		for _, a := range c.agents {
			a.Stop()
		}
		c.sysLog.Printf("all cores stopped")
	})
}

// IsRunning reports whether Start has completed and Shutdown has not.
func (c *Coordinator) IsRunning() bool { return c.running.Load() }

// WithHistory attaches a run-history store. Once attached, SaveRunSnapshot
// persists the current aggregate counters under label, and RunHistory reads
// them back. Must be called before Start; returns the coordinator for
// chaining, matching WithInboxCapacity's style on Agent.
func (c *Coordinator) WithHistory(store *history.Store) *Coordinator {
	c.history = store
	return c
}

// SaveRunSnapshot persists the coordinator's current aggregate statistics
// under label. Returns an error if no store was attached via WithHistory.
func (c *Coordinator) SaveRunSnapshot(label string) (history.Run, error) {
	if c.history == nil {
		return history.Run{}, fmt.Errorf("coordinator: no history store attached")
	}
	return c.history.SaveRun(label, c.GetStatistics())
}

// RunHistory returns the most recent limit runs previously saved under label,
// newest first. Returns an error if no store was attached via WithHistory.
func (c *Coordinator) RunHistory(label string, limit int) ([]history.Run, error) {
	if c.history == nil {
		return nil, fmt.Errorf("coordinator: no history store attached")
	}
	return c.history.RecentRuns(label, limit)
}

// Cores returns N.
func (c *Coordinator) Cores() int { return len(c.agents) }

// CreateProcess places a new process on the least-loaded core and returns
// its pid, or -1 if the coordinator is not running.
func (c *Coordinator) CreateProcess(priority int) int {
	if !c.running.Load() {
		return -1
	}
	core := c.leastLoadedCore()
	pid := c.agents[core].CreateLocalProcess(priority)
	if pid >= 0 {
		c.sysLog.Printf("placed pid %d (priority %d) on core %d", pid, priority, core)
	}
	return pid
}

// MigrateProcess validates source/target and delegates to the source
// agent's MigrateProcess.
func (c *Coordinator) MigrateProcess(pid, source, target int) bool {
	if source < 0 || source >= len(c.agents) || target < 0 || target >= len(c.agents) {
		c.sysLog.Printf("ERROR: migrate_process with out-of-range core (source=%d target=%d)", source, target)
		return false
	}
	ok := c.agents[source].MigrateProcess(pid, target)
	if ok {
		c.sysLog.Printf("migrated pid %d: core %d -> core %d", pid, source, target)
	}
	return ok
}

// leastLoadedCore returns the index with the minimum current_load, ties
// broken by lowest index. The loads are read from the agents first; the
// balancer mutex scopes only the selection over that snapshot, so it is
// never held across a call into an Agent.
func (c *Coordinator) leastLoadedCore() int {
	loads := c.snapshotLoads()

	c.balancer.Lock()
	defer c.balancer.Unlock()

	best := 0
	for i := 1; i < len(loads); i++ {
		if loads[i] < loads[best] {
			best = i
		}
	}
	return best
}

// GetStatistics returns a snapshot of every core plus the derived system-wide
// counters.
func (c *Coordinator) GetStatistics() message.SystemStatistics {
	cores := make([]message.CoreStatistics, len(c.agents))
	for i, a := range c.agents {
		cores[i] = a.GetStatistics()
	}
	sent, received, executed := message.SystemStatistics{Cores: cores}.Totals()
	return message.SystemStatistics{
		Cores:           cores,
		CommOverheadPct: message.CommOverhead(sent, received, executed),
		DeliveryRatePct: message.DeliveryRate(sent, received),
	}
}

// GetCommOverheadPct returns comm_overhead_pct alone.
func (c *Coordinator) GetCommOverheadPct() float64 {
	return c.GetStatistics().CommOverheadPct
}

// String renders a short human summary, used by the scenario driver's final
// report.
func (c *Coordinator) String() string {
	stats := c.GetStatistics()
	sent, received, executed := stats.Totals()
	return fmt.Sprintf("cores=%d sent=%d received=%d executed=%d comm_overhead=%.2f%% delivery_rate=%.2f%%",
		len(c.agents), sent, received, executed, stats.CommOverheadPct, stats.DeliveryRatePct)
}
