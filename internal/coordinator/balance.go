package coordinator

import (
	"github.com/ssd-technologies/multikernel/internal/message"
)

// overloadFactor and underloadFactor are the 1.5x / 0.7x thresholds that
// classify a core as overloaded or underloaded relative to the mean.
const (
	overloadFactor  = 1.5
	underloadFactor = 0.7
)

// BalanceLoad computes the average load across cores and, for every
// overloaded core, migrates one process to an underloaded target. It never
// holds the balancer mutex while calling into an Agent — the mutex only
// scopes the selection pass, matching leastLoadedCore and the rule that no
// two of these locks are ever held simultaneously.
func (c *Coordinator) BalanceLoad() {
	loads := c.snapshotLoads()
	if len(loads) == 0 {
		return
	}

	var total int
	for _, l := range loads {
		total += l
	}
	avg := float64(total) / float64(len(loads))

	for core, load := range loads {
		if float64(load) <= overloadFactor*avg {
			continue
		}
		target, ok := c.findUnderloaded(loads, avg)
		if !ok {
			continue
		}
		pid, ok := c.agents[core].AnyProcess()
		if !ok {
			continue
		}
		c.lbLog.Printf("rebalancing: core %d (load %d, avg %.1f) -> core %d", core, load, avg, target)
		c.MigrateProcess(pid, core, target)
		loads[core]--
		loads[target]++
	}
}

// snapshotLoads reads every core's current_load once, outside the balancer
// mutex — these are independent atomic-backed reads, not a single critical
// section, so no lock is required to collect them; the snapshot may be
// slightly inconsistent across cores, which is fine for a balancing pass.
func (c *Coordinator) snapshotLoads() []int {
	loads := make([]int, len(c.agents))
	for i, a := range c.agents {
		loads[i] = a.GetStatistics().CurrentLoad
	}
	return loads
}

// findUnderloaded returns the first core with load < underloadFactor*avg
// (no core is excluded; an overloaded core is above the average and so never
// qualifies), using the given load snapshot rather than a fresh read
// so the overloaded/underloaded comparison is self-consistent within one
// BalanceLoad call.
func (c *Coordinator) findUnderloaded(loads []int, avg float64) (int, bool) {
	for i, l := range loads {
		if float64(l) < underloadFactor*avg {
			return i, true
		}
	}
	return 0, false
}

// HeartbeatFanout broadcasts a HEARTBEAT from core 0 to every other core.
// Returns N-1, the number of HEARTBEATs addressed, or 0 if not running; a
// HEARTBEAT rejected by a full inbox is not subtracted from that count.
func (c *Coordinator) HeartbeatFanout() int {
	if !c.running.Load() || len(c.agents) == 0 {
		return 0
	}
	c.agents[0].Broadcast(message.Heartbeat, -1, "")
	return len(c.agents) - 1
}

// ResourceDemo injects a RESOURCE_REQUEST from core 0 to core 1 and the
// matching RESOURCE_RELEASE back, exercising the transport for message
// types the core model only needs to count and dispatch.
func (c *Coordinator) ResourceDemo() {
	if !c.running.Load() || len(c.agents) < 2 {
		return
	}
	req := message.New(0, 1, message.ResourceRequest, -1, "resource=cpu_slice")
	c.agents[0].Send(req)
	rel := message.New(1, 0, message.ResourceRelease, -1, "resource=cpu_slice")
	c.agents[1].Send(rel)
}
