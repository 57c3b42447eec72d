package kernel

// RoutingTable is the immutable, Coordinator-owned map from core id to Agent
// handle. It is built once, after every Agent exists
// but before any of them starts, and handed to each Agent as a shared
// read-only reference — the same "owner builds, readers share a pointer into
// the same backing array" shape internal/dht/table.go uses for its k-bucket
// table, flattened here to a plain indexed slice since placement in this
// domain is by load, not by XOR distance.
type RoutingTable struct {
	agents []*Agent
}

// NewRoutingTable wraps agents as a stable routing table. The caller must not
// mutate agents afterward; RoutingTable keeps the same backing array so every
// holder observes the identical set of peers for the table's lifetime.
func NewRoutingTable(agents []*Agent) *RoutingTable {
	return &RoutingTable{agents: agents}
}

// Peer returns the Agent for core, or false if core is out of range.
func (t *RoutingTable) Peer(core int) (*Agent, bool) {
	if t == nil || core < 0 || core >= len(t.agents) {
		return nil, false
	}
	return t.agents[core], true
}

// Len returns N, the number of cores in the table.
func (t *RoutingTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.agents)
}
