package kernel

import (
	"testing"
	"time"
)

func TestRoutingTable_PeerBounds(t *testing.T) {
	agents, _ := newTestAgents(t, 3, time.Hour)
	defer stopAll(agents)

	table := NewRoutingTable(agents)
	if _, ok := table.Peer(-1); ok {
		t.Error("Peer(-1) should be false")
	}
	if _, ok := table.Peer(3); ok {
		t.Error("Peer(3) should be false for a 3-agent table")
	}
	peer, ok := table.Peer(1)
	if !ok || peer.ID() != 1 {
		t.Errorf("Peer(1) = %v, ok=%v, want agent 1", peer, ok)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
}

func TestRoutingTable_NilSafe(t *testing.T) {
	var table *RoutingTable
	if _, ok := table.Peer(0); ok {
		t.Error("Peer on a nil table should be false")
	}
	if table.Len() != 0 {
		t.Error("Len on a nil table should be 0")
	}
}
