package message

import "testing"

func TestNew_SetsTraceIDAndTimestamp(t *testing.T) {
	m := New(0, 1, Create, 42, "priority=5")
	if m.TraceID == "" {
		t.Error("TraceID should not be empty")
	}
	if m.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if m.SourceCore != 0 || m.DestCore != 1 {
		t.Errorf("SourceCore/DestCore = %d/%d, want 0/1", m.SourceCore, m.DestCore)
	}
	if m.ProcessID != 42 {
		t.Errorf("ProcessID = %d, want 42", m.ProcessID)
	}
}

func TestNew_DistinctTraceIDs(t *testing.T) {
	a := New(0, 1, Heartbeat, -1, "")
	b := New(0, 1, Heartbeat, -1, "")
	if a.TraceID == b.TraceID {
		t.Error("two messages should not share a TraceID")
	}
}

func TestPayloadPriority(t *testing.T) {
	tests := []struct {
		payload string
		want    int
	}{
		{"priority=7", 7},
		{"priority=0", 0},
		{" priority = 3 ", 3},
		{"priority=3,resource=cpu_slice", 3},
		{"resource=cpu_slice,priority=9", 9},
		{"garbage", 5},
		{"priority=notanumber", 5},
		{"", 5},
	}
	for _, tt := range tests {
		if got := PayloadPriority(tt.payload); got != tt.want {
			t.Errorf("PayloadPriority(%q) = %d, want %d", tt.payload, got, tt.want)
		}
	}
}

func TestPriorityPayload_RoundTrips(t *testing.T) {
	for p := 0; p <= 10; p++ {
		if got := PayloadPriority(PriorityPayload(p)); got != p {
			t.Errorf("round trip of priority %d gave %d", p, got)
		}
	}
}
