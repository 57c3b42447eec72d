package message

// CoreStatistics is a point-in-time snapshot of one Agent's counters.
// AvgMessageLatencyUs is an EWMA sample rather than a raw last-sample gauge,
// since a single in-flight message's latency swings too much to be useful
// on its own.
type CoreStatistics struct {
	CoreID              int
	MessagesSent        uint64
	MessagesReceived    uint64
	ProcessesExecuted   uint64
	ContextSwitches     uint64
	AvgMessageLatencyUs float64
	CurrentLoad         int
}

// SystemStatistics aggregates every core's snapshot plus the coordinator's
// derived counters.
type SystemStatistics struct {
	Cores           []CoreStatistics
	CommOverheadPct float64
	DeliveryRatePct float64
}

// Totals sums the per-core counters that feed the derived counters below.
func (s SystemStatistics) Totals() (sent, received, executed uint64) {
	for _, c := range s.Cores {
		sent += c.MessagesSent
		received += c.MessagesReceived
		executed += c.ProcessesExecuted
	}
	return
}

// CommOverhead computes messages / (messages + processesExecuted) * 100,
// where messages is the system-wide sum of sent+received. Returns 0 when
// there is no activity to divide by, rather than NaN.
func CommOverhead(sent, received, executed uint64) float64 {
	messages := float64(sent + received)
	denom := messages + float64(executed)
	if denom == 0 {
		return 0
	}
	return messages / denom * 100
}

// DeliveryRate computes received/sent * 100, treating zero sends as 100%
// delivered since nothing was lost.
func DeliveryRate(sent, received uint64) float64 {
	if sent == 0 {
		return 100
	}
	return float64(received) / float64(sent) * 100
}
