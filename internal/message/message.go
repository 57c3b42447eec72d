// Package message defines the wire-level Message envelope and the
// ProcessControlBlock and CoreStatistics records that the kernel and
// coordinator packages build on: one small, dependency-light package that
// every higher layer imports.
package message

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of inter-core message.
type Type string

const (
	Create          Type = "CREATE"
	Migrate         Type = "MIGRATE"
	Terminate       Type = "TERMINATE"
	ResourceRequest Type = "RESOURCE_REQUEST"
	ResourceRelease Type = "RESOURCE_RELEASE"
	SyncBarrier     Type = "SYNC_BARRIER"
	Heartbeat       Type = "HEARTBEAT"
	Shutdown        Type = "SHUTDOWN"
)

// SystemOrigin is used as SourceCore for messages the coordinator itself
// injects rather than a core.
const SystemOrigin = -1

// MaxPayloadBytes is the minimum payload buffer size the wire format
// guarantees. Callers that need a different cap should compare against
// config.Config.MaxPayloadBytes; this constant only documents the floor.
const MaxPayloadBytes = 256

// Message is the value copied on every send. SourceCore/DestCore/Type/
// ProcessID/Payload/Timestamp are the fields a peer implementation would
// need to preserve; TraceID is an internal addition that New fills in and
// nothing else in this repository reads (not routing, dispatch or logging),
// so it carries no semantic weight.
type Message struct {
	SourceCore int       // sender core id, or SystemOrigin
	DestCore   int       // recipient core id, in [0, N)
	Type       Type      // message kind
	ProcessID  int       // related pid, or -1
	Payload    string    // type-specific key=value text
	Timestamp  time.Time // set by the sender at enqueue time
	TraceID    string    // opaque per-message id; not read by any component
}

// New builds a Message with a fresh TraceID and the current time as
// Timestamp. Call this at the moment of enqueue, never earlier: the sender
// is expected to set Timestamp when the message is handed to the transport,
// not when it was constructed.
func New(source, dest int, typ Type, pid int, payload string) Message {
	return Message{
		SourceCore: source,
		DestCore:   dest,
		Type:       typ,
		ProcessID:  pid,
		Payload:    payload,
		Timestamp:  time.Now(),
		TraceID:    uuid.New().String(),
	}
}

// PayloadPriority parses a "priority=<n>" payload, returning the parsed
// priority or a default of 5 on any parse failure. Malformed input falls
// back silently rather than surfacing as an error.
func PayloadPriority(payload string) int {
	const defaultPriority = 5
	for _, kv := range strings.Split(payload, ",") {
		kv = strings.TrimSpace(kv)
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) != "priority" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultPriority
		}
		return n
	}
	return defaultPriority
}

// PriorityPayload formats a priority as the "priority=<n>" payload text
// understood by PayloadPriority.
func PriorityPayload(priority int) string {
	return fmt.Sprintf("priority=%d", priority)
}
