package statsserver

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ssd-technologies/multikernel/internal/message"
)

type fakeSource struct {
	stats message.SystemStatistics
}

func (f *fakeSource) GetStatistics() message.SystemStatistics {
	return f.stats
}

func TestHub_BroadcastsSnapshotsToClients(t *testing.T) {
	src := &fakeSource{stats: message.SystemStatistics{
		Cores:           []message.CoreStatistics{{CoreID: 0, CurrentLoad: 3}},
		CommOverheadPct: 12.5,
	}}
	hub := NewHub(src, 20*time.Millisecond, log.New(io.Discard, "", 0))
	go hub.Run()
	defer hub.Stop()

	mux := http.NewServeMux()
	mux.Handle("/stats", hub.HandleWebSocket())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Type != "statistics" {
		t.Errorf("Type = %q, want statistics", snap.Type)
	}
	if snap.System.CommOverheadPct != 12.5 {
		t.Errorf("CommOverheadPct = %f, want 12.5", snap.System.CommOverheadPct)
	}
}

func TestHub_DropsSlowClientWithoutBlockingBroadcast(t *testing.T) {
	src := &fakeSource{}
	hub := NewHub(src, 2*time.Millisecond, log.New(io.Discard, "", 0))
	go hub.Run()
	defer hub.Stop()

	mux := http.NewServeMux()
	mux.Handle("/stats", hub.HandleWebSocket())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Never read from conn, forcing the client's send buffer to fill; the
	// hub must keep broadcasting on its own schedule regardless.
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.broadcast()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
