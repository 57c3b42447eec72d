package coordinator

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/ssd-technologies/multikernel/internal/config"
)

func TestFindUnderloaded(t *testing.T) {
	c := &Coordinator{}
	loads := []int{10, 1, 10, 10}
	target, ok := c.findUnderloaded(loads, 7.75)
	if !ok {
		t.Fatal("expected to find an underloaded core")
	}
	if target != 1 {
		t.Fatalf("target = %d, want 1", target)
	}
}

func TestFindUnderloaded_NoneBelowThreshold(t *testing.T) {
	c := &Coordinator{}
	loads := []int{5, 5, 5}
	if _, ok := c.findUnderloaded(loads, 5); ok {
		t.Fatal("expected no underloaded core when all loads equal the average")
	}
}

func TestResourceDemo_NoopWithFewerThanTwoCores(t *testing.T) {
	cfg := config.Default()
	cfg.Cores = 1
	cfg.Quantum = time.Hour
	c := New(cfg, []byte("seed"), log.New(io.Discard, "", 0))
	c.Start()
	defer c.Shutdown()

	// Should not panic with only one core.
	c.ResourceDemo()
}
