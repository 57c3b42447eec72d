// cmd/multikernel-compare runs the identical workload against both the
// multikernel coordinator and the SMP baseline and prints a side-by-side
// counter comparison.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ssd-technologies/multikernel/internal/config"
	"github.com/ssd-technologies/multikernel/internal/coordinator"
	"github.com/ssd-technologies/multikernel/internal/smp"
)

const workloadSize = 100

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.FromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	mkOut := log.New(os.Stdout, "", log.LstdFlags)
	smpOut := log.New(os.Stdout, "", log.LstdFlags)

	mk := coordinator.New(cfg, []byte("multikernel-compare-seed"), mkOut)
	mk.Start()
	runWorkload(func(priority int) { mk.CreateProcess(priority) }, func() { mk.BalanceLoad() })
	time.Sleep(2 * time.Second)
	mk.Shutdown()
	mkStats := mk.GetStatistics()
	mkSent, mkReceived, mkExecuted := mkStats.Totals()

	base := smp.New(cfg.Cores, cfg.Quantum, 0xC0FFEE, smpOut)
	base.Start()
	runWorkload(func(priority int) { base.CreateProcess(priority) }, func() {})
	time.Sleep(2 * time.Second)
	base.Stop()
	baseStats := base.GetStatistics()

	fmt.Println()
	fmt.Println("metric                  multikernel        smp_baseline")
	fmt.Printf("processes_executed      %-18d %d\n", mkExecuted, baseStats.ProcessesExecuted)
	fmt.Printf("context_switches         %-18s %d\n", "n/a", baseStats.ContextSwitches)
	fmt.Printf("messages_sent            %-18d %d\n", mkSent, uint64(0))
	fmt.Printf("messages_received        %-18d %d\n", mkReceived, uint64(0))
	fmt.Printf("lock_contentions         %-18s %d\n", "n/a", baseStats.LockContentions)
	fmt.Printf("cache_invalidations      %-18s %d\n", "n/a", baseStats.CacheInvalidations)
	fmt.Printf("comm_overhead_pct        %-18.2f %s\n", mkStats.CommOverheadPct, "n/a")
}

// runWorkload creates workloadSize processes with varying priority and, if
// balance is non-nil, interleaves rebalancing calls — the same shape for
// both systems so the comparison is apples-to-apples.
func runWorkload(create func(priority int), balance func()) {
	for i := 0; i < workloadSize; i++ {
		create((i % 10) + 1)
		if i%10 == 0 && balance != nil {
			balance()
		}
	}
}
