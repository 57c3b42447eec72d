// cmd/multikernel runs a scripted scenario against the multikernel
// coordinator and exits 0 on clean shutdown, non-zero on initialization
// failure. It reads nothing from stdin.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ssd-technologies/multikernel/internal/config"
	"github.com/ssd-technologies/multikernel/internal/coordinator"
	"github.com/ssd-technologies/multikernel/internal/history"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	historyPath := flag.String("history-db", "", "optional SQLite path to persist this run's aggregate snapshot")
	flag.Parse()

	if err := cfg.FromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	out := log.New(os.Stdout, "", log.LstdFlags)

	masterSeed := []byte(os.Getenv("MULTIKERNEL_SEED"))
	if len(masterSeed) == 0 {
		masterSeed = []byte("multikernel-default-seed")
	}

	c := coordinator.New(cfg, masterSeed, out)

	if *historyPath != "" {
		store, err := history.Open(*historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening history db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		c.WithHistory(store)
	}

	c.Start()
	defer c.Shutdown()

	runScenario(c)

	if *historyPath != "" {
		if _, err := c.SaveRunSnapshot("multikernel"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: saving run history: %v\n", err)
			os.Exit(1)
		}
		runs, err := c.RunHistory("multikernel", 5)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading run history: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("last %d run(s) for label %q:\n", len(runs), "multikernel")
		for _, r := range runs {
			fmt.Printf("  %s  %s  comm_overhead=%.2f%% delivery_rate=%.2f%%\n",
				r.CreatedAt.Format(time.RFC3339), r.ID, r.Stats.CommOverheadPct, r.Stats.DeliveryRatePct)
		}
	}

	fmt.Println(c.String())
}

// runScenario exercises the scenarios in sequence: placement by load, a
// migration handoff, a heartbeat fanout, a resource request/release exchange,
// stochastic drainage, and concurrent rebalancing. It does not run a
// back-pressure burst.
func runScenario(c *coordinator.Coordinator) {
	// placement by load.
	pids := make([]int, 0, c.Cores())
	for i := 0; i < c.Cores(); i++ {
		pids = append(pids, c.CreateProcess(5))
	}

	// migration handoff.
	if len(pids) > 0 {
		target := (0 + 4) % c.Cores()
		c.MigrateProcess(pids[0], 0, target)
	}

	// heartbeat fanout.
	c.HeartbeatFanout()

	// resource demo exercises the remaining message types.
	c.ResourceDemo()

	// stochastic drainage under load.
	for i := 0; i < 100; i++ {
		c.CreateProcess(5)
	}
	time.Sleep(2 * time.Second)

	// concurrent rebalancing from several callers at once.
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 25; j++ {
				c.BalanceLoad()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
