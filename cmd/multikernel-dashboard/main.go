// cmd/multikernel-dashboard runs the coordinator behind the stats-publisher
// WebSocket hub for an external dashboard to attach to, and exits cleanly on
// SIGINT/SIGTERM after a graceful shutdown. Grounded on the teacher's
// signal.Notify shutdown pattern.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ssd-technologies/multikernel/internal/config"
	"github.com/ssd-technologies/multikernel/internal/coordinator"
	"github.com/ssd-technologies/multikernel/internal/statsserver"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	addr := flag.String("addr", ":8080", "HTTP listen address for the /stats websocket endpoint")
	pushInterval := flag.Duration("push-interval", time.Second, "snapshot push interval")
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
		masterSeed = []byte("multikernel-dashboard-seed")
	}

	c := coordinator.New(cfg, masterSeed, out)
	c.Start()

	hub := statsserver.NewHub(c, *pushInterval, out)
	go hub.Run()

	mux := http.NewServeMux()
	mux.Handle("/stats", hub.HandleWebSocket())
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("dashboard server: %v", err)
		}
	}()

	fmt.Printf("dashboard listening on %s (ws://%s/stats)\n", *addr, *addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("shutting down...")
	hub.Stop()
	_ = srv.Close()
	c.Shutdown()
}
