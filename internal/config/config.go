// Package config loads the small set of constants that size the multikernel
// simulation. The reference design fixes these at build time; this package
// promotes them to runtime flags/environment without changing any default,
// following the flags-and-getenv convention every upstream cmd/* binary uses
// (no third-party flags or config library is introduced).
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the tunables that size a run: core count, queue depth,
// scheduler quantum, and the payload and process limits. Cores,
// InboxCapacity and Quantum are passed to the coordinator and agents;
// MaxPayloadBytes and MaxProcesses are checked by Validate but no component
// enforces them at run time.
type Config struct {
	Cores           int           // N logical cores
	InboxCapacity   int           // MESSAGE_QUEUE_SIZE
	MaxPayloadBytes int           // max payload size, bytes
	MaxProcesses    int           // max processes system-wide
	Quantum         time.Duration // scheduler quantum
}

// Default returns the configuration described in the reference design.
func Default() Config {
	return Config{
		Cores:           8,
		InboxCapacity:   100,
		MaxPayloadBytes: 512,
		MaxProcesses:    64,
		Quantum:         50 * time.Millisecond,
	}
}

// RegisterFlags binds c's fields to flag.FlagSet fs, defaulting to c's
// current values (normally config.Default()). Call fs.Parse after.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Cores, "cores", c.Cores, "number of logical cores (N)")
	fs.IntVar(&c.InboxCapacity, "inbox-capacity", c.InboxCapacity, "per-core inbox capacity (MESSAGE_QUEUE_SIZE)")
	fs.IntVar(&c.MaxPayloadBytes, "max-payload", c.MaxPayloadBytes, "maximum message payload size in bytes")
	fs.IntVar(&c.MaxProcesses, "max-processes", c.MaxProcesses, "maximum processes system-wide")
	fs.DurationVar(&c.Quantum, "quantum", c.Quantum, "scheduler quantum per pass")
}

// FromEnv overlays environment variables (MULTIKERNEL_CORES, etc.) onto c,
// mirroring cmd/nocturne's PORT/NOCTURNE_SECRET os.Getenv fallback pattern.
// Only MULTIKERNEL_CORES, MULTIKERNEL_INBOX_CAPACITY and MULTIKERNEL_QUANTUM
// are read. A variable that is set overwrites the field whatever its current
// value, so when FromEnv runs after flag parsing the environment wins over
// flags.
func (c *Config) FromEnv() error {
	if v := os.Getenv("MULTIKERNEL_CORES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MULTIKERNEL_CORES: %w", err)
		}
		c.Cores = n
	}
	if v := os.Getenv("MULTIKERNEL_INBOX_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MULTIKERNEL_INBOX_CAPACITY: %w", err)
		}
		c.InboxCapacity = n
	}
	if v := os.Getenv("MULTIKERNEL_QUANTUM"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MULTIKERNEL_QUANTUM: %w", err)
		}
		c.Quantum = d
	}
	return nil
}

// Validate reports whether c describes a runnable system.
func (c Config) Validate() error {
	if c.Cores <= 0 {
		return fmt.Errorf("cores must be positive, got %d", c.Cores)
	}
	if c.InboxCapacity <= 0 {
		return fmt.Errorf("inbox-capacity must be positive, got %d", c.InboxCapacity)
	}
	if c.MaxPayloadBytes < 256 {
		return fmt.Errorf("max-payload must be at least 256 bytes, got %d", c.MaxPayloadBytes)
	}
	if c.MaxProcesses <= 0 {
		return fmt.Errorf("max-processes must be positive, got %d", c.MaxProcesses)
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be positive, got %s", c.Quantum)
	}
	return nil
}
