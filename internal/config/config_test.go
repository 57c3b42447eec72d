package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

func TestDefault_MatchesReferenceDesign(t *testing.T) {
	c := Default()
	if c.Cores != 8 {
		t.Errorf("Cores = %d, want 8", c.Cores)
	}
	if c.InboxCapacity != 100 {
		t.Errorf("InboxCapacity = %d, want 100", c.InboxCapacity)
	}
	if c.MaxPayloadBytes != 512 {
		t.Errorf("MaxPayloadBytes = %d, want 512", c.MaxPayloadBytes)
	}
	if c.MaxProcesses != 64 {
		t.Errorf("MaxProcesses = %d, want 64", c.MaxProcesses)
	}
	if c.Quantum != 50*time.Millisecond {
		t.Errorf("Quantum = %s, want 50ms", c.Quantum)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestRegisterFlags_OverridesDefault(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-cores=4", "-quantum=10ms"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Cores != 4 {
		t.Errorf("Cores = %d, want 4", c.Cores)
	}
	if c.Quantum != 10*time.Millisecond {
		t.Errorf("Quantum = %s, want 10ms", c.Quantum)
	}
}

func TestFromEnv_Overlays(t *testing.T) {
	os.Setenv("MULTIKERNEL_CORES", "16")
	defer os.Unsetenv("MULTIKERNEL_CORES")

	c := Default()
	if err := c.FromEnv(); err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Cores != 16 {
		t.Errorf("Cores = %d, want 16", c.Cores)
	}
}

func TestFromEnv_RejectsGarbage(t *testing.T) {
	os.Setenv("MULTIKERNEL_QUANTUM", "not-a-duration")
	defer os.Unsetenv("MULTIKERNEL_QUANTUM")

	c := Default()
	if err := c.FromEnv(); err == nil {
		t.Fatal("expected error for invalid MULTIKERNEL_QUANTUM")
	}
}

func TestValidate_RejectsNonPositiveCores(t *testing.T) {
	c := Default()
	c.Cores = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero cores")
	}
}

func TestValidate_RejectsSmallPayload(t *testing.T) {
	c := Default()
	c.MaxPayloadBytes = 10
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for payload below 256 bytes")
	}
}
