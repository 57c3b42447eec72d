package kernel

import (
	"encoding/binary"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// deriveSeed stretches one master seed into a per-core seed by hashing
// master together with the core id. The termination-policy RNG needs to be
// per-agent so concurrent scheduler passes never serialize on a shared
// source; deriving every agent's seed from one master seed keeps a whole run
// reproducible without agents sharing a *rand.Rand.
//
// This plays the role internal/crypto/kdf.go's argon2 key derivation plays
// in the teacher codebase — stretching one secret into many independent-
// looking outputs — but uses blake2b instead of argon2. Argon2's deliberate
// CPU/memory cost defends against offline password guessing, a property
// this RNG seed gets no benefit from and would pay for on every agent start.
func deriveSeed(master []byte, coreID int) uint64 {
	var coreBytes [8]byte
	binary.LittleEndian.PutUint64(coreBytes[:], uint64(coreID))
	sum := blake2b.Sum256(append(append([]byte{}, master...), coreBytes[:]...))
	return binary.LittleEndian.Uint64(sum[:8])
}

// newAgentRNG builds the per-agent RNG used by the scheduler's stochastic
// termination policy.
func newAgentRNG(master []byte, coreID int) *rand.Rand {
	seed := deriveSeed(master, coreID)
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}
