// SPDX-License-Identifier: MIT

package perturb

import "math/rand/v2"

// DefaultSeed replaces a zero seed so "unset" still means reproducible.
const DefaultSeed uint64 = 1

// NewRand returns a deterministic PCG-backed generator.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the seed is used verbatim.
// The generator is not goroutine-safe.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewPCG(seed, mix(seed)))
}

// DeriveRand returns an independent stream for stream id k of a base seed,
// used to give every trial its own reproducible draws.
func DeriveRand(seed uint64, k uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return NewRand(mix(seed ^ (k + 0x9e3779b97f4a7c15)))
}

// mix is the SplitMix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
