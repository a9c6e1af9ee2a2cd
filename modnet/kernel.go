// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"
	"math"

	"github.com/goki/mat32"
)

// Kernel holds the global simulation settings: threading, time resolution,
// random number seeds, and the current simulation time.
type Kernel struct {
	Threads    int     `def:"1" min:"1" desc:"number of local threads (local_num_threads) -- each thread is one virtual process owning the nodes with gid % Threads == thread"`
	Resolution float64 `def:"0.1" min:"0" desc:"simulation time step (ms)"`
	GrngSeed   int64   `def:"0" desc:"seed of the global random generator, used at network construction time (grng_seed)"`
	RngSeeds   []int64 `desc:"seeds of the per-thread random generators used during simulation (rng_seeds) -- one per virtual process"`

	Steps int64 `inactive:"+" desc:"number of steps simulated so far"`
}

// Kernel status keys
const (
	KeyThreads    = "local_num_threads"
	KeyVPs        = "total_num_virtual_procs"
	KeyResolution = "resolution"
	KeyGrngSeed   = "grng_seed"
	KeyRngSeeds   = "rng_seeds"
	KeyTime       = "time"
	KeyMinDelay   = "min_delay"
	KeyMaxDelay   = "max_delay"
)

func (kp *Kernel) Defaults() {
	kp.Threads = 1
	kp.Resolution = 0.1
	kp.GrngSeed = 0
	kp.RngSeeds = DefaultRngSeeds(kp.Threads)
	kp.Steps = 0
}

// DefaultRngSeeds returns the default per-thread seeds 1..n
func DefaultRngSeeds(n int) []int64 {
	sd := make([]int64, n)
	for i := range sd {
		sd[i] = int64(i + 1)
	}
	return sd
}

// NVps returns the total number of virtual processes (= threads, single process).
func (kp *Kernel) NVps() int {
	return kp.Threads
}

// Time returns the current simulation time (ms).
func (kp *Kernel) Time() float64 {
	return float64(kp.Steps) * kp.Resolution
}

// DelaySteps converts a delay in ms to a number of steps, at least 1.
func (kp *Kernel) DelaySteps(delay float32) int32 {
	d := int32(mat32.Round(delay / float32(kp.Resolution)))
	if d < 1 {
		d = 1
	}
	return d
}

// NSteps returns the number of steps for given duration in ms.
func (kp *Kernel) NSteps(ms float64) int {
	return int(math.Round(ms / kp.Resolution))
}

// SeedPlan lays out the seeds for a run from a single master seed, for NVp
// virtual processes: host-side generators get Master..Master+NVp-1,
// the global generator gets Master+NVp, and the per-thread generators get
// Master+NVp+1 .. Master+2*NVp.
type SeedPlan struct {
	Master int64 `desc:"master seed"`
	NVp    int   `desc:"number of virtual processes"`
}

// HostSeeds are seeds for generators used outside of the kernel,
// e.g., for building weight matrices.
func (sp SeedPlan) HostSeeds() []int64 {
	sd := make([]int64, sp.NVp)
	for i := range sd {
		sd[i] = sp.Master + int64(i)
	}
	return sd
}

// GrngSeed is the seed for the global kernel generator.
func (sp SeedPlan) GrngSeed() int64 {
	return sp.Master + int64(sp.NVp)
}

// RngSeeds are the per-thread kernel generator seeds.
func (sp SeedPlan) RngSeeds() []int64 {
	sd := make([]int64, sp.NVp)
	for i := range sd {
		sd[i] = sp.Master + int64(sp.NVp) + 1 + int64(i)
	}
	return sd
}

// String satisfies fmt.Stringer
func (sp SeedPlan) String() string {
	return fmt.Sprintf("master: %d  vps: %d  host: %v  grng: %d  rng: %v", sp.Master, sp.NVp, sp.HostSeeds(), sp.GrngSeed(), sp.RngSeeds())
}
