// Copyright 2026 The Evochora Authors
// This file is part of the evochora-sub007 runtime.
//
// The evochora-sub007 runtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evochora-sub007 runtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evochora-sub007 runtime. If not, see <http://www.gnu.org/licenses/>.

// Package scheduler drives the per-tick pipeline: plan, intercept, resolve
// conflicts, execute, then run birth/death handlers (spec §4.8). The
// organism-parallel phases are dispatched over a fixed worker pool built
// the way the teacher's PoW sealer splits a nonce search across threads —
// goroutine-per-range plus a sync.WaitGroup barrier — rather than a
// generic worker-queue abstraction.
package scheduler

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"

	"github.com/evochora/evochora-sub007/conflict"
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/organism"
	"github.com/evochora/evochora-sub007/thermo"
	"github.com/evochora/evochora-sub007/vm"
)

// BirthHandler is one stage of the ordered newborn pipeline (spec §4.10).
// Implementations run sequentially in phase 5, sharing rng across the
// whole chain within a tick.
type BirthHandler interface {
	OnBirth(env *environment.Environment, parent, child *organism.Organism, rng *rand.Rand)
}

// DeathHandler is one stage of the ordered dead-organism pipeline,
// run before the scheduler clears the dead organism's ownership.
type DeathHandler interface {
	OnDeath(env *environment.Environment, org *organism.Organism, rng *rand.Rand)
}

// Scheduler owns one environment and the organisms living in it, and
// drives ticks against both.
type Scheduler struct {
	Env              *environment.Environment
	Organisms        []*organism.Organism
	Thermo           *thermo.Table
	StrictTyping     bool
	ErrorPenaltyCost int64
	Parallelism      int
	Resolve          vm.LabelResolver
	Interceptors     []vm.Interceptor
	Birth            []BirthHandler
	Death            []DeathHandler
	Log              log15.Logger

	Tick           uint64
	nextOrganismID organism.ID
	rootSeed       int64

	pending []*organism.Organism // newborns enqueued during Execute, consumed in phase 5

	energyMu sync.Mutex
	// totalEnergyDebited is the lifetime sum of every per-instruction energy
	// charge (spec §4.7 step 3 and step 5), kept in a 256-bit accumulator so
	// an indefinitely long-running simulation can never wrap an int64 the
	// way a per-tick or per-organism counter could.
	totalEnergyDebited uint256.Int
}

// TotalEnergyDebited reports the lifetime sum of every energy charge levied
// across every tick and every organism since the scheduler was created.
func (s *Scheduler) TotalEnergyDebited() *uint256.Int {
	s.energyMu.Lock()
	defer s.energyMu.Unlock()
	return new(uint256.Int).Set(&s.totalEnergyDebited)
}

func (s *Scheduler) addEnergyDebit(delta int64) {
	if delta <= 0 {
		return
	}
	s.energyMu.Lock()
	s.totalEnergyDebited.Add(&s.totalEnergyDebited, uint256.NewInt(uint64(delta)))
	s.energyMu.Unlock()
}

// New builds a Scheduler over env with no organisms yet. rootSeed seeds
// every tick's birth-handler RNG (never wall-clock time, per spec §8's
// determinism requirement); nextOrganismID is the id the first
// EnqueueBirth call will assign, raised by AddOrganism past any larger
// id already registered (1, unless resuming from a
// checkpoint, per spec §6 "resume must restore nextOrganismId").
func New(env *environment.Environment, rootSeed int64, nextOrganismID organism.ID) *Scheduler {
	parallelism := runtime.NumCPU()
	if parallelism < 2 {
		parallelism = 2
	}
	return &Scheduler{
		Env:            env,
		Thermo:         thermo.NewTable(thermo.Cost{}),
		Parallelism:    parallelism,
		Log:            log15.New("module", "scheduler"),
		nextOrganismID: nextOrganismID,
		rootSeed:       rootSeed,
	}
}

// AddOrganism registers an already-constructed organism with the
// scheduler and reserves its id for monotonic-increase bookkeeping.
func (s *Scheduler) AddOrganism(o *organism.Organism) {
	s.Organisms = append(s.Organisms, o)
	if o.ID >= s.nextOrganismID {
		s.nextOrganismID = o.ID + 1
	}
}

// EnqueueBirth registers child as a newborn created by parent's Execute
// call this tick (spec §4.8 phase 5). child.ID and child.ParentID are
// assigned here; the caller must not have set them. The scheduler appends
// child to the live organism list only after its birth-handler chain runs.
func (s *Scheduler) EnqueueBirth(parent *organism.Organism, child *organism.Organism) {
	child.ID = s.nextOrganismID
	s.nextOrganismID++
	if parent != nil {
		child.ParentID = parent.ID
	}
	child.BirthTick = s.Tick
	s.pending = append(s.pending, child)
}

// tickRNG derives this tick's birth-handler stream from the scheduler's
// root seed and the tick number, so replays of the same tick sequence are
// bit-identical regardless of wall-clock time (spec §8).
func (s *Scheduler) tickRNG() *rand.Rand {
	return rand.New(rand.NewSource(s.rootSeed ^ int64(s.Tick)*2654435761))
}

// dispatch splits n items over the worker pool in contiguous ranges and
// blocks until every worker has completed its range (spec §4.8's
// "dispatch(n, f) is a barrier"). workerFn receives the thread index so
// callers can index into per-thread scratch arenas. A panic inside any
// worker is recovered, collected, and re-raised here after every worker
// has finished, aborting the tick (spec §5 "worker exceptions... abort
// the tick").
func dispatch(n, parallelism int, workerFn func(threadIdx, start, end int)) {
	if n == 0 {
		return
	}
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > n {
		parallelism = n
	}
	chunk := (n + parallelism - 1) / parallelism

	var wg sync.WaitGroup
	panics := make([]interface{}, parallelism)
	for t := 0; t < parallelism; t++ {
		start := t * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(threadIdx, start, end int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panics[threadIdx] = r
				}
			}()
			workerFn(threadIdx, start, end)
		}(t, start, end)
	}
	wg.Wait()
	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}
}

// RunTick executes one full tick pipeline (spec §4.8): plan, intercept,
// resolve conflicts, execute (parallel), then birth/death handlers,
// finally advancing the tick counter. It returns the first worker panic
// recovered during phases 1, 2, or 4, if any; the environment's state is
// then unspecified and the caller should discard the simulation (spec
// §5 "Cancellation").
func (s *Scheduler) RunTick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: worker panic: %v", r)
		}
	}()

	alive := s.aliveOrganisms()
	planned := make([]*vm.PlannedInstruction, len(alive))

	// Phase 1: plan.
	dispatch(len(alive), s.Parallelism, func(_ int, start, end int) {
		for i := start; i < end; i++ {
			pi := vm.Plan(alive[i], s.Env, s.StrictTyping, s.Resolve)
			pi.RegistrationIndex = i
			planned[i] = pi
		}
	})

	// Phase 2: intercept.
	dispatch(len(planned), s.Parallelism, func(_ int, start, end int) {
		for i := start; i < end; i++ {
			vm.Intercept(planned[i], s.Interceptors, func(r interface{}) {
				s.Log.Warn("interceptor panic recovered", "tick", s.Tick, "organism", planned[i].Org.ID, "err", r)
			})
		}
	})

	// Phase 3: resolve conflicts (sequential, global).
	conflict.Resolve(planned)

	// Phase 4: execute, in parallel, with thermodynamic debit.
	dispatch(len(planned), s.Parallelism, func(_ int, start, end int) {
		for i := start; i < end; i++ {
			s.executeOne(planned[i])
		}
	})

	// Phase 5: births, then deaths (sequential).
	s.runBirths()
	s.runDeaths(alive)

	s.Tick++
	return nil
}

func (s *Scheduler) executeOne(pi *vm.PlannedInstruction) {
	org := pi.Org
	if org.Dead {
		return
	}
	if pi.Ctx.Status == isa.LostConflict {
		// Losers are no-ops but still incur the base cost (spec §4.7 step 3).
		c := s.Thermo.Lookup(pi.Ctx.Descriptor)
		org.ChargeEnergy(c.Energy, c.Entropy)
		s.addEnergyDebit(c.Energy)
		org.PrevInstructionFailed = false
		return
	}
	_ = vm.Execute(pi, s.Env)
	c := s.Thermo.Lookup(pi.Ctx.Descriptor)
	org.ChargeEnergy(c.Energy, c.Entropy)
	s.addEnergyDebit(c.Energy)
	// error-penalty-cost is debited only for the stall-recovery flow (spec
	// §7), not for an ordinary instruction fault like DivideByZero or
	// TypeMismatchStrict, which already incurred its base cost above.
	if pi.Stalled {
		org.ChargeEnergy(s.ErrorPenaltyCost, 0)
		s.addEnergyDebit(s.ErrorPenaltyCost)
	}
}

func (s *Scheduler) runBirths() {
	rng := s.tickRNG()
	for _, child := range s.pending {
		var parent *organism.Organism
		for _, o := range s.Organisms {
			if o.ID == child.ParentID {
				parent = o
				break
			}
		}
		for _, h := range s.Birth {
			func() {
				defer func() {
					if r := recover(); r != nil {
						s.Log.Error("birth handler panic recovered", "tick", s.Tick, "organism", child.ID, "err", r)
					}
				}()
				h.OnBirth(s.Env, parent, child, rng)
			}()
		}
		s.Organisms = append(s.Organisms, child)
	}
	s.pending = nil
}

func (s *Scheduler) runDeaths(previouslyAlive []*organism.Organism) {
	rng := s.tickRNG()
	for _, o := range previouslyAlive {
		if !o.Dead || o.DeathTick != 0 {
			continue
		}
		// s.Tick+1: the tick counter advances in step 6, after this phase
		// runs, so "the tick this organism died in" is one past the
		// counter's current value. Using the counter's current value would
		// collide with 0, which DeathTick reserves for "still alive" when
		// an organism dies during the very first tick.
		o.DeathTick = s.Tick + 1
		for _, h := range s.Death {
			func() {
				defer func() {
					if r := recover(); r != nil {
						s.Log.Error("death handler panic recovered", "tick", s.Tick, "organism", o.ID, "err", r)
					}
				}()
				h.OnDeath(s.Env, o, rng)
			}()
		}
		s.Env.ClearOwnershipOf(o.ID)
	}
}

func (s *Scheduler) aliveOrganisms() []*organism.Organism {
	alive := make([]*organism.Organism, 0, len(s.Organisms))
	for _, o := range s.Organisms {
		if !o.Dead {
			alive = append(alive, o)
		}
	}
	return alive
}
