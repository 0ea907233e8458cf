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

// Package organism implements the per-organism execution state: register
// banks, stacks, instruction pointer/direction vector, and the
// energy/entropy ledger. It holds no reference to other organisms — the
// only thing it knows about ownership is its own id, which the environment
// package's index maps back to owned cells (spec §3 "Ownership model").
package organism

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/sha3"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

// ID identifies an organism. Zero is never a valid id (it doubles as the
// environment's "unowned" sentinel).
type ID = uint32

// Organism is the full mutable state the VM steps each tick.
type Organism struct {
	ID        ID
	ParentID  ID // 0 for apex organisms; see SPEC_FULL.md lineage note
	ProgramID string

	IP              environment.Coord
	DV              environment.Coord
	InitialPosition environment.Coord

	DR  []molecule.Word
	PR  []environment.Coord
	FPR []molecule.Word
	LR  []environment.Coord

	DP           []environment.Coord
	ActiveDPIndex int

	DataStack     []Value
	CallStack     []Frame
	LocationStack []environment.Coord

	ER      int64 // current energy, capped at Limits.MaxEnergy
	Entropy int64 // capped at Limits.MaxEntropy
	MR      byte  // 4-bit marker register

	Dead                  bool
	FailureFlag           bool
	FailureReason         string
	PrevInstructionFailed bool
	SkipIPAdvance         bool
	StallCount            uint64

	BirthTick uint64
	DeathTick uint64 // 0 while alive

	Limits Limits
}

// New constructs a fresh organism with id, placing its single seed code
// molecule at startPos in env and claiming that cell (spec §4.3:
// "Construction places exactly one code molecule at the initial coordinate
// and seeds the first owned cell").
func New(id ID, programID string, startPos, dv environment.Coord, limits Limits, seed molecule.Word, env *environment.Environment) (*Organism, error) {
	o := &Organism{
		ID:              id,
		ProgramID:       programID,
		IP:              startPos,
		DV:              dv,
		InitialPosition: startPos,
		DR:              make([]molecule.Word, limits.NumDR),
		PR:              make([]environment.Coord, limits.NumPR),
		FPR:             make([]molecule.Word, limits.NumFPR),
		LR:              make([]environment.Coord, limits.NumLR),
		DP:              make([]environment.Coord, maxInt(limits.NumDP, 1)),
		Limits:          limits,
		ER:              limits.MaxEnergy,
	}
	o.DP[0] = startPos
	if err := env.Set(startPos, seed, id); err != nil {
		return nil, err
	}
	return o, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// IsCellAccessible reports whether cells owned by ownerID are accessible
// to o. Only o's own cells are accessible — a deliberate departure from
// the common intuition that a parent's cells might be (spec §4.3, and the
// explicit reference test "testIsCellAccessible_OwnedByParent_ReturnsFalse").
func (o *Organism) IsCellAccessible(ownerID ID) bool {
	return ownerID == o.ID
}

// FetchSignedArgument reads the molecule at the slot immediately following
// coord along dv, returning its signed scalar value.
func (o *Organism) FetchSignedArgument(env *environment.Environment, coord environment.Coord) (int32, environment.Coord, error) {
	next := env.NextPosition(coord, o.DV)
	m, err := env.Get(next)
	if err != nil {
		return 0, next, err
	}
	return m.Scalar(), next, nil
}

// AdvanceIPBy steps the instruction pointer n slots along DV, unless
// SkipIPAdvance is set (in which case the flag is cleared and the IP is
// left untouched — a conditional/CALL/JMP already positioned it). n is
// normally the executing instruction's full grid length, not a literal
// single slot, so multi-operand instructions are skipped over whole.
func (o *Organism) AdvanceIPBy(env *environment.Environment, n int) {
	if o.SkipIPAdvance {
		o.SkipIPAdvance = false
		return
	}
	ip := o.IP
	for i := 0; i < n; i++ {
		ip = env.NextPosition(ip, o.DV)
	}
	o.IP = ip
}

// AdvanceIP is AdvanceIPBy with n=1, used by single-slot instructions.
func (o *Organism) AdvanceIP(env *environment.Environment) {
	o.AdvanceIPBy(env, 1)
}

// Fail sets the organism's failure flag and human-readable reason. It does
// not kill the organism — per spec §7, instruction failure is recoverable
// and observable via IFER/INER on the next instruction.
func (o *Organism) Fail(reason string) {
	o.FailureFlag = true
	o.FailureReason = reason
}

// ClearFailure resets the failure flag ahead of planning the next
// instruction; PrevInstructionFailed (read by IFER/INER) is set by the
// scheduler from the flag's value before this call.
func (o *Organism) ClearFailure() {
	o.FailureFlag = false
	o.FailureReason = ""
}

// ChargeEnergy debits cost from ER, flagging Dead if it would go to or
// below zero. Entropy is credited (capped at MaxEntropy) regardless of the
// energy outcome.
func (o *Organism) ChargeEnergy(cost, entropyDelta int64) {
	o.ER -= cost
	if o.ER <= 0 {
		o.ER = 0
		o.Dead = true
	} else if o.ER > o.Limits.MaxEnergy {
		o.ER = o.Limits.MaxEnergy
	}
	o.Entropy += entropyDelta
	if o.Entropy > o.Limits.MaxEntropy {
		o.Entropy = o.Limits.MaxEntropy
	}
	if o.Entropy < 0 {
		o.Entropy = 0
	}
}

// LengthFunc reports the operand-slot length (in cells) of the opcode
// encoded by the molecule at coord, so SkipNextInstruction can advance
// past a whole instruction without organism
// importing the isa package (which itself depends on organism to execute
// against — see the opcode length table for the authoritative source).
type LengthFunc func(env *environment.Environment, coord environment.Coord) int

// SkipNextInstruction advances the IP past the opcode molecule currently
// under it plus however many operand slots length reports, then sets
// SkipIPAdvance so the scheduler's normal post-execute step doesn't move
// it again (spec §4.4: a conditional that evaluates false skips the next
// instruction).
func (o *Organism) SkipNextInstruction(env *environment.Environment, length LengthFunc) {
	n := length(env, o.IP)
	if n < 1 {
		n = 1
	}
	ip := o.IP
	for i := 0; i < n; i++ {
		ip = env.NextPosition(ip, o.DV)
	}
	o.IP = ip
	o.SkipIPAdvance = true
}

// SkipNopCells advances the IP forward while the cell under it is a
// non-CODE molecule or the empty/NOP code molecule, up to MaxSkips slots
// (spec §4.4). If a real instruction is reached within the bound,
// StallCount resets and the organism is left positioned on it, ready for
// the caller to decode and execute that instruction normally this same
// tick (SkipIPAdvance is left untouched). The scan steps one cell at a
// time and does not consult length. If the bound is exhausted
// without finding one, the organism "stalls" (spec §7): it pops one frame
// from the call stack and restores IP/PR/FPR from it, or — if the call
// stack is empty — resets IP to its initial position; either way
// StallCount is bumped, the failure flag is set with reason "Max skips
// exceeded", and SkipIPAdvance is set so the scheduler's post-execute step
// doesn't move the already-repositioned IP again. The return value
// reports whether this call stalled, so the caller can apply the recovery
// flow's additional error-penalty-cost debit (spec §7, scenario §8.6) on
// top of the base instruction cost it always charges.
func (o *Organism) SkipNopCells(env *environment.Environment, length LengthFunc) (stalled bool) {
	max := o.Limits.MaxSkips
	if max <= 0 {
		max = 1
	}
	moved := 0
	for moved < max {
		m, err := env.Get(o.IP)
		if err != nil || (!m.IsEmpty() && m.Type() == molecule.CODE) {
			o.StallCount = 0
			return false
		}
		o.IP = env.NextPosition(o.IP, o.DV)
		moved++
	}

	o.StallCount++
	if frame, err := o.PopCall(); err == nil {
		o.IP = frame.ReturnIP
		copy(o.PR, frame.SavedPR)
		copy(o.FPR, frame.SavedFPR)
	} else {
		o.IP = o.InitialPosition
	}
	o.Fail("Max skips exceeded")
	o.SkipIPAdvance = true
	return true
}

// GenomeHash returns the Keccak256 digest of the organism's owned cells,
// each encoded as (flat-index, molecule word) in ascending flat-index
// order so the hash is independent of map/set iteration order. This is an
// observability addition (SPEC_FULL.md §D) used in tick-output organism
// summaries; no birth handler reads it.
func GenomeHash(env *environment.Environment, id ID) [32]byte {
	owned := env.CellsOwnedBy(id).ToSlice()
	sort.Ints(owned)

	h := sha3.NewLegacyKeccak256()
	buf := make([]byte, 12)
	for _, flat := range owned {
		binary.BigEndian.PutUint64(buf[:8], uint64(flat))
		binary.BigEndian.PutUint32(buf[8:], uint32(env.GetFlat(flat)))
		h.Write(buf)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Summary is the read-only view of an organism's state exposed between
// ticks (spec §6): id, genome hash, IP, DV, DPs, energy, entropy, life-
// cycle flags, and lineage.
type Summary struct {
	ID            ID
	ParentID      ID
	ProgramID     string
	GenomeHash    [32]byte
	IP            environment.Coord
	DV            environment.Coord
	DPs           []environment.Coord
	ActiveDPIndex int
	Energy        int64
	Entropy       int64
	IsDead        bool
	FailureReason string
	BirthTick     uint64
	DeathTick     uint64
	StallCount    uint64
}

// Summarize produces a Summary snapshot of o.
func (o *Organism) Summarize(env *environment.Environment) Summary {
	dps := make([]environment.Coord, len(o.DP))
	copy(dps, o.DP)
	return Summary{
		ID:            o.ID,
		ParentID:      o.ParentID,
		ProgramID:     o.ProgramID,
		GenomeHash:    GenomeHash(env, o.ID),
		IP:            o.IP,
		DV:            o.DV,
		DPs:           dps,
		ActiveDPIndex: o.ActiveDPIndex,
		Energy:        o.ER,
		Entropy:       o.Entropy,
		IsDead:        o.Dead,
		FailureReason: o.FailureReason,
		BirthTick:     o.BirthTick,
		DeathTick:     o.DeathTick,
		StallCount:    o.StallCount,
	}
}
