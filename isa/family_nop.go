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

package isa

// OpNOP is the single zero-cost, zero-operand, skippable opcode.
const OpNOP Opcode = 0

func init() {
	register(OpNOP, Descriptor{
		Family:   FamilyNOP,
		OpcodeID: 0,
		Mnemonic: "NOP",
		Execute: func(ctx *Context) *Fault {
			return nil
		},
	})
}
