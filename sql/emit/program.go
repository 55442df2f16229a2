// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package emit

import (
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/dolthub/sqlcore/internal/sqlerr"
)

// Label is an unresolved jump target, negative so it can never collide
// with a real instruction address (spec.md §4.3: "addresses are
// patched once the final address is known").
type Label int

// Program accumulates the instruction stream for one expression
// (spec.md §6: emit-value / emit-branch-true / emit-branch-false /
// emit-list). A Program is single-use: Seal fixes the label table and
// the zero value is not valid until New constructs one, mirroring the
// arena-scoped lifetime the rest of this module follows.
type Program struct {
	Options   Options
	Instrs    []Instr
	nextLabel Label
	resolved  map[Label]int
	err       sqlerr.Sticky

	// Tracer opens a span around each top-level EmitValue call (spans
	// do not nest per recursive descent — only the outermost call on a
	// given expression opens one, tracked via depth below). Defaults to
	// opentracing.NoopTracer{}.
	Tracer opentracing.Tracer
	depth  int

	// InTrigger marks a Program built for a trigger body, the gate
	// emitRaise checks before emitting RAISE's Halt primitive (spec.md
	// §4.3: "Outside a trigger body this is an error"). Left false by
	// New; the caller that knows it is compiling a trigger body sets it
	// before emitting the trigger's statements.
	InTrigger bool
}

// New returns an empty program configured by opts.
func New(opts Options) *Program {
	return &Program{
		Options:  opts,
		resolved: make(map[Label]int),
		Tracer:   opentracing.NoopTracer{},
	}
}

// CurrentAddress is the address the next Emit call will occupy.
func (p *Program) CurrentAddress() int {
	return len(p.Instrs)
}

// NewLabel allocates a fresh, as-yet-unresolved jump target.
func (p *Program) NewLabel() Label {
	p.nextLabel--
	return p.nextLabel
}

// ResolveLabel binds lbl to the current address. Resolving the same
// label twice is a caller bug (sqlerr.ErrMisuse).
func (p *Program) ResolveLabel(lbl Label) {
	if _, ok := p.resolved[lbl]; ok {
		p.err.Set(sqlerr.ErrMisuse.New("label already resolved"))
		return
	}
	p.resolved[lbl] = p.CurrentAddress()
}

// Emit appends instr unchanged and returns its address. A Label
// stashed in P2 is left as is and translated by the Seal-time patch
// pass.
func (p *Program) Emit(i Instr) int {
	addr := p.CurrentAddress()
	p.Instrs = append(p.Instrs, i)
	return addr
}

// EmitJump appends a control-flow instruction whose P2 targets lbl.
func (p *Program) EmitJump(op Opcode, p1 int, lbl Label) int {
	return p.Emit(Instr{Op: op, P1: p1, P2: int(lbl)})
}

// ChangeP2 overwrites the P2 field of the instruction at addr, which
// back-patches a forward jump once its target becomes known without
// going through the label table. The emitter's own CASE/IN lowering
// uses labels instead and does not call it.
func (p *Program) ChangeP2(addr, p2 int) {
	p.Instrs[addr].P2 = p2
}

// Err reports the first internal error raised while building the
// program (an already-resolved label, an unresolved label left at
// Seal time). Sticky once set, per the arena-error convention used
// throughout this module (spec.md §2).
func (p *Program) Err() error {
	return p.err.Err()
}

// Seal patches every label reference still carrying a negative P2 into
// its resolved address and returns the finished instruction slice. It
// is an internal-contract violation (not a user-facing SQL error) for
// a label to reach Seal unresolved; that indicates an emitter bug, so
// it is reported through sqlerr.ErrMisuse like the other "this should
// never happen" conditions in this module.
func (p *Program) Seal() ([]Instr, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}
	for i := range p.Instrs {
		p2 := p.Instrs[i].P2
		if p2 >= 0 {
			continue
		}
		addr, ok := p.resolved[Label(p2)]
		if !ok {
			return nil, errors.Wrapf(sqlerr.ErrMisuse.New("unresolved jump label"), "instruction %d", i)
		}
		p.Instrs[i].P2 = addr
	}
	return p.Instrs, nil
}
