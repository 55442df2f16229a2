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

import "github.com/dolthub/sqlcore/sql/ast"

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EmitBranchTrue appends instructions that jump to target iff e
// evaluates truthy, without ever materializing an intermediate 0/1
// value for AND/OR/NOT nodes — it recurses into their operands instead
// (spec.md §4.3, §6 "emit-branch-true"). This is what gives AND/OR
// short-circuit evaluation: the right operand is never even emitted
// into on a left operand that already decided the outcome.
//
// jumpIfNull carries the caller's policy for a NULL outcome (e.g. a
// WHERE clause never jumps on NULL, a CHECK constraint's failure arm
// does) through every recursive call unchanged, including across a
// NOT boundary: NOT NULL is still NULL, so the NULL-handling policy
// that applies to e also applies to NOT e. It surfaces on the VM side
// as P1 on both the generic If/IfNot fallback and the fused
// comparison-jump form below.
func EmitBranchTrue(p *Program, e ast.Expr, target Label, jumpIfNull bool) {
	switch n := e.(type) {
	case *ast.BinaryOp:
		switch {
		case n.Op == ast.OpAnd:
			fallThrough := p.NewLabel()
			EmitBranchFalse(p, n.Left, fallThrough, jumpIfNull)
			EmitBranchTrue(p, n.Right, target, jumpIfNull)
			p.ResolveLabel(fallThrough)
			return
		case n.Op == ast.OpOr:
			EmitBranchTrue(p, n.Left, target, jumpIfNull)
			EmitBranchTrue(p, n.Right, target, jumpIfNull)
			return
		case n.Op.IsComparison():
			EmitValue(p, n.Left)
			EmitValue(p, n.Right)
			p.EmitJump(comparisonOpcode(p, n), boolToInt(jumpIfNull), target)
			return
		}
	case *ast.UnaryOp:
		if n.Op == ast.OpNot {
			EmitBranchFalse(p, n.Operand, target, jumpIfNull)
			return
		}
	}
	EmitValue(p, e)
	p.EmitJump(OpIf, boolToInt(jumpIfNull), target)
}

// EmitBranchFalse is EmitBranchTrue's dual: jump to target iff e
// evaluates falsy. A direct comparison still emits the fused jump
// form, using the negated relation (Eq<->Ne, Lt<->Ge, Gt<->Le) so the
// jump still fires on "the comparison's result is false" without ever
// pushing a boolean onto the stack.
func EmitBranchFalse(p *Program, e ast.Expr, target Label, jumpIfNull bool) {
	switch n := e.(type) {
	case *ast.BinaryOp:
		switch {
		case n.Op == ast.OpAnd:
			EmitBranchFalse(p, n.Left, target, jumpIfNull)
			EmitBranchFalse(p, n.Right, target, jumpIfNull)
			return
		case n.Op == ast.OpOr:
			fallThrough := p.NewLabel()
			EmitBranchTrue(p, n.Left, fallThrough, jumpIfNull)
			EmitBranchFalse(p, n.Right, target, jumpIfNull)
			p.ResolveLabel(fallThrough)
			return
		case n.Op.IsComparison():
			EmitValue(p, n.Left)
			EmitValue(p, n.Right)
			p.EmitJump(comparisonOpcode(p, n).Negate(), boolToInt(jumpIfNull), target)
			return
		}
	case *ast.UnaryOp:
		if n.Op == ast.OpNot {
			EmitBranchTrue(p, n.Operand, target, jumpIfNull)
			return
		}
	}
	EmitValue(p, e)
	p.EmitJump(OpIfNot, boolToInt(jumpIfNull), target)
}
