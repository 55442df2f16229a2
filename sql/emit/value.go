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
	"github.com/dolthub/sqlcore/internal/sqlerr"
	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/resolve"
	"github.com/dolthub/sqlcore/sql/types"
)

var binOpcode = map[ast.BinOp]Opcode{
	ast.OpAdd: OpAdd, ast.OpSub: OpSubtract, ast.OpMul: OpMultiply,
	ast.OpDiv: OpDivide, ast.OpRem: OpRemainder,
	ast.OpBitAnd: OpBitAnd, ast.OpBitOr: OpBitOr,
	ast.OpShiftLeft: OpShiftLeft, ast.OpShiftRight: OpShiftRight,
	ast.OpAnd: OpAnd, ast.OpOr: OpOr,
	ast.OpEq: OpEq, ast.OpNe: OpNe, ast.OpLt: OpLt,
	ast.OpLe: OpLe, ast.OpGt: OpGt, ast.OpGe: OpGe,
}

// EmitValue appends instructions that leave e's runtime value on top
// of the VM stack (spec.md §4.3, §6 "emit-value"). It is the core
// recursive emission function; EmitBranchTrue/EmitBranchFalse reuse it
// for every sub-expression that isn't itself a short-circuit boolean
// connective or a comparison.
//
// The outermost call on a given expression tree opens a span via
// p.Tracer (spec.md's ambient tracing convention); recursive calls
// made while that span is open are tracked via p.depth rather than
// each opening their own, so one EmitValue(p, whereClause) call
// produces one span covering the whole tree instead of one per node.
func EmitValue(p *Program, e ast.Expr) {
	if p.depth == 0 {
		span := p.Tracer.StartSpan("emit.Value")
		defer span.Finish()
	}
	p.depth++
	defer func() { p.depth-- }()

	switch n := e.(type) {
	case nil:
		p.Emit(Instr{Op: OpNull})

	case *ast.Literal:
		emitLiteral(p, n)

	case *ast.ResolvedColumn:
		emitColumn(p, n)

	case *ast.UnresolvedColumn:
		p.err.Set(sqlerr.ErrMisuse.New("emit: unresolved column reached the emitter"))

	case *ast.BinaryOp:
		emitBinaryValue(p, n)

	case *ast.UnaryOp:
		emitUnaryValue(p, n)

	case *ast.FuncCall:
		emitFuncCall(p, n)

	case *ast.AggFuncCall:
		p.Emit(Instr{Op: OpAggGet, P1: n.AggSlot})

	case *ast.In:
		emitInValue(p, n)

	case *ast.Between:
		emitBetweenValue(p, n)

	case *ast.Case:
		emitCaseValue(p, n)

	case *ast.ScalarSubquery:
		p.Emit(Instr{Op: OpMemLoad, P1: n.Cell})

	case *ast.Alias:
		EmitValue(p, n.Left)

	case *ast.Raise:
		emitRaise(p, n)

	default:
		p.err.Set(sqlerr.ErrMisuse.New("emit: unknown expression node"))
	}
}

func emitLiteral(p *Program, n *ast.Literal) {
	switch n.Kind {
	case ast.LitNull:
		p.Emit(Instr{Op: OpNull})
	case ast.LitInteger:
		if p.Options.CoerceOversizedIntegers && types.OversizedInteger(n.Tok.Text) {
			p.Emit(Instr{Op: OpString, P3: []byte(n.Tok.Text)})
			return
		}
		p.Emit(Instr{Op: OpInteger, P3: []byte(n.Tok.Text)})
	case ast.LitFloat:
		p.Emit(Instr{Op: OpFloat, P3: []byte(n.Tok.Text)})
	case ast.LitString:
		p.Emit(Instr{Op: OpString, P3: stringLiteralBytes(n.Tok.Text)})
	case ast.LitVariable:
		p.Emit(Instr{Op: OpVariable, P3: []byte(n.Tok.Text)})
	default:
		p.err.Set(sqlerr.ErrMisuse.New("emit: unknown literal kind"))
	}
}

func emitColumn(p *Program, n *ast.ResolvedColumn) {
	if n.ColumnIndex == -1 {
		p.Emit(Instr{Op: OpRecno, P1: n.TableCursor})
		return
	}
	p.Emit(Instr{Op: OpColumn, P1: n.TableCursor, P2: n.ColumnIndex})
}

// comparisonOpcode picks the numeric or text variant of a comparison
// per the text-variant = numeric-variant + 6 identity (spec.md §4.3,
// §6), gated on Options.SchemaFormat the way the source gates its
// affinity-biased collation choice on the on-disk schema version.
func comparisonOpcode(p *Program, n *ast.BinaryOp) Opcode {
	op := binOpcode[n.Op]
	if p.Options.SchemaFormat < 4 {
		return op
	}
	if resolve.Affinity(n) == types.AffinityText {
		return op.TextVariant()
	}
	return op
}

func emitBinaryValue(p *Program, n *ast.BinaryOp) {
	switch {
	case n.Op == ast.OpConcat:
		EmitValue(p, n.Left)
		EmitValue(p, n.Right)
		p.Emit(Instr{Op: OpConcat})

	case n.Op == ast.OpLike || n.Op == ast.OpGlob:
		name := "like"
		if n.Op == ast.OpGlob {
			name = "glob"
		}
		EmitValue(p, n.Left)
		EmitValue(p, n.Right)
		p.Emit(Instr{Op: OpFunction, P1: 2, P3: []byte(name)})

	case n.Op.IsComparison():
		EmitValue(p, n.Left)
		EmitValue(p, n.Right)
		p.Emit(Instr{Op: comparisonOpcode(p, n)})

	case n.Op == ast.OpShiftLeft || n.Op == ast.OpShiftRight:
		// Shift amount evaluates before the value it shifts (spec.md
		// §4.3: operand evaluation order is reversed for shifts).
		EmitValue(p, n.Right)
		EmitValue(p, n.Left)
		p.Emit(Instr{Op: binOpcode[n.Op]})

	default: // arithmetic, bitwise AND/OR, logical AND/OR
		EmitValue(p, n.Left)
		EmitValue(p, n.Right)
		p.Emit(Instr{Op: binOpcode[n.Op]})
	}
}

func emitUnaryValue(p *Program, n *ast.UnaryOp) {
	switch n.Op {
	case ast.OpNeg:
		if lit, ok := n.Operand.(*ast.Literal); ok && (lit.Kind == ast.LitInteger || lit.Kind == ast.LitFloat) {
			fused := &ast.Literal{Kind: lit.Kind, Tok: ast.Token{Text: negateNumeralText(lit.Tok.Text), Owned: true}, Sp: n.Sp}
			emitLiteral(p, fused)
			return
		}
		p.Emit(Instr{Op: OpInteger, P3: []byte("0")})
		EmitValue(p, n.Operand)
		p.Emit(Instr{Op: OpSubtract})

	case ast.OpPos:
		EmitValue(p, n.Operand) // unary plus is a no-op at emit time

	case ast.OpBitNot:
		EmitValue(p, n.Operand)
		p.Emit(Instr{Op: OpBitNot})

	case ast.OpNot:
		EmitValue(p, n.Operand)
		p.Emit(Instr{Op: OpNot})

	case ast.OpIsNull, ast.OpNotNull:
		emitNullTest(p, n)

	default:
		p.err.Set(sqlerr.ErrMisuse.New("emit: unknown unary operator"))
	}
}

// emitNullTest lowers ISNULL/NOTNULL to "push 1, push operand,
// conditional jump that skips a decrement-by-one, decrement" (spec.md
// §4.3): the jump consumes the operand, leaving only the 0/1 result
// for the surrounding expression.
func emitNullTest(p *Program, n *ast.UnaryOp) {
	p.Emit(Instr{Op: OpInteger, P3: []byte("1")})
	EmitValue(p, n.Operand)
	skip := p.NewLabel()
	if n.Op == ast.OpIsNull {
		p.EmitJump(OpIfNull, 0, skip)
	} else {
		p.EmitJump(OpIfNotNull, 0, skip)
	}
	p.Emit(Instr{Op: OpDecr})
	p.ResolveLabel(skip)
}

func emitFuncCall(p *Program, n *ast.FuncCall) {
	args := n.Args.Exprs()
	for _, a := range args {
		EmitValue(p, a)
	}
	p.Emit(Instr{Op: OpFunction, P1: len(args), P3: []byte(n.Name.Text)})
}

// emitInValue lowers `x IN (...)` to the same push-1/test/decrement
// shape as emitNullTest, then negates the result for NOT IN — tri-
// valued NULL propagation through the membership test is the VM's
// responsibility (spec.md §1: the VM is an external collaborator),
// not this module's.
func emitInValue(p *Program, n *ast.In) {
	p.Emit(Instr{Op: OpInteger, P3: []byte("1")})
	EmitValue(p, n.Left)
	found := p.NewLabel()
	if n.Subselect != nil {
		p.EmitJump(OpFound, n.CursorID, found)
	} else {
		p.EmitJump(OpSetFound, n.SetID, found)
	}
	p.Emit(Instr{Op: OpDecr})
	p.ResolveLabel(found)
	if n.Not {
		p.Emit(Instr{Op: OpNot})
	}
}

// emitBetweenValue reproduces the canonical sequence for `x BETWEEN lo
// AND hi`: evaluate the operand once, duplicate it for the two bound
// comparisons instead of re-evaluating (spec.md §4.3, Testable
// Property: Column, Dup, lo, Ge, Pull 1, hi, Le, And).
func emitBetweenValue(p *Program, n *ast.Between) {
	EmitValue(p, n.Operand)
	p.Emit(Instr{Op: OpDup})
	EmitValue(p, n.Lo)
	p.Emit(Instr{Op: OpGe})
	p.Emit(Instr{Op: OpPull, P1: 1})
	EmitValue(p, n.Hi)
	p.Emit(Instr{Op: OpLe})
	p.Emit(Instr{Op: OpAnd})
	if n.Not {
		p.Emit(Instr{Op: OpNot})
	}
}

// emitCaseValue re-evaluates the base expression at each WHEN branch
// rather than duplicating it once on the stack and threading a Pull
// through an arbitrary number of branches. That Dup/Pull bookkeeping
// works cleanly for BETWEEN's fixed two comparisons; for N branches it
// would need a running stack-depth count through every emitted THEN,
// which buys nothing when the base expression is cheap to recompute
// (as it virtually always is — a column reference or a simple scalar).
func emitCaseValue(p *Program, n *ast.Case) {
	end := p.NewLabel()
	for _, w := range n.Whens {
		next := p.NewLabel()
		if n.Base != nil {
			EmitValue(p, n.Base)
			EmitValue(p, w.When)
			p.Emit(Instr{Op: OpEq})
		} else {
			EmitValue(p, w.When)
		}
		p.EmitJump(OpIfNot, 0, next)
		EmitValue(p, w.Then)
		p.EmitJump(OpGoto, 0, end)
		p.ResolveLabel(next)
	}
	if n.Else != nil {
		EmitValue(p, n.Else)
	} else {
		p.Emit(Instr{Op: OpNull})
	}
	p.ResolveLabel(end)
}

// emitRaise emits the halt/error primitive for RAISE(...). Routing
// RAISE(IGNORE) to "skip the rest of this trigger" instead of aborting
// the whole statement is the statement compiler's job once it knows
// the enclosing trigger's exit target; this module only emits the
// primitive the compiler rewrites or follows.
//
// RAISE outside a trigger body is an error (spec.md §4.3): a Program
// not marked InTrigger latches sqlerr.ErrRaiseOutsideTrigger instead of
// emitting the primitive.
func emitRaise(p *Program, n *ast.Raise) {
	if !p.InTrigger {
		p.err.Set(sqlerr.ErrRaiseOutsideTrigger.New())
		return
	}
	p.Emit(Instr{Op: OpHalt, P1: n.Code, P3: []byte(n.Message.Text)})
}
