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
	"testing"

	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/types"
	"github.com/stretchr/testify/require"
)

func intLit(s string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInteger, Tok: ast.Token{Text: s}}
}

func col(cursor, index int) *ast.ResolvedColumn {
	return &ast.ResolvedColumn{TableCursor: cursor, ColumnIndex: index, Affinity: types.AffinityNumeric}
}

func TestComparisonTextOffset(t *testing.T) {
	require.Equal(t, OpEqText, OpEq.TextVariant())
	require.Equal(t, OpGeText, OpGe.TextVariant())
	require.True(t, OpEq.IsComparison())
	require.True(t, OpGeText.IsComparison())
	require.False(t, OpAdd.IsComparison())
}

func TestEmitValueInteger(t *testing.T) {
	p := New(DefaultOptions())
	EmitValue(p, intLit("7"))
	require.NoError(t, p.Err())
	require.Len(t, p.Instrs, 1)
	require.Equal(t, OpInteger, p.Instrs[0].Op)
	require.Equal(t, "7", string(p.Instrs[0].P3))
}

// TestEmitBetween pins down the canonical sequence for x BETWEEN lo
// AND hi: evaluate operand once, duplicate it for the two bound
// comparisons instead of re-evaluating.
func TestEmitBetween(t *testing.T) {
	p := New(DefaultOptions())
	b := &ast.Between{Operand: col(1, 0), Lo: intLit("2"), Hi: intLit("4")}
	EmitValue(p, b)
	require.NoError(t, p.Err())

	ops := make([]Opcode, len(p.Instrs))
	for i, in := range p.Instrs {
		ops[i] = in.Op
	}
	require.Equal(t, []Opcode{OpColumn, OpDup, OpInteger, OpGe, OpPull, OpInteger, OpLe, OpAnd}, ops)
	require.Equal(t, 1, p.Instrs[4].P1) // Pull 1
}

func TestEmitBetweenNegated(t *testing.T) {
	p := New(DefaultOptions())
	b := &ast.Between{Not: true, Operand: col(1, 0), Lo: intLit("2"), Hi: intLit("4")}
	EmitValue(p, b)
	require.NoError(t, p.Err())
	require.Equal(t, OpNot, p.Instrs[len(p.Instrs)-1].Op)
}

func TestEmitConcat(t *testing.T) {
	p := New(DefaultOptions())
	n := &ast.BinaryOp{Op: ast.OpConcat, Left: col(1, 0), Right: col(1, 1)}
	EmitValue(p, n)
	require.NoError(t, p.Err())
	require.Equal(t, OpConcat, p.Instrs[len(p.Instrs)-1].Op)
}

// TestShortCircuitAnd checks that the right operand of an AND in a
// WHERE-clause branch position never executes unless the left operand
// already passed — EmitBranchFalse on the left jumps straight past the
// right operand's instructions on a left-false outcome.
func TestShortCircuitAnd(t *testing.T) {
	p := New(DefaultOptions())
	left := &ast.BinaryOp{Op: ast.OpEq, Left: col(1, 0), Right: intLit("1")}
	right := &ast.BinaryOp{Op: ast.OpEq, Left: col(1, 1), Right: intLit("2")}
	and := &ast.BinaryOp{Op: ast.OpAnd, Left: left, Right: right}

	falseTarget := p.NewLabel()
	EmitBranchFalse(p, and, falseTarget, false)
	p.ResolveLabel(falseTarget)
	_, err := p.Seal()
	require.NoError(t, err)

	// Left operand's false-branch jump (a fused, negated comparison
	// jump) must target the end of the program, past all of the right
	// operand's instructions, i.e. short-circuit past them rather than
	// falling through unconditionally.
	var firstJump int = -1
	for i, in := range p.Instrs {
		if in.Op == OpIfNot || in.Op.IsComparison() {
			firstJump = i
			break
		}
	}
	require.GreaterOrEqual(t, firstJump, 0)
	require.Equal(t, len(p.Instrs), p.Instrs[firstJump].P2, "left-false jump must skip the entire right operand")
}

func TestEmitCaseSearchedWithElse(t *testing.T) {
	p := New(DefaultOptions())
	c := &ast.Case{
		Whens: []ast.CaseWhen{
			{When: &ast.BinaryOp{Op: ast.OpEq, Left: col(1, 0), Right: intLit("1")}, Then: intLit("100")},
		},
		Else: intLit("0"),
	}
	EmitValue(p, c)
	instrs, err := p.Seal()
	require.NoError(t, err)

	var sawThen, sawElse bool
	for _, in := range instrs {
		if in.Op == OpInteger && string(in.P3) == "100" {
			sawThen = true
		}
		if in.Op == OpInteger && string(in.P3) == "0" {
			sawElse = true
		}
	}
	require.True(t, sawThen)
	require.True(t, sawElse)
}

func TestEmitIsNull(t *testing.T) {
	p := New(DefaultOptions())
	u := &ast.UnaryOp{Op: ast.OpIsNull, Operand: col(1, 0)}
	EmitValue(p, u)
	_, err := p.Seal()
	require.NoError(t, err)
	require.Equal(t, OpInteger, p.Instrs[0].Op)
	require.Equal(t, OpColumn, p.Instrs[1].Op)
	require.Equal(t, OpIfNull, p.Instrs[2].Op)
	require.Equal(t, OpDecr, p.Instrs[3].Op)
}

func TestEmitListSkipsDone(t *testing.T) {
	p := New(DefaultOptions())
	l := ast.NewExprList()
	l.Append(intLit("1"), "", ast.SortNone)
	l.Append(intLit("2"), "", ast.SortNone)
	EmitList(p, l)
	require.Len(t, p.Instrs, 2)
	EmitList(p, l) // second pass: both items already Done, nothing new emitted
	require.Len(t, p.Instrs, 2)
}

func TestUnresolvedColumnIsProgramError(t *testing.T) {
	p := New(DefaultOptions())
	EmitValue(p, &ast.UnresolvedColumn{Column: "x"})
	require.Error(t, p.Err())
}

// TestRaiseOutsideTriggerIsProgramError checks emitRaise refuses to
// emit Halt on a Program that was never marked InTrigger.
func TestRaiseOutsideTriggerIsProgramError(t *testing.T) {
	p := New(DefaultOptions())
	EmitValue(p, &ast.Raise{Action: ast.RaiseAbort, Code: 1, Message: ast.Token{Text: "bad"}})
	require.Error(t, p.Err())
}

// TestRaiseInsideTriggerEmitsHalt checks the same RAISE node lowers to
// Halt once the Program is marked InTrigger.
func TestRaiseInsideTriggerEmitsHalt(t *testing.T) {
	p := New(DefaultOptions())
	p.InTrigger = true
	EmitValue(p, &ast.Raise{Action: ast.RaiseAbort, Code: 1, Message: ast.Token{Text: "bad"}})
	require.NoError(t, p.Err())
	require.Len(t, p.Instrs, 1)
	require.Equal(t, OpHalt, p.Instrs[0].Op)
}

// TestEmitBranchTrueFusesComparison checks a bare comparison in branch
// context never leaves a boolean on the stack — it emits the operands
// then a single jump instruction using the comparison's own opcode,
// with P1 carrying the caller's jump-if-null flag and P2 the target.
func TestEmitBranchTrueFusesComparison(t *testing.T) {
	p := New(DefaultOptions())
	cmp := &ast.BinaryOp{Op: ast.OpLt, Left: col(1, 0), Right: intLit("5")}
	target := p.NewLabel()
	EmitBranchTrue(p, cmp, target, true)
	p.ResolveLabel(target)
	_, err := p.Seal()
	require.NoError(t, err)

	require.Len(t, p.Instrs, 3)
	require.Equal(t, OpColumn, p.Instrs[0].Op)
	require.Equal(t, OpInteger, p.Instrs[1].Op)
	require.Equal(t, OpLt, p.Instrs[2].Op)
	require.Equal(t, 1, p.Instrs[2].P1, "jump-if-null flag should reach P1")
	require.Equal(t, len(p.Instrs), p.Instrs[2].P2)
}

// TestEmitBranchFalseNegatesFusedComparison checks the false-branch
// form uses the complementary relation instead of re-testing the
// original one and inverting with a separate Not.
func TestEmitBranchFalseNegatesFusedComparison(t *testing.T) {
	p := New(DefaultOptions())
	cmp := &ast.BinaryOp{Op: ast.OpEq, Left: col(1, 0), Right: intLit("5")}
	target := p.NewLabel()
	EmitBranchFalse(p, cmp, target, false)
	p.ResolveLabel(target)
	_, err := p.Seal()
	require.NoError(t, err)

	require.Len(t, p.Instrs, 3)
	require.Equal(t, OpNe, p.Instrs[2].Op)
	require.Equal(t, 0, p.Instrs[2].P1)
}

// TestEmitBranchGenericFallbackCarriesJumpIfNull checks a non-
// comparison expression's generic If/IfNot fallback still threads the
// jump-if-null flag into P1 rather than discarding it.
func TestEmitBranchGenericFallbackCarriesJumpIfNull(t *testing.T) {
	p := New(DefaultOptions())
	target := p.NewLabel()
	EmitBranchTrue(p, col(1, 0), target, true)
	p.ResolveLabel(target)
	_, err := p.Seal()
	require.NoError(t, err)

	require.Equal(t, OpIf, p.Instrs[len(p.Instrs)-1].Op)
	require.Equal(t, 1, p.Instrs[len(p.Instrs)-1].P1)
}
