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

package ast

import (
	"testing"

	"github.com/dolthub/sqlcore/internal/arena"
)

func sampleTree() Expr {
	args := NewExprList()
	args.Append(&Literal{Kind: LitInteger, Tok: Token{Text: "1"}}, "", SortNone)
	args.Append(&UnresolvedColumn{Table: "t", Column: "y"}, "", SortNone)

	inList := NewExprList()
	inList.Append(&Literal{Kind: LitInteger, Tok: Token{Text: "2"}}, "", SortNone)
	inList.Append(&Literal{Kind: LitInteger, Tok: Token{Text: "3"}}, "", SortNone)

	return &Case{
		Base: &BinaryOp{
			Op:    OpAdd,
			Left:  &UnresolvedColumn{Table: "t", Column: "x"},
			Right: &Literal{Kind: LitInteger, Tok: Token{Text: "1"}},
		},
		Whens: []CaseWhen{
			{
				When: &In{Left: &UnresolvedColumn{Column: "z"}, List: inList, SetID: -1, CursorID: -1},
				Then: &FuncCall{Name: Token{Text: "abs"}, Args: args},
			},
		},
		Else: &UnaryOp{Op: OpNeg, Operand: &Literal{Kind: LitInteger, Tok: Token{Text: "9"}}},
	}
}

// TestDeepCopyProducesStructurallyEqualIndependentTree is spec.md §8
// Testable Property 1: DeepCopy(e) compares equal to e under Compare
// but shares no mutable state with it.
func TestDeepCopyProducesStructurallyEqualIndependentTree(t *testing.T) {
	orig := sampleTree()
	cp := DeepCopy(orig)

	if !Compare(orig, cp) {
		t.Fatalf("DeepCopy result does not compare equal to the original")
	}

	// Mutating the copy's leaves must not affect the original.
	origCase := orig.(*Case)
	cpCase := cp.(*Case)
	if origCase == cpCase {
		t.Fatalf("DeepCopy returned the same node, not a copy")
	}

	cpCase.Whens[0].Then.(*FuncCall).Name.Text = "mutated"
	origName := origCase.Whens[0].Then.(*FuncCall).Name.Text
	if origName != "abs" {
		t.Fatalf("mutating the copy's token mutated the original's: got %q", origName)
	}

	// A Literal's token copy must be independently addressable too.
	origLit := origCase.Base.(*BinaryOp).Right.(*Literal)
	cpLit := cpCase.Base.(*BinaryOp).Right.(*Literal)
	cpLit.Tok.Text = "changed"
	if origLit.Tok.Text != "1" {
		t.Fatalf("mutating a copied literal token mutated the original: got %q", origLit.Tok.Text)
	}
}

// TestCompareDetectsStructuralDifference checks Compare is not
// trivially true — it must notice an operator or child mismatch.
func TestCompareDetectsStructuralDifference(t *testing.T) {
	a := &BinaryOp{Op: OpAdd, Left: &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}, Right: &Literal{Kind: LitInteger, Tok: Token{Text: "2"}}}
	b := &BinaryOp{Op: OpSub, Left: &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}, Right: &Literal{Kind: LitInteger, Tok: Token{Text: "2"}}}
	if Compare(a, b) {
		t.Fatalf("Compare treated a + and a - node as equal")
	}

	c := &BinaryOp{Op: OpAdd, Left: &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}, Right: &Literal{Kind: LitInteger, Tok: Token{Text: "9"}}}
	if Compare(a, c) {
		t.Fatalf("Compare treated trees with different literal operands as equal")
	}
}

// TestCompareSubselectsAlwaysUnequal checks the documented exception:
// two ScalarSubquery nodes never compare equal, even to themselves.
func TestCompareSubselectsAlwaysUnequal(t *testing.T) {
	sub := &ScalarSubquery{Cell: -1}
	if Compare(sub, sub) {
		t.Fatalf("Compare treated a subselect-bearing node as equal to itself")
	}
}

// TestCompareNilHandling checks both-nil compares equal and one-nil
// compares unequal, since DeepCopy relies on this for optional fields
// like Case.Else.
func TestCompareNilHandling(t *testing.T) {
	if !Compare(nil, nil) {
		t.Fatalf("Compare(nil, nil) should be true")
	}
	var lit Expr = &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}
	if Compare(nil, lit) || Compare(lit, nil) {
		t.Fatalf("Compare should treat a nil/non-nil pair as unequal")
	}
}

// TestChildrenOrderMatchesEvaluationOrder spot-checks that a few node
// kinds' Children() list their operands in evaluation order.
func TestChildrenOrderMatchesEvaluationOrder(t *testing.T) {
	left := &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}
	right := &Literal{Kind: LitInteger, Tok: Token{Text: "2"}}
	bin := &BinaryOp{Op: OpAdd, Left: left, Right: right}
	kids := bin.Children()
	if len(kids) != 2 || kids[0] != Expr(left) || kids[1] != Expr(right) {
		t.Fatalf("BinaryOp.Children() order mismatch: %v", kids)
	}

	base := &Literal{Kind: LitInteger, Tok: Token{Text: "0"}}
	when := &Literal{Kind: LitInteger, Tok: Token{Text: "1"}}
	then := &Literal{Kind: LitInteger, Tok: Token{Text: "2"}}
	els := &Literal{Kind: LitInteger, Tok: Token{Text: "3"}}
	cs := &Case{Base: base, Whens: []CaseWhen{{When: when, Then: then}}, Else: els}
	ckids := cs.Children()
	want := []Expr{base, when, then, els}
	if len(ckids) != len(want) {
		t.Fatalf("Case.Children() length mismatch: got %d want %d", len(ckids), len(want))
	}
	for i := range want {
		if ckids[i] != want[i] {
			t.Fatalf("Case.Children()[%d] mismatch", i)
		}
	}
}

// TestAggTableAddColumnDeduplicates checks AddColumn reuses an
// existing structurally-equal entry instead of duplicating it
// (spec.md §3: "each distinct column reference ... gets a
// non-aggregate slot").
func TestAggTableAddColumnDeduplicates(t *testing.T) {
	table := NewAggTable()
	c1 := &ResolvedColumn{TableCursor: 0, ColumnIndex: 1, AggSlot: -1}
	c2 := &ResolvedColumn{TableCursor: 0, ColumnIndex: 1, AggSlot: -1}
	c3 := &ResolvedColumn{TableCursor: 0, ColumnIndex: 2, AggSlot: -1}

	i1 := table.AddColumn(c1)
	i2 := table.AddColumn(c2)
	i3 := table.AddColumn(c3)

	if i1 != i2 {
		t.Fatalf("AddColumn did not dedupe structurally-equal columns: %d != %d", i1, i2)
	}
	if i3 == i1 {
		t.Fatalf("AddColumn merged distinct columns into one slot")
	}
	if len(table.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table.Entries))
	}
}

// TestFactoryConstructsAndReportsOOM exercises spec.md §4.1's
// construction entry points, including the OOM-reporting path once the
// backing arena's budget is exhausted.
func TestFactoryConstructsAndReportsOOM(t *testing.T) {
	var nilFactory *Factory
	lit, ok := nilFactory.NewLiteral(LitInteger, Token{Text: "1"}, Span{})
	if !ok || lit == nil {
		t.Fatalf("a nil Factory should never report OOM")
	}

	ctx := arena.New(128) // two nodeCost (64) allocations fit, a third doesn't
	f := NewFactory(ctx)

	col, ok := f.NewUnresolvedColumn("", "t", "x", Span{})
	if !ok || col == nil {
		t.Fatalf("first allocation should have succeeded")
	}
	one, ok := f.NewLiteral(LitInteger, Token{Text: "1"}, Span{})
	if !ok || one == nil {
		t.Fatalf("second allocation should have succeeded")
	}
	_, ok = f.NewBinary(OpAdd, col, one, Token{Text: "+"}, Span{})
	if ok {
		t.Fatalf("third allocation should have been refused once the budget was exhausted")
	}
}

// TestFactoryNewBinarySpanCoversOperands checks the documented span
// rule: when both operands carry a span, the result covers both.
func TestFactoryNewBinarySpanCoversOperands(t *testing.T) {
	f := NewFactory(nil)
	left, _ := f.NewLiteral(LitInteger, Token{Text: "1"}, Span{Start: 0, End: 1})
	right, _ := f.NewLiteral(LitInteger, Token{Text: "2"}, Span{Start: 4, End: 5})
	bin, ok := f.NewBinary(OpAdd, left, right, Token{Text: "+"}, Span{Start: 1, End: 4})
	if !ok {
		t.Fatalf("construction with a nil-free Factory should never fail")
	}
	if bin.Sp.Start != 0 || bin.Sp.End != 5 {
		t.Fatalf("expected span to cover both operands, got %+v", bin.Sp)
	}
}

// TestDeleteClearsOwnedChildren checks Delete is null-safe and clears
// every owned child slot it visits (spec.md §4.1's explicit-free op).
func TestDeleteClearsOwnedChildren(t *testing.T) {
	bin := &BinaryOp{
		Op:    OpAdd,
		Left:  &Literal{Kind: LitInteger, Tok: Token{Text: "1"}},
		Right: &Literal{Kind: LitInteger, Tok: Token{Text: "2"}},
	}
	Delete(bin)
	if bin.Left != nil || bin.Right != nil {
		t.Fatalf("Delete did not clear BinaryOp's owned children")
	}

	// A second Delete through the now-cleared parent must be a no-op,
	// not a panic.
	Delete(bin)

	// Delete(nil) must not panic.
	Delete(nil)
}

// TestAggTableAddAggregateCallNeverDeduplicates checks two textually
// identical aggregate calls still get distinct accumulator slots.
func TestAggTableAddAggregateCallNeverDeduplicates(t *testing.T) {
	table := NewAggTable()
	call := func() Expr {
		return &AggFuncCall{Name: Token{Text: "sum"}, Args: NewExprList(), AggSlot: -1}
	}
	i1 := table.AddAggregateCall(call(), "sum")
	i2 := table.AddAggregateCall(call(), "sum")
	if i1 == i2 {
		t.Fatalf("AddAggregateCall deduplicated two distinct aggregate calls")
	}
	if len(table.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table.Entries))
	}
}
