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

package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/emit/funcreg"
	"github.com/dolthub/sqlcore/sql/types"
)

func col(table, name string) *ast.UnresolvedColumn {
	return &ast.UnresolvedColumn{Table: table, Column: name}
}

func lit(text string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInteger, Tok: ast.Token{Text: text}}
}

// TestResolveBindsColumnAndInfersAffinity is spec.md §8 Scenario A.
func TestResolveBindsColumnAndInfersAffinity(t *testing.T) {
	sources := []TableSource{{
		Cursor: 0,
		Name:   "t",
		Alias:  "A",
		Columns: []ColumnDef{
			{Name: "x", Affinity: types.AffinityNumeric},
			{Name: "y", Affinity: types.AffinityText},
		},
	}}

	expr := &ast.BinaryOp{Op: ast.OpAdd, Left: col("", "x"), Right: lit("1")}

	ctx := NewContext(nil)
	out, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 0, errCount)

	bin := out.(*ast.BinaryOp)
	rc, ok := bin.Left.(*ast.ResolvedColumn)
	require.True(t, ok)
	require.Equal(t, 0, rc.TableCursor)
	require.Equal(t, 0, rc.ColumnIndex)
	require.Equal(t, types.AffinityNumeric, rc.Affinity)
}

// TestResolveRewritesAliasInWhere is spec.md §8 Scenario B: a bare name
// that matches a result-set alias (and no schema column) rewrites to
// an Alias node wrapping a deep copy of the aliased expression.
func TestResolveRewritesAliasInWhere(t *testing.T) {
	sources := []TableSource{{
		Cursor: 0,
		Name:   "t",
		Columns: []ColumnDef{
			{Name: "a", Affinity: types.AffinityNumeric},
			{Name: "b", Affinity: types.AffinityNumeric},
		},
	}}
	aExpr := &ast.BinaryOp{Op: ast.OpAdd, Left: col("", "a"), Right: col("", "b")}
	aliases := []ResultAlias{{Name: "k", Expr: aExpr}}

	expr := &ast.BinaryOp{Op: ast.OpLt, Left: col("", "k"), Right: lit("10")}

	ctx := NewContext(nil)
	out, errCount := Resolve(ctx, sources, aliases, expr)
	require.Equal(t, 0, errCount)

	bin := out.(*ast.BinaryOp)
	al, ok := bin.Left.(*ast.Alias)
	require.True(t, ok)
	require.Equal(t, "k", al.Name)
	require.True(t, ast.Compare(al.Left, aExpr))
	// The rewrite must be an independent copy, not the same nodes.
	require.NotSame(t, aExpr, al.Left)
}

// TestResolveAmbiguousColumnName is spec.md §8 Scenario C.
func TestResolveAmbiguousColumnName(t *testing.T) {
	sources := []TableSource{
		{Cursor: 0, Name: "t1", Columns: []ColumnDef{{Name: "x"}}},
		{Cursor: 1, Name: "t2", Columns: []ColumnDef{{Name: "x"}}},
	}
	expr := col("", "x")

	ctx := NewContext(nil)
	out, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 1, errCount)
	require.Equal(t, "ambiguous column name: x", ctx.FirstError())
	// The node is left as-is on a hard error.
	require.Same(t, expr, out)
}

// TestAnalyzeAggregatesClassifiesCountStar is spec.md §8 Scenario D.
func TestAnalyzeAggregatesClassifiesCountStar(t *testing.T) {
	expr := &ast.BinaryOp{
		Op:   ast.OpAdd,
		Left: &ast.FuncCall{Name: ast.Token{Text: "count"}, Args: ast.NewExprList()},
		Right: lit("1"),
	}

	ctx := NewContext(nil)
	out, errCount := AnalyzeAggregates(ctx, expr)
	require.Equal(t, 0, errCount)

	bin := out.(*ast.BinaryOp)
	agg, ok := bin.Left.(*ast.AggFuncCall)
	require.True(t, ok)
	require.Equal(t, "count", agg.Name.Text)

	require.Len(t, ctx.AggTable.Entries, 1)
	require.True(t, ctx.AggTable.Entries[0].IsAggregateCall)
	require.Equal(t, "count", ctx.AggTable.Entries[0].FuncName)
	require.Equal(t, 0, agg.AggSlot)
}

// TestResolveIdempotent is spec.md §8 Testable Property 2: running
// Resolve again over an already-resolved tree is a no-op that raises
// no further errors.
func TestResolveIdempotent(t *testing.T) {
	sources := []TableSource{{
		Cursor:  0,
		Name:    "t",
		Columns: []ColumnDef{{Name: "x", Affinity: types.AffinityNumeric}},
	}}
	expr := col("", "x")

	ctx := NewContext(nil)
	out, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 0, errCount)

	out2, errCount2 := Resolve(ctx, sources, nil, out)
	require.Equal(t, 0, errCount2)
	require.Same(t, out, out2)
}

// TestResolveAffinityDefaultsNumericForRowID checks the row-identifier
// binding (ColumnIndex == -1, via an integer-primary-key column) is
// always numeric-affine regardless of the matched column's declared
// affinity (spec.md §8 Testable Property 4).
func TestResolveAffinityDefaultsNumericForRowID(t *testing.T) {
	sources := []TableSource{{
		Cursor: 0,
		Name:   "t",
		Columns: []ColumnDef{
			{Name: "id", Affinity: types.AffinityText, IntegerPrimaryKey: true},
		},
	}}
	expr := col("", "id")

	ctx := NewContext(nil)
	out, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 0, errCount)

	rc := out.(*ast.ResolvedColumn)
	require.Equal(t, -1, rc.ColumnIndex)
	require.Equal(t, types.AffinityNumeric, rc.Affinity)
}

// TestResolveInValueListAllocatesSetID is spec.md §8 Testable
// Property 10: an IN (value-list) with every element constant
// allocates a fresh runtime lookup-set id instead of erroring.
func TestResolveInValueListAllocatesSetID(t *testing.T) {
	list := ast.NewExprList()
	list.Append(lit("1"), "", ast.SortNone)
	list.Append(lit("2"), "", ast.SortNone)

	expr := &ast.In{Left: col("", "x"), List: list, SetID: -1, CursorID: -1}

	sources := []TableSource{{Cursor: 0, Name: "t", Columns: []ColumnDef{{Name: "x"}}}}

	ctx := NewContext(nil)
	_, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 0, errCount)
	require.GreaterOrEqual(t, expr.SetID, 0)
}

// TestResolveInValueListRejectsNonConstant checks a non-constant
// element in an IN (value-list) is rejected rather than silently
// accepted.
func TestResolveInValueListRejectsNonConstant(t *testing.T) {
	list := ast.NewExprList()
	list.Append(col("", "y"), "", ast.SortNone)

	expr := &ast.In{Left: col("", "x"), List: list, SetID: -1, CursorID: -1}
	sources := []TableSource{{Cursor: 0, Name: "t", Columns: []ColumnDef{{Name: "x"}, {Name: "y"}}}}

	ctx := NewContext(nil)
	_, errCount := Resolve(ctx, sources, nil, expr)
	require.Equal(t, 1, errCount)
}

// TestCheckRejectsAggregateOutsideAggregateContext exercises the
// allow-aggregates=false branch of Check.
func TestCheckRejectsAggregateOutsideAggregateContext(t *testing.T) {
	ctx := NewContext(nil)
	expr := &ast.AggFuncCall{Name: ast.Token{Text: "count"}, Args: ast.NewExprList(), AggSlot: -1}

	hasAgg, errCount := Check(ctx, expr, false)
	require.True(t, hasAgg)
	require.Equal(t, 1, errCount)
}

// TestCheckFunctionArityAndExistence exercises spec.md §4.2's function
// arity/existence check via the default registry.
func TestCheckFunctionArityAndExistence(t *testing.T) {
	reg := funcreg.New()

	t.Run("unknown function", func(t *testing.T) {
		ctx := NewContext(reg)
		expr := &ast.FuncCall{Name: ast.Token{Text: "nope"}, Args: ast.NewExprList()}
		_, errCount := Check(ctx, expr, false)
		require.Equal(t, 1, errCount)
	})

	t.Run("wrong arity", func(t *testing.T) {
		ctx := NewContext(reg)
		args := ast.NewExprList()
		args.Append(lit("1"), "", ast.SortNone)
		args.Append(lit("2"), "", ast.SortNone)
		expr := &ast.FuncCall{Name: ast.Token{Text: "abs"}, Args: args}
		_, errCount := Check(ctx, expr, false)
		require.Equal(t, 1, errCount)
	})

	t.Run("known function ok", func(t *testing.T) {
		ctx := NewContext(reg)
		args := ast.NewExprList()
		args.Append(lit("1"), "", ast.SortNone)
		expr := &ast.FuncCall{Name: ast.Token{Text: "abs"}, Args: args}
		_, errCount := Check(ctx, expr, false)
		require.Equal(t, 0, errCount)
	})
}
