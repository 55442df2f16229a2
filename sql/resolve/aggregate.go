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
	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/emit/funcreg"
)

// AnalyzeAggregates walks expr, rewriting each FuncCall whose name is
// registered as an aggregate into an AggFuncCall and populating
// ctx.AggTable (spec.md §4.2, §6). Column references found while
// already inside an aggregate call are interned as non-aggregate
// slots (available to AggGet at evaluation time, spec.md §4.3);
// aggregate calls always get a fresh slot, never deduplicated.
//
// The source computes the aggregate-call's argument count as
// `pExpr.pList ? pExpr.pList.nExpr : 0` but falls through into the
// default case without a break, triggering a second recursive walk of
// the same arguments (DESIGN NOTES §9, unresolved). This port does not
// reproduce that: an aggregate's arguments are walked exactly once,
// in aggregate context, which is sufficient to populate every
// non-aggregate column slot inside them.
func AnalyzeAggregates(ctx *Context, expr ast.Expr) (ast.Expr, int) {
	before := ctx.ErrorCount()
	out := ctx.analyzeAgg(expr, false)
	return out, ctx.ErrorCount() - before
}

// analyzeAgg returns the (possibly rewritten) node. inAgg is true
// while walking the arguments of an aggregate call.
func (c *Context) analyzeAgg(e ast.Expr, inAgg bool) ast.Expr {
	switch n := e.(type) {
	case nil, *ast.Literal, *ast.Raise:
		return n

	case *ast.ResolvedColumn:
		if inAgg {
			n.AggSlot = c.AggTable.AddColumn(n)
		}
		return n

	case *ast.UnresolvedColumn:
		return n // unresolved; nothing to classify yet

	case *ast.BinaryOp:
		n.Left = c.analyzeAgg(n.Left, inAgg)
		n.Right = c.analyzeAgg(n.Right, inAgg)
		return n

	case *ast.UnaryOp:
		n.Operand = c.analyzeAgg(n.Operand, inAgg)
		return n

	case *ast.FuncCall:
		if isAggregateFunction(c.Registry, n.Name.Text, n.Args.Len()) {
			agg := &ast.AggFuncCall{Name: n.Name, Args: n.Args, Sp: n.Sp}
			agg.AggSlot = c.AggTable.AddAggregateCall(agg, n.Name.Text)
			c.analyzeAggList(agg.Args, true)
			return agg
		}
		c.analyzeAggList(n.Args, inAgg)
		return n

	case *ast.AggFuncCall:
		c.analyzeAggList(n.Args, true)
		return n

	case *ast.In:
		n.Left = c.analyzeAgg(n.Left, inAgg)
		c.analyzeAggList(n.List, inAgg)
		return n

	case *ast.Between:
		n.Operand = c.analyzeAgg(n.Operand, inAgg)
		n.Lo = c.analyzeAgg(n.Lo, inAgg)
		n.Hi = c.analyzeAgg(n.Hi, inAgg)
		return n

	case *ast.Case:
		n.Base = c.analyzeAgg(n.Base, inAgg)
		for i := range n.Whens {
			n.Whens[i].When = c.analyzeAgg(n.Whens[i].When, inAgg)
			n.Whens[i].Then = c.analyzeAgg(n.Whens[i].Then, inAgg)
		}
		n.Else = c.analyzeAgg(n.Else, inAgg)
		return n

	case *ast.ScalarSubquery, *ast.Alias:
		return n

	default:
		panic("resolve: analyzeAgg: unknown node type")
	}
}

func (c *Context) analyzeAggList(l *ast.ExprList, inAgg bool) {
	if l == nil {
		return
	}
	for i := range l.Items {
		l.Items[i].Expr = c.analyzeAgg(l.Items[i].Expr, inAgg)
	}
}

// isAggregateFunction reports whether name is registered as an
// aggregate at arity n, retrying at variadic arity on a miss, mirroring
// the lookup order used by checkFunction.
func isAggregateFunction(reg *funcreg.Registry, name string, n int) bool {
	if fn, ok := reg.Lookup(name, n); ok {
		return fn.IsAggregate
	}
	if fn, ok := reg.Lookup(name, funcreg.Variadic); ok {
		return fn.IsAggregate
	}
	return false
}
