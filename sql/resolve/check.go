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
	"github.com/dolthub/sqlcore/internal/sqlerr"
	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/emit/funcreg"
)

// Check validates function arity/existence and aggregate usage across
// expr, returning whether an aggregate call was found anywhere in the
// tree together with the number of errors raised (spec.md §6:
// "check(parse-ctx, expr, allow-aggregates?, out-has-aggregate?) →
// error count").
func Check(ctx *Context, expr ast.Expr, allowAggregates bool) (hasAggregate bool, errCount int) {
	before := ctx.ErrorCount()
	hasAggregate = ctx.check(expr, allowAggregates)
	return hasAggregate, ctx.ErrorCount() - before
}

func (c *Context) check(e ast.Expr, allowAggregates bool) bool {
	found := false
	switch n := e.(type) {
	case nil, *ast.Literal, *ast.ResolvedColumn, *ast.UnresolvedColumn, *ast.Raise:
		// no function calls possible

	case *ast.BinaryOp:
		found = c.check(n.Left, allowAggregates) || found
		found = c.check(n.Right, allowAggregates) || found

	case *ast.UnaryOp:
		found = c.check(n.Operand, allowAggregates) || found

	case *ast.FuncCall:
		c.checkFunction(n.Name.Text, n.Args, allowAggregates, false)
		found = c.checkArgs(n.Args, allowAggregates, false) || found

	case *ast.AggFuncCall:
		found = true
		if !allowAggregates {
			c.addErr(sqlerr.ErrMisuseOfAggregate.New(n.Name.Text))
		}
		// Arguments of an aggregate may not themselves be (or
		// contain) another aggregate call (spec.md §4.2: "Recurse
		// into arguments with the aggregate-context flag flipped off
		// for arguments of an aggregate").
		c.checkArgs(n.Args, false, true)

	case *ast.In:
		found = c.check(n.Left, allowAggregates) || found
		if n.List != nil {
			found = c.checkArgs(n.List, allowAggregates, false) || found
		}

	case *ast.Between:
		found = c.check(n.Operand, allowAggregates) || found
		found = c.check(n.Lo, allowAggregates) || found
		found = c.check(n.Hi, allowAggregates) || found

	case *ast.Case:
		found = c.check(n.Base, allowAggregates) || found
		for _, w := range n.Whens {
			found = c.check(w.When, allowAggregates) || found
			found = c.check(w.Then, allowAggregates) || found
		}
		found = c.check(n.Else, allowAggregates) || found

	case *ast.ScalarSubquery:
		// the subselect's own expressions are out of this walk's
		// scope; the host statement compiler checks them separately.

	case *ast.Alias:
		found = c.check(n.Left, allowAggregates) || found

	default:
		panic("resolve: check: unknown node type")
	}
	return found
}

// checkFunction validates name's arity/existence (spec.md §4.2:
// "Function arity & existence check"). It does not itself recurse
// into args — that is the caller's job via checkArgs, keeping the
// nested-aggregate rule in one place.
func (c *Context) checkFunction(name string, args *ast.ExprList, allowAggregates, isNestedInAggregate bool) {
	n := args.Len()
	fn, ok := c.Registry.Lookup(name, n)
	if !ok {
		fn, ok = c.Registry.Lookup(name, funcreg.Variadic)
	}
	switch {
	case !ok && !c.Registry.Exists(name):
		c.addErr(sqlerr.ErrNoSuchFunction.New(name))
	case !ok:
		c.addErr(sqlerr.ErrWrongNumberOfArgs.New(name))
	case fn.IsAggregate && !allowAggregates:
		c.addErr(sqlerr.ErrMisuseOfAggregate.New(name))
	}
}

func (c *Context) checkArgs(args *ast.ExprList, allowAggregates, isNestedInAggregate bool) bool {
	if args == nil {
		return false
	}
	found := false
	for _, it := range args.Items {
		found = c.check(it.Expr, allowAggregates) || found
	}
	return found
}
