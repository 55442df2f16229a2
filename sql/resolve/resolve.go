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
)

// Resolve binds every identifier reachable from expr to a (database,
// table, column) slot and returns the (possibly rewritten) root
// expression together with the number of errors raised (spec.md §6).
// A non-zero count leaves the first formatted message retrievable via
// ctx.FirstError(). Resolve is idempotent: running it again on an
// already-resolved tree recurses into ResolvedColumn/Alias nodes as a
// no-op and raises no further errors (Testable Property 2).
func Resolve(ctx *Context, sources []TableSource, aliases []ResultAlias, expr ast.Expr) (ast.Expr, int) {
	span := ctx.Tracer.StartSpan("resolve.Resolve")
	defer span.Finish()

	before := ctx.ErrorCount()
	out := ctx.resolveNode(sources, aliases, expr)
	return out, ctx.ErrorCount() - before
}

func (c *Context) resolveNode(sources []TableSource, aliases []ResultAlias, e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Literal, *ast.ResolvedColumn, *ast.Raise:
		return n // nothing to bind; also the idempotence case for columns

	case *ast.UnresolvedColumn:
		res, err := c.bindIdentifier(sources, aliases, n.DB, n.Table, n.Column)
		switch {
		case err == errLeaveAsString:
			return n
		case err != nil:
			c.addErr(err)
			return n
		case res.rewriteAlias != nil:
			return &ast.Alias{
				Left: ast.DeepCopy(res.rewriteAlias.Expr),
				Name: res.rewriteAlias.Name,
				Sp:   n.Sp,
			}
		default:
			return rewriteColumn(n, res, sources)
		}

	case *ast.BinaryOp:
		n.Left = c.resolveNode(sources, aliases, n.Left)
		n.Right = c.resolveNode(sources, aliases, n.Right)
		return n

	case *ast.UnaryOp:
		n.Operand = c.resolveNode(sources, aliases, n.Operand)
		return n

	case *ast.FuncCall:
		c.resolveList(sources, aliases, n.Args)
		return n

	case *ast.AggFuncCall:
		c.resolveList(sources, aliases, n.Args)
		return n

	case *ast.In:
		n.Left = c.resolveNode(sources, aliases, n.Left)
		c.resolveIn(sources, aliases, n)
		return n

	case *ast.Between:
		n.Operand = c.resolveNode(sources, aliases, n.Operand)
		n.Lo = c.resolveNode(sources, aliases, n.Lo)
		n.Hi = c.resolveNode(sources, aliases, n.Hi)
		return n

	case *ast.Case:
		n.Base = c.resolveNode(sources, aliases, n.Base)
		for i := range n.Whens {
			n.Whens[i].When = c.resolveNode(sources, aliases, n.Whens[i].When)
			n.Whens[i].Then = c.resolveNode(sources, aliases, n.Whens[i].Then)
		}
		n.Else = c.resolveNode(sources, aliases, n.Else)
		return n

	case *ast.ScalarSubquery:
		if n.Cell == -1 {
			n.Cell = c.allocCell()
		}
		return n

	case *ast.Alias:
		n.Left = c.resolveNode(sources, aliases, n.Left)
		return n

	default:
		panic("resolve: unknown node type")
	}
}

func (c *Context) resolveList(sources []TableSource, aliases []ResultAlias, l *ast.ExprList) {
	if l == nil {
		return
	}
	for i := range l.Items {
		l.Items[i].Expr = c.resolveNode(sources, aliases, l.Items[i].Expr)
	}
}

// resolveIn implements spec.md §4.2's "IN handling": a subselect RHS
// allocates a fresh cursor index, a value-list RHS requires every
// element to be constant and allocates a runtime lookup-set
// identifier.
func (c *Context) resolveIn(sources []TableSource, aliases []ResultAlias, n *ast.In) {
	if n.Subselect != nil {
		if n.CursorID == -1 {
			n.CursorID = c.allocCursor()
		}
		return
	}
	if n.List == nil {
		return
	}
	c.resolveList(sources, aliases, n.List)
	for _, it := range n.List.Items {
		if !IsConstant(it.Expr) {
			c.addErr(errNonConstantInList)
			return
		}
	}
	if n.SetID == -1 {
		n.SetID = c.allocSetID()
		internConstSet(n.SetID, n.List)
	}
}
