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
	"github.com/dolthub/sqlcore/sql/types"
)

// Affinity computes expr's inferred affinity per the fixed rule table
// of spec.md §4.2. Unlike the source, which caches the result on a
// mutable field the first time it's computed, Affinity is a pure
// function of the (already-resolved) tree: the same node always
// yields the same affinity, which is what "idempotent after the first
// invocation" requires without needing a cache field on every
// non-column node type. Column affinity still comes from the stored
// field set at bind time, so the one genuinely stateful case is read,
// not recomputed; an aggregate call takes the affinity of its first
// argument, or numeric when it has none.
func Affinity(e ast.Expr) types.Affinity {
	switch n := e.(type) {
	case nil:
		return types.AffinityNone

	case *ast.Literal:
		switch n.Kind {
		case ast.LitInteger, ast.LitFloat:
			return types.AffinityNumeric
		default: // string, null, variable
			return types.AffinityText
		}

	case *ast.ResolvedColumn:
		return n.Affinity

	case *ast.UnresolvedColumn:
		return types.AffinityNone

	case *ast.BinaryOp:
		switch {
		case n.Op == ast.OpConcat:
			return types.AffinityText
		case n.Op == ast.OpLike || n.Op == ast.OpGlob:
			return types.AffinityNumeric
		case n.Op.IsComparison():
			if Affinity(n.Left) == types.AffinityNumeric {
				return types.AffinityNumeric
			}
			return Affinity(n.Right)
		case n.Op.IsLogical():
			return types.AffinityNumeric
		default: // arithmetic, bitwise, shifts
			return types.AffinityNumeric
		}

	case *ast.UnaryOp:
		switch n.Op {
		case ast.OpIsNull, ast.OpNotNull, ast.OpBitNot, ast.OpNeg, ast.OpPos, ast.OpNot:
			return types.AffinityNumeric
		default:
			return types.AffinityNumeric
		}

	case *ast.Between:
		return types.AffinityNumeric

	case *ast.FuncCall:
		return types.AffinityNone // unresolved by the time affinity matters

	case *ast.AggFuncCall:
		return affinityOfArgsOrNumeric(n.Args)

	case *ast.In:
		return types.AffinityNumeric

	case *ast.Case:
		if n.Else != nil && Affinity(n.Else) == types.AffinityNumeric {
			return types.AffinityNumeric
		}
		for _, w := range n.Whens {
			if Affinity(w.Then) == types.AffinityNumeric {
				return types.AffinityNumeric
			}
		}
		return types.AffinityText

	case *ast.ScalarSubquery:
		if n.Subselect != nil && n.Subselect.ResultColumns.Len() > 0 {
			return Affinity(n.Subselect.ResultColumns.Items[0].Expr)
		}
		return types.AffinityNone

	case *ast.Alias:
		return Affinity(n.Left)

	case *ast.Raise:
		return types.AffinityNone

	default:
		panic("resolve: Affinity: unknown node type")
	}
}

func affinityOfArgsOrNumeric(args *ast.ExprList) types.Affinity {
	if args.Len() == 0 {
		return types.AffinityNumeric
	}
	return Affinity(args.Items[0].Expr)
}
