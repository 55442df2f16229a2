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

// Delete recursively clears e's owned children, subselect and list
// entries (spec.md §4.1). Go's garbage collector reclaims the
// underlying memory once nothing references it; Delete exists so the
// tree's ownership contract (each child belongs to exactly one
// parent, and a parent that has been cleared does not reach its
// former children again) is still checkable and so callers that model
// the source's explicit free discipline have an operation to call.
// Delete is null-safe and idempotent: deleting an already-deleted
// subtree a second time through a cleared parent is a no-op because
// the parent no longer references it.
func Delete(e Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *Literal, *UnresolvedColumn, *ResolvedColumn, *Raise:
		// leaves: nothing owned beyond the node itself
	case *BinaryOp:
		Delete(n.Left)
		Delete(n.Right)
		n.Left, n.Right = nil, nil
	case *UnaryOp:
		Delete(n.Operand)
		n.Operand = nil
	case *FuncCall:
		deleteList(n.Args)
		n.Args = nil
	case *AggFuncCall:
		deleteList(n.Args)
		n.Args = nil
	case *In:
		Delete(n.Left)
		deleteList(n.List)
		n.Left, n.List, n.Subselect = nil, nil, nil
	case *Between:
		Delete(n.Operand)
		Delete(n.Lo)
		Delete(n.Hi)
		n.Operand, n.Lo, n.Hi = nil, nil, nil
	case *Case:
		Delete(n.Base)
		for _, w := range n.Whens {
			Delete(w.When)
			Delete(w.Then)
		}
		Delete(n.Else)
		n.Base, n.Whens, n.Else = nil, nil, nil
	case *ScalarSubquery:
		n.Subselect = nil
	case *Alias:
		Delete(n.Left)
		n.Left = nil
	default:
		panic("ast: Delete: unknown node type")
	}
}

func deleteList(l *ExprList) {
	if l == nil {
		return
	}
	for _, it := range l.Items {
		Delete(it.Expr)
	}
	l.Items = nil
}
