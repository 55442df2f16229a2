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

// DeepCopy produces an independent tree whose lifetime is disjoint
// from e (spec.md §4.1). Every token is materialized as an owned
// copy and every child subtree is recursively copied. A nil input
// copies to nil, so callers can deep-copy an optional field (e.g.
// Case.Else) without a nil check at every call site.
func DeepCopy(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Literal:
		return &Literal{Kind: n.Kind, Tok: n.Tok.Own(), Sp: n.Sp}
	case *UnresolvedColumn:
		c := *n
		return &c
	case *ResolvedColumn:
		c := *n
		return &c
	case *BinaryOp:
		return &BinaryOp{
			Op:    n.Op,
			Left:  DeepCopy(n.Left),
			Right: DeepCopy(n.Right),
			Tok:   n.Tok.Own(),
			Sp:    n.Sp,
		}
	case *UnaryOp:
		return &UnaryOp{
			Op:      n.Op,
			Operand: DeepCopy(n.Operand),
			Tok:     n.Tok.Own(),
			Sp:      n.Sp,
		}
	case *FuncCall:
		return &FuncCall{
			Name: n.Name.Own(),
			Args: deepCopyList(n.Args),
			Sp:   n.Sp,
		}
	case *AggFuncCall:
		return &AggFuncCall{
			Name:    n.Name.Own(),
			Args:    deepCopyList(n.Args),
			AggSlot: n.AggSlot,
			Sp:      n.Sp,
		}
	case *In:
		return &In{
			Not:       n.Not,
			Left:      DeepCopy(n.Left),
			List:      deepCopyList(n.List),
			Subselect: deepCopySelect(n.Subselect),
			SetID:     n.SetID,
			CursorID:  n.CursorID,
			Sp:        n.Sp,
		}
	case *Between:
		return &Between{
			Not:     n.Not,
			Operand: DeepCopy(n.Operand),
			Lo:      DeepCopy(n.Lo),
			Hi:      DeepCopy(n.Hi),
			Sp:      n.Sp,
		}
	case *Case:
		whens := make([]CaseWhen, len(n.Whens))
		for i, w := range n.Whens {
			whens[i] = CaseWhen{When: DeepCopy(w.When), Then: DeepCopy(w.Then)}
		}
		return &Case{
			Base:  DeepCopy(n.Base),
			Whens: whens,
			Else:  DeepCopy(n.Else),
			Sp:    n.Sp,
		}
	case *ScalarSubquery:
		return &ScalarSubquery{
			Subselect: deepCopySelect(n.Subselect),
			Cell:      n.Cell,
			Sp:        n.Sp,
		}
	case *Alias:
		return &Alias{Left: DeepCopy(n.Left), Name: n.Name, Sp: n.Sp}
	case *Raise:
		return &Raise{Action: n.Action, Code: n.Code, Message: n.Message.Own(), Sp: n.Sp}
	default:
		panic("ast: DeepCopy: unknown node type")
	}
}

// deepCopyList copies a list preserving original element order and
// per-element aliases (spec.md §4.1). The copied list's top-level span
// is always materialized, needed later for naming result columns —
// here that just means returning a concrete, independently-addressable
// *ExprList rather than aliasing the source's backing slice.
func deepCopyList(l *ExprList) *ExprList {
	if l == nil {
		return nil
	}
	out := &ExprList{Items: make([]ListItem, len(l.Items))}
	for i, it := range l.Items {
		out.Items[i] = ListItem{
			Expr:      DeepCopy(it.Expr),
			Alias:     it.Alias,
			SortOrder: it.SortOrder,
			Done:      it.Done,
		}
	}
	return out
}

// deepCopySelect copies a nested SELECT template. Per spec.md §4.1's
// Compare invariant ("two trees containing subselects are always
// unequal"), DeepCopy still makes an independent copy here — the
// inequality rule governs Compare, not DeepCopy.
func deepCopySelect(s *Select) *Select {
	if s == nil {
		return nil
	}
	return &Select{ResultColumns: deepCopyList(s.ResultColumns)}
}
