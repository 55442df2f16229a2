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

import "strings"

// Compare reports structural equality of a and b: same operator,
// same children, same arg-lists, same resolved slot numbers, and
// token bytes of equal length that are equal case-insensitively
// (spec.md §4.1). A node carrying a subselect (In.Subselect,
// ScalarSubquery.Subselect) never compares equal to another such node
// even if the subselects are themselves identical — "two trees
// containing subselects are always unequal" — since the core has no
// collaborator (the parser/planner) to compare two statement trees
// against.
func Compare(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Kind == y.Kind && tokEq(x.Tok, y.Tok)
	case *UnresolvedColumn:
		y, ok := b.(*UnresolvedColumn)
		return ok && strEq(x.DB, y.DB) && strEq(x.Table, y.Table) && strEq(x.Column, y.Column)
	case *ResolvedColumn:
		y, ok := b.(*ResolvedColumn)
		return ok && x.DBIndex == y.DBIndex && x.TableCursor == y.TableCursor &&
			x.ColumnIndex == y.ColumnIndex && x.Affinity == y.Affinity && x.AggSlot == y.AggSlot
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Compare(x.Left, y.Left) && Compare(x.Right, y.Right)
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Op == y.Op && Compare(x.Operand, y.Operand)
	case *FuncCall:
		y, ok := b.(*FuncCall)
		return ok && tokEq(x.Name, y.Name) && compareList(x.Args, y.Args)
	case *AggFuncCall:
		y, ok := b.(*AggFuncCall)
		return ok && tokEq(x.Name, y.Name) && x.AggSlot == y.AggSlot && compareList(x.Args, y.Args)
	case *In:
		y, ok := b.(*In)
		if !ok || x.Not != y.Not || !Compare(x.Left, y.Left) {
			return false
		}
		if x.Subselect != nil || y.Subselect != nil {
			return false
		}
		return x.SetID == y.SetID && compareList(x.List, y.List)
	case *Between:
		y, ok := b.(*Between)
		return ok && x.Not == y.Not && Compare(x.Operand, y.Operand) &&
			Compare(x.Lo, y.Lo) && Compare(x.Hi, y.Hi)
	case *Case:
		y, ok := b.(*Case)
		if !ok || len(x.Whens) != len(y.Whens) {
			return false
		}
		if !Compare(x.Base, y.Base) || !Compare(x.Else, y.Else) {
			return false
		}
		for i := range x.Whens {
			if !Compare(x.Whens[i].When, y.Whens[i].When) || !Compare(x.Whens[i].Then, y.Whens[i].Then) {
				return false
			}
		}
		return true
	case *ScalarSubquery:
		return false // a tree containing a subselect is always unequal
	case *Alias:
		y, ok := b.(*Alias)
		return ok && strEq(x.Name, y.Name) && Compare(x.Left, y.Left)
	case *Raise:
		y, ok := b.(*Raise)
		return ok && x.Action == y.Action && x.Code == y.Code && tokEq(x.Message, y.Message)
	default:
		return false
	}
}

func compareList(a, b *ExprList) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Items {
		ia, ib := a.Items[i], b.Items[i]
		if !strEq(ia.Alias, ib.Alias) || ia.SortOrder != ib.SortOrder {
			return false
		}
		if !Compare(ia.Expr, ib.Expr) {
			return false
		}
	}
	return true
}

func tokEq(a, b Token) bool {
	n := len(a.Text)
	if len(b.Text) < n {
		n = len(b.Text)
	}
	return strings.EqualFold(a.Text[:n], b.Text[:n]) && len(a.Text) == len(b.Text)
}

func strEq(a, b string) bool {
	return strings.EqualFold(a, b)
}
