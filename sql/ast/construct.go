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

import "github.com/dolthub/sqlcore/internal/arena"

// Factory bundles an arena.Ctx with the expression-tree construction
// entry points consumed by the parser (spec.md §6). Construction is
// total: on OOM, New* returns (nil, false) and — matching the
// source's documented concession — does not attempt to reclaim the
// children it was handed; that memory is simply not referenced by any
// returned tree. A nil *Factory is valid and never reports OOM, for
// callers (most tests) that don't care to model allocation failure.
type Factory struct {
	Ctx *arena.Ctx
}

// NewFactory returns a Factory backed by ctx. ctx may be nil.
func NewFactory(ctx *arena.Ctx) *Factory {
	return &Factory{Ctx: ctx}
}

// nodeCost is a fixed per-node accounting unit; the exact number
// doesn't matter, only that every construction charges the same
// budget so a test can force OOM deterministically by sizing Budget
// in units of nodeCost.
const nodeCost = 64

func (f *Factory) alloc() bool {
	if f == nil || f.Ctx == nil {
		return true
	}
	return f.Ctx.Alloc(nodeCost)
}

// NewLiteral constructs a leaf literal node (spec.md §4.1 "Construct
// leaf"). The token is stored by reference (Owned left as the
// caller's value); the caller guarantees the token's backing buffer
// outlives the node, or passes an already-owned Token.
func (f *Factory) NewLiteral(kind LiteralKind, tok Token, sp Span) (*Literal, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &Literal{Kind: kind, Tok: tok, Sp: sp}, true
}

// NewUnresolvedColumn constructs an identifier node prior to
// resolution.
func (f *Factory) NewUnresolvedColumn(db, table, column string, sp Span) (*UnresolvedColumn, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &UnresolvedColumn{DB: db, Table: table, Column: column, Sp: sp}, true
}

// NewBinary constructs a binary operator node (spec.md §4.1 "Construct
// binary"). The resulting span covers left.Span()..right.Span() when
// both are non-nil; otherwise it falls back to tok's span.
func (f *Factory) NewBinary(op BinOp, left, right Expr, tok Token, tokSpan Span) (*BinaryOp, bool) {
	if !f.alloc() {
		return nil, false
	}
	sp := tokSpan
	if left != nil && right != nil {
		sp = left.Span().Cover(right.Span())
	}
	return &BinaryOp{Op: op, Left: left, Right: right, Tok: tok, Sp: sp}, true
}

// NewUnary constructs a unary operator node.
func (f *Factory) NewUnary(op UnOp, operand Expr, tok Token, sp Span) (*UnaryOp, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &UnaryOp{Op: op, Operand: operand, Tok: tok, Sp: sp}, true
}

// NewFuncCall constructs a function-call node (spec.md §4.1 "Construct
// function call"). AnalyzeAggregates may later rewrite the returned
// node's role by substituting an *AggFuncCall at the parent's child
// slot; Factory itself never does that rewrite.
func (f *Factory) NewFuncCall(name Token, args *ExprList, sp Span) (*FuncCall, bool) {
	if !f.alloc() {
		return nil, false
	}
	if args == nil {
		args = NewExprList()
	}
	return &FuncCall{Name: name, Args: args, Sp: sp}, true
}

// NewIn constructs an IN node. Exactly one of list/subselect should be
// supplied by the caller; resolve.Resolve validates that invariant.
func (f *Factory) NewIn(not bool, left Expr, list *ExprList, subselect *Select, sp Span) (*In, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &In{Not: not, Left: left, List: list, Subselect: subselect, SetID: -1, CursorID: -1, Sp: sp}, true
}

// NewBetween constructs a BETWEEN node.
func (f *Factory) NewBetween(not bool, operand, lo, hi Expr, sp Span) (*Between, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &Between{Not: not, Operand: operand, Lo: lo, Hi: hi, Sp: sp}, true
}

// NewCase constructs a CASE node.
func (f *Factory) NewCase(base Expr, whens []CaseWhen, els Expr, sp Span) (*Case, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &Case{Base: base, Whens: whens, Else: els, Sp: sp}, true
}

// NewScalarSubquery constructs a scalar-subquery node.
func (f *Factory) NewScalarSubquery(sub *Select, sp Span) (*ScalarSubquery, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &ScalarSubquery{Subselect: sub, Cell: -1, Sp: sp}, true
}

// NewRaise constructs a RAISE node.
func (f *Factory) NewRaise(action RaiseAction, code int, message Token, sp Span) (*Raise, bool) {
	if !f.alloc() {
		return nil, false
	}
	return &Raise{Action: action, Code: code, Message: message, Sp: sp}, true
}
