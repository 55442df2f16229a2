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

// Package ast is the expression tree model consumed by sql/resolve and
// sql/emit (spec.md §3, §4.1). Following DESIGN NOTES §9, the
// overloaded op/left/right/args/subselect/token representation of the
// source is re-expressed here as a tagged sum: one concrete Go type per
// operator family, each implementing Expr. Resolution side-fields
// (TableCursor, ColumnIndex, Affinity, AggSlot) live only on
// ResolvedColumn and AggFuncCall, so there is no "is this field
// populated yet" ambiguity at runtime the way there is with a single
// overloaded struct.
package ast

import "github.com/dolthub/sqlcore/sql/types"

// Span is a byte range into the parse context's source buffer,
// matching the teacher's general preference for indices over raw
// pointers into shared memory (c.f. sql.Expression's Children()
// pattern, which works over values rather than pointer graphs).
type Span struct {
	Start, End int
}

// Cover returns the smallest span containing both a and b. Used by
// Factory.NewBinary when both operands carry a span.
func (a Span) Cover(b Span) Span {
	s := a
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Token is a lexeme borrowed from (or copied out of) the parse
// context's source buffer. Owned is false while Text aliases the
// source buffer's backing array (a Go string slice, not a copy) and
// becomes true once DeepCopy or an explicit rename materializes an
// independent copy — the Go realization of the source's
// "(pointer, length, owned?)" token triple.
type Token struct {
	Text  string
	Owned bool
}

// Own returns a Token guaranteed not to alias any other buffer.
// strings.Clone-equivalent: Go string headers already can't be mutated
// in place, but Owned tracks the *intent* (a dequote, a deep-copy) the
// same way the source distinguishes a borrowed lexeme from a
// materialized one.
func (t Token) Own() Token {
	if t.Owned {
		return t
	}
	b := make([]byte, len(t.Text))
	copy(b, t.Text)
	return Token{Text: string(b), Owned: true}
}

// LiteralKind discriminates the literal operator family.
type LiteralKind uint8

const (
	LitNull LiteralKind = iota
	LitInteger
	LitFloat
	LitString
	LitVariable
)

// BinOp discriminates arithmetic/bitwise/comparison/logical binary
// operators.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpConcat
	OpBitAnd
	OpBitOr
	OpShiftLeft
	OpShiftRight
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpLike
	OpGlob
)

func (o BinOp) IsComparison() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

func (o BinOp) IsLogical() bool { return o == OpAnd || o == OpOr }

// UnOp discriminates unary operators.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpPos
	OpBitNot
	OpNot
	OpIsNull
	OpNotNull
)

// RaiseAction discriminates RAISE(...) forms (spec.md §4.3).
type RaiseAction uint8

const (
	RaiseIgnore RaiseAction = iota
	RaiseRollback
	RaiseAbort
	RaiseFail
)

// Expr is implemented by every node in the tree. Children returns the
// node's owned sub-expressions in evaluation order (the walks in
// sql/resolve and DeepCopy/Compare switch on node type instead of
// calling it); it never includes the Subselect held by In/ScalarSubquery, which is
// walked separately since it owns an independent statement tree
// rather than an expression.
type Expr interface {
	Span() Span
	Children() []Expr
	exprNode()
}

// Literal is a leaf: integer/float/string/null/variable.
type Literal struct {
	Kind LiteralKind
	Tok  Token
	Sp   Span
}

func (n *Literal) Span() Span      { return n.Sp }
func (n *Literal) Children() []Expr { return nil }
func (*Literal) exprNode()         {}

// UnresolvedColumn is a bare-id/dotted/double-quoted-string identifier
// before resolution binds it. Resolve rewrites the node in place by
// swapping it for a ResolvedColumn (or an Alias, on hit against a
// result-set alias) at the parent's child slot — ast itself never
// mutates an UnresolvedColumn into a ResolvedColumn, since Go's static
// typing makes that swap a replacement, not a field-mutation, unlike
// the source's single overloaded struct.
type UnresolvedColumn struct {
	DB, Table, Column string
	Sp                Span
}

func (n *UnresolvedColumn) Span() Span      { return n.Sp }
func (n *UnresolvedColumn) Children() []Expr { return nil }
func (*UnresolvedColumn) exprNode()         {}

// ResolvedColumn is what an UnresolvedColumn becomes on a successful
// bind (spec.md §4.2). ColumnIndex == -1 addresses the implicit row
// identifier.
type ResolvedColumn struct {
	Name        string // qualified source text, retained for error messages further up the tree
	DBIndex     int
	TableCursor int
	ColumnIndex int
	Affinity    types.Affinity
	// AggSlot indexes into the owning query's AggTable when this
	// column was seen under an aggregate-function call; -1 otherwise
	// (spec.md §3, §4.2).
	AggSlot int
	Sp      Span
}

func (n *ResolvedColumn) Span() Span      { return n.Sp }
func (n *ResolvedColumn) Children() []Expr { return nil }
func (*ResolvedColumn) exprNode()         {}

// BinaryOp covers arithmetic, bitwise, comparison and logical binary
// operators (spec.md §3: "operator kinds").
type BinaryOp struct {
	Op          BinOp
	Left, Right Expr
	Tok         Token
	Sp          Span
}

func (n *BinaryOp) Span() Span      { return n.Sp }
func (n *BinaryOp) Children() []Expr { return []Expr{n.Left, n.Right} }
func (*BinaryOp) exprNode()         {}

// UnaryOp covers NOT/BITNOT/unary +/-/ISNULL/NOTNULL.
type UnaryOp struct {
	Op      UnOp
	Operand Expr
	Tok     Token
	Sp      Span
}

func (n *UnaryOp) Span() Span      { return n.Sp }
func (n *UnaryOp) Children() []Expr { return []Expr{n.Operand} }
func (*UnaryOp) exprNode()         {}

// FuncCall is an unresolved/scalar function call; AnalyzeAggregates
// rewrites it to AggFuncCall when the registry says the name is an
// aggregate (spec.md §4.2).
type FuncCall struct {
	Name Token
	Args *ExprList
	Sp   Span
}

func (n *FuncCall) Span() Span { return n.Sp }
func (n *FuncCall) Children() []Expr {
	return n.Args.Exprs()
}
func (*FuncCall) exprNode() {}

// AggFuncCall is a function call classified as an aggregate. AggSlot
// indexes into the owning query's AggTable.
type AggFuncCall struct {
	Name    Token
	Args    *ExprList
	AggSlot int
	Sp      Span
}

func (n *AggFuncCall) Span() Span { return n.Sp }
func (n *AggFuncCall) Children() []Expr {
	return n.Args.Exprs()
}
func (*AggFuncCall) exprNode() {}

// In covers both `x IN (list)` and `x IN (SELECT ...)`. Exactly one of
// List/Subselect is populated after resolution (spec.md §4.2).
type In struct {
	Not       bool
	Left      Expr
	List      *ExprList
	Subselect *Select
	SetID     int // runtime lookup identifier, valid when List != nil
	CursorID  int // fresh cursor index, valid when Subselect != nil
	Sp        Span
}

func (n *In) Span() Span { return n.Sp }
func (n *In) Children() []Expr {
	c := []Expr{n.Left}
	if n.List != nil {
		c = append(c, n.List.Exprs()...)
	}
	return c
}
func (*In) exprNode() {}

// Between covers `x BETWEEN lo AND hi`.
type Between struct {
	Not              bool
	Operand, Lo, Hi  Expr
	Sp               Span
}

func (n *Between) Span() Span      { return n.Sp }
func (n *Between) Children() []Expr { return []Expr{n.Operand, n.Lo, n.Hi} }
func (*Between) exprNode()         {}

// CaseWhen is one WHEN/THEN pair.
type CaseWhen struct {
	When, Then Expr
}

// Case covers both the base-expression and searched forms of CASE.
// Base is nil for the searched form.
type Case struct {
	Base  Expr
	Whens []CaseWhen
	Else  Expr // nil means "push null" at emit time
	Sp    Span
}

func (n *Case) Span() Span { return n.Sp }
func (n *Case) Children() []Expr {
	c := make([]Expr, 0, 2*len(n.Whens)+2)
	if n.Base != nil {
		c = append(c, n.Base)
	}
	for _, w := range n.Whens {
		c = append(c, w.When, w.Then)
	}
	if n.Else != nil {
		c = append(c, n.Else)
	}
	return c
}
func (*Case) exprNode() {}

// ScalarSubquery is `(SELECT ...)` used where a single value is
// expected. Cell is the memory cell number the subselect leaves its
// result in (spec.md §4.2).
type ScalarSubquery struct {
	Subselect *Select
	Cell      int
	Sp        Span
}

func (n *ScalarSubquery) Span() Span      { return n.Sp }
func (n *ScalarSubquery) Children() []Expr { return nil }
func (*ScalarSubquery) exprNode()         {}

// Alias is what an UnresolvedColumn becomes when it matches an
// aliased result-set expression instead of a schema column (spec.md
// §4.2 step 5). Left is an owned deep-copy of the aliased expression.
type Alias struct {
	Left Expr
	Name string
	Sp   Span
}

func (n *Alias) Span() Span      { return n.Sp }
func (n *Alias) Children() []Expr { return []Expr{n.Left} }
func (*Alias) exprNode()         {}

// Raise covers RAISE(IGNORE|ROLLBACK|ABORT|FAIL, message) inside a
// trigger body.
type Raise struct {
	Action  RaiseAction
	Code    int
	Message Token
	Sp      Span
}

func (n *Raise) Span() Span      { return n.Sp }
func (n *Raise) Children() []Expr { return nil }
func (*Raise) exprNode()         {}

// Select is the minimal nested-statement stub this module needs to
// exercise In.Subselect and ScalarSubquery.Subselect. The parser that
// produces a full statement tree is an external collaborator
// (spec.md §1); this type only carries what the resolver/emitter
// touch: the result-set expressions (for a scalar subquery, exactly
// one column).
type Select struct {
	ResultColumns *ExprList
}
