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

// SortOrder is the ORDER BY direction attached to a list element, used
// when the owning ExprList represents a sort-key list rather than a
// function-call argument list.
type SortOrder uint8

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

// ListItem is one (expression, optional-alias, sort-order, done-flag)
// tuple (spec.md §3). Done marks an item the emitter has already
// pushed, used by the IN-subselect correlation path where a list is
// walked more than once.
type ListItem struct {
	Expr      Expr
	Alias     string
	SortOrder SortOrder
	Done      bool
}

// ExprList is the grow-on-append sequence backing function-call
// argument lists, IN (list), CASE when/then pairs and ORDER BY lists.
// A Go slice already doubles capacity with a small constant floor and
// gives amortized O(1) append, satisfying spec.md §3's ExprList
// invariant without hand-rolled growth bookkeeping.
type ExprList struct {
	Items []ListItem
}

// NewExprList returns an empty list ready for Append.
func NewExprList() *ExprList {
	return &ExprList{}
}

// Append inserts expr with the given alias/sort-order. Per spec.md
// §3, aliases are dequoted exactly once, at insertion time — callers
// must pass an already-dequoted alias; ExprList does not re-dequote on
// a later read.
func (l *ExprList) Append(expr Expr, alias string, order SortOrder) {
	l.Items = append(l.Items, ListItem{Expr: expr, Alias: alias, SortOrder: order})
}

// Len reports the number of elements.
func (l *ExprList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Exprs returns the expression of each element, in order. Used by
// Children() implementations and by the emitter's function-call
// lowering.
func (l *ExprList) Exprs() []Expr {
	if l == nil {
		return nil
	}
	out := make([]Expr, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Expr
	}
	return out
}

// AggEntry is one row of the aggregate table (spec.md §3): either a
// distinct column reference seen inside an aggregate context
// (IsAggregateCall == false), or a distinct aggregate-function call
// whose binding has been resolved once.
type AggEntry struct {
	Expr            Expr
	IsAggregateCall bool
	FuncName        string
}

// AggTable is the parse-time flat vector AnalyzeAggregates populates.
// Expr.AggSlot fields index into it.
type AggTable struct {
	Entries []AggEntry
}

// NewAggTable returns an empty aggregate table.
func NewAggTable() *AggTable {
	return &AggTable{}
}

// AddColumn records col as a non-aggregate slot (available to AggGet
// at evaluation time) and returns its index. If an equivalent entry
// already exists it is reused rather than duplicated, matching the
// "each distinct column reference ... gets a non-aggregate slot" rule.
func (t *AggTable) AddColumn(col Expr) int {
	for i, e := range t.Entries {
		if !e.IsAggregateCall && Compare(e.Expr, col) {
			return i
		}
	}
	t.Entries = append(t.Entries, AggEntry{Expr: col, IsAggregateCall: false})
	return len(t.Entries) - 1
}

// AddAggregateCall records call as a new aggregate slot bound to
// funcName and returns its index. Unlike AddColumn, aggregate calls
// are never deduplicated: two textually identical aggregate calls in
// the same result set are still two distinct accumulators.
func (t *AggTable) AddAggregateCall(call Expr, funcName string) int {
	t.Entries = append(t.Entries, AggEntry{Expr: call, IsAggregateCall: true, FuncName: funcName})
	return len(t.Entries) - 1
}
