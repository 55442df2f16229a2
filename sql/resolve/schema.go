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

// Package resolve binds identifiers to (table, column) slots,
// validates function arity, classifies aggregates and infers
// numeric-vs-text affinity (spec.md §4.2).
package resolve

import (
	"strings"

	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/types"
)

// ColumnDef is one schema column as seen by the resolver.
type ColumnDef struct {
	Name     string
	Affinity types.Affinity
	// IntegerPrimaryKey marks the column that aliases the row
	// identifier (spec.md §4.2: "mapping integer-primary-key columns
	// to -1").
	IntegerPrimaryKey bool
}

// TableSource is one entry of the source-table list passed to
// Resolve: a cursor index, the table's schema name, its result-set
// alias (if any) and its columns in declaration order.
type TableSource struct {
	Cursor  int
	DB      string
	Name    string
	Alias   string
	Columns []ColumnDef
}

// matchesTable reports whether name matches this source for the
// purpose of a dotted identifier's table part. Alias names override
// schema names (spec.md §4.2 step 2).
func (t TableSource) matchesTable(name string) bool {
	if t.Alias != "" {
		return strings.EqualFold(t.Alias, name)
	}
	return strings.EqualFold(t.Name, name)
}

// ResultAlias is one entry of the alias list: a result-set expression
// visible to an unqualified identifier that otherwise fails to match
// any schema column (spec.md §4.2 step 5).
type ResultAlias struct {
	Name string
	Expr ast.Expr
}
