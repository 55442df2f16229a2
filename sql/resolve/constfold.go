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
	"fmt"

	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/types"
)

var errNonConstantInList = fmt.Errorf("resolve: IN (...) value list contains a non-constant expression")

// IsConstant reports whether expr can be evaluated without reading
// any row (spec.md §6). Only literals (variable placeholders
// included) and unary minus or plus over such an operand (minus over
// a literal is the fused negative-literal form the emitter also
// special-cases, spec.md §4.3) count as constant here;
// everything else — columns, function calls, subqueries — does not,
// matching the conservative stance the IN (value-list) rule needs.
func IsConstant(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Literal:
		return true
	case *ast.UnaryOp:
		return (n.Op == ast.OpNeg || n.Op == ast.OpPos) && IsConstant(n.Operand)
	default:
		return false
	}
}

// IsInteger reports whether expr is a literal (or negated literal)
// integer whose value fits in 32 bits, returning the value when it
// does (spec.md §6: "bounded to 32 bits check").
func IsInteger(e ast.Expr) (int64, bool) {
	neg := false
	lit, ok := e.(*ast.Literal)
	if !ok {
		un, ok2 := e.(*ast.UnaryOp)
		if !ok2 || un.Op != ast.OpNeg {
			return 0, false
		}
		lit, ok = un.Operand.(*ast.Literal)
		if !ok {
			return 0, false
		}
		neg = true
	}
	if lit.Kind != ast.LitInteger {
		return 0, false
	}
	v, ok := types.ParseIntLiteral(lit.Tok.Text)
	if !ok {
		return 0, false
	}
	if neg {
		v = -v
	}
	if !types.FitsInt32(v) {
		return 0, false
	}
	return v, true
}
