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

package emit

import "github.com/dolthub/sqlcore/sql/ast"

// EmitList pushes every not-yet-emitted item of l in order (spec.md
// §6 "emit-list"), marking each Done as it goes so a list walked twice
// — the IN-subselect correlation path binds a list of result columns
// once for the outer query and once for the correlated inner probe —
// only pushes an item the second time if it was never pushed the
// first.
func EmitList(p *Program, l *ast.ExprList) {
	if l == nil {
		return
	}
	for i := range l.Items {
		if l.Items[i].Done {
			continue
		}
		EmitValue(p, l.Items[i].Expr)
		l.Items[i].Done = true
	}
}
