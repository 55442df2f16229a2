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

import "github.com/dolthub/sqlcore/sql/ast"

// Compare re-exports ast.Compare at the resolver entry-point surface
// named in spec.md §6, where it is grouped alongside Resolve/Check
// since callers (the statement compiler) reach it through the same
// package.
func Compare(a, b ast.Expr) bool {
	return ast.Compare(a, b)
}
