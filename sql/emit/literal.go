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

import "strings"

// stringLiteralBytes strips the surrounding single quotes from a
// string-literal token and collapses doubled single-quote escapes
// ('' -> '), the inverse of the lexer's quoting rule.
func stringLiteralBytes(tok string) []byte {
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		tok = tok[1 : len(tok)-1]
	}
	if strings.Contains(tok, "''") {
		tok = strings.ReplaceAll(tok, "''", "'")
	}
	return []byte(tok)
}

// negateNumeralText prepends a minus sign to a numeral token, folding
// `-` into the literal's own text the way the source fuses a unary
// minus applied directly to an integer/float literal instead of
// emitting a separate negate instruction (spec.md §4.3).
func negateNumeralText(tok string) string {
	if len(tok) > 0 && tok[0] == '-' {
		return tok[1:]
	}
	return "-" + tok
}
