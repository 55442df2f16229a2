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

package types

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ParseIntLiteral coerces a source-text integer lexeme to an int64.
// ok is false when the text isn't a well-formed integer that fits in
// an int64. resolve.IsInteger uses it; the emitter's OpString fallback
// is decided by OversizedInteger instead.
func ParseIntLiteral(tok string) (v int64, ok bool) {
	i, err := cast.ToInt64E(strings.TrimSpace(tok))
	if err != nil {
		return 0, false
	}
	return i, true
}

// ParseFloatLiteral coerces a source-text float lexeme to a float64.
func ParseFloatLiteral(tok string) (v float64, ok bool) {
	f, err := cast.ToFloat64E(strings.TrimSpace(tok))
	if err != nil {
		return 0, false
	}
	return f, true
}

// FitsInt32 reports whether v is representable in a signed 32-bit
// integer. The is-integer(expr, &value) resolver entry point needs
// this bound (spec.md §6).
func FitsInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// OversizedInteger reports whether tok parses as a valid integer
// literal too large for an int64, in which case the emitter must fall
// back to pushing it as a string (spec.md §4.3: "Oversized integer
// literals fall back to String"). decimal.NewFromString is used
// instead of a second pass of strconv so that digit-only lexemes that
// overflow int64 are still recognized as numeric-shaped (and thus
// legitimately "oversized" rather than malformed), matching the
// teacher's use of shopspring/decimal for exact literal handling in
// sql/expression tests.
func OversizedInteger(tok string) bool {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return false
	}
	if _, err := cast.ToInt64E(tok); err == nil {
		return false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return false
	}
	return d.IsInteger()
}
