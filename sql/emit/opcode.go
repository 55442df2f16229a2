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

// Package emit lowers a resolved expression tree (sql/ast) to
// instructions for a stack-oriented virtual machine (spec.md §4.3).
// The VM itself is an external collaborator (spec.md §1); this
// package only produces the (opcode, p1, p2, p3) instruction stream
// and the label table the VM consumes.
package emit

// Opcode is the VM instruction discriminant. Opcode numbers are an
// internal contract between this emitter and whatever VM consumes the
// program (spec.md §6); the only guarantee this module must uphold is
// the comparison-opcode offset identity below (Testable Property 5).
type Opcode uint8

const (
	OpNoop Opcode = iota

	// Literals / column access
	OpInteger
	OpFloat
	OpString
	OpNull
	OpVariable
	OpColumn
	OpRecno
	OpAggGet
	OpMemLoad

	// Stack shuffling
	OpDup
	OpPull // Pull p1: move the value p1 slots below top to the top

	// Arithmetic / bitwise
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpConcat
	OpBitAnd
	OpBitOr
	OpShiftLeft
	OpShiftRight
	OpBitNot

	// Logical / unary
	OpNot
	OpAnd
	OpOr

	// Comparison — numeric family. Text variants occupy the next six
	// opcode values in the same order (spec.md §4.3, §6:
	// "text-variant = numeric-variant + 6").
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpEqText
	OpNeText
	OpLtText
	OpLeText
	OpGtText
	OpGeText

	// Control flow
	OpGoto
	OpIf
	OpIfNot
	OpIfNull
	OpIfNotNull

	// Decrement top-of-stack by one; used by the ISNULL/NOTNULL
	// lowering (spec.md §4.3).
	OpDecr

	// Set/subselect membership for IN
	OpFound
	OpSetFound

	// Function calls
	OpFunction

	// Trigger/constraint handling
	OpHalt

	opcodeCount
)

// ComparisonTextOffset is the fixed offset between a numeric
// comparison opcode and its text variant (spec.md §4.3, §6).
const ComparisonTextOffset = Opcode(OpEqText) - Opcode(OpEq)

// IsComparison reports whether op is one of the twelve comparison
// opcodes (numeric or text family).
func (op Opcode) IsComparison() bool {
	return op >= OpEq && op <= OpGeText
}

// TextVariant returns op's text-affinity counterpart. op must already
// be a numeric comparison opcode.
func (op Opcode) TextVariant() Opcode {
	return op + ComparisonTextOffset
}

// comparisonNegation pairs each comparison opcode with the opcode
// that tests the complementary relation, within the same numeric/text
// family: Eq<->Ne, Lt<->Ge, Gt<->Le.
var comparisonNegation = map[Opcode]Opcode{
	OpEq: OpNe, OpNe: OpEq,
	OpLt: OpGe, OpGe: OpLt,
	OpGt: OpLe, OpLe: OpGt,
	OpEqText: OpNeText, OpNeText: OpEqText,
	OpLtText: OpGeText, OpGeText: OpLtText,
	OpGtText: OpLeText, OpLeText: OpGtText,
}

// Negate returns the comparison opcode for the complementary relation
// (Eq<->Ne, Lt<->Ge, Gt<->Le, each within its own numeric/text family).
// op must be a comparison opcode.
func (op Opcode) Negate() Opcode {
	return comparisonNegation[op]
}

func (op Opcode) String() string {
	names := [...]string{
		"Noop", "Integer", "Float", "String", "Null", "Variable", "Column", "Recno",
		"AggGet", "MemLoad", "Dup", "Pull", "Add", "Subtract", "Multiply", "Divide",
		"Remainder", "Concat", "BitAnd", "BitOr", "ShiftLeft", "ShiftRight", "BitNot",
		"Not", "And", "Or", "Eq", "Ne", "Lt", "Le", "Gt", "Ge", "EqText", "NeText",
		"LtText", "LeText", "GtText", "GeText", "Goto", "If", "IfNot", "IfNull",
		"IfNotNull", "Decr", "Found", "SetFound", "Function", "Halt",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "Opcode(?)"
}

// Instr is one (opcode, p1, p2, p3) instruction. P3 carries an inline
// byte string (a function name, a RAISE message, an affinity-name
// literal) when an instruction needs one; it is nil otherwise.
type Instr struct {
	Op Opcode
	P1 int
	P2 int
	P3 []byte
}
