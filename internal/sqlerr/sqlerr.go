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

// Package sqlerr defines the error taxonomy shared by the expression
// resolver, the bytecode emitter and the external sorter. Every kind
// below is one row of spec.md §7.
package sqlerr

import (
	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Kinds are registered once at package init, matching the teacher's
// auth package convention of declaring sentinel *errors.Kind values.
var (
	// ErrOOM signals that an allocation returned null. sorter.New
	// returns it when the comparer's scratch allocation fails; callers
	// must stop on sight.
	ErrOOM = goerrors.NewKind("out of memory")

	// ErrNoSuchColumn is raised by the resolver when an identifier
	// matches no table in scope.
	ErrNoSuchColumn = goerrors.NewKind("no such column: %s")

	// ErrAmbiguousColumn is raised by the resolver when an identifier
	// matches more than one table in scope.
	ErrAmbiguousColumn = goerrors.NewKind("ambiguous column name: %s")

	// ErrNoSuchFunction is raised by the checker when a function name
	// has no registration at any arity.
	ErrNoSuchFunction = goerrors.NewKind("no such function: %s")

	// ErrWrongNumberOfArgs is raised by the checker when a function is
	// registered but not at the arity used.
	ErrWrongNumberOfArgs = goerrors.NewKind("wrong number of arguments to function %s")

	// ErrMisuseOfAggregate is raised when an aggregate function is used
	// outside an aggregate-allowing context, or an aggregate call
	// nests another aggregate call in its arguments.
	ErrMisuseOfAggregate = goerrors.NewKind("misuse of aggregate function %s()")

	// ErrSchemaMismatch is the kind for a sorter whose configured key
	// field count disagrees with the cursor's key info at rewind. No
	// code path in this module raises it: the sorter is not given the
	// cursor's key info and does not check its key field count.
	ErrSchemaMismatch = goerrors.NewKind("sorter key field count mismatch: configured %d, cursor declares %d")

	// ErrMisuse signals a contract violation: out-of-order sorter
	// calls, an unresolved label at seal time, an invalid opcode
	// operand. Always a programmer error.
	ErrMisuse = goerrors.NewKind("misuse: %s")

	// ErrIO is the kind for a VFS-reported I/O failure. No code path
	// in this module wraps an error in it: the sorter never retries and
	// returns the VFS error as the VFS reported it.
	ErrIO = goerrors.NewKind("i/o error: %s")

	// ErrCorruption signals that a PMA varint header failed to
	// validate. Fatal for the owning sorter instance.
	ErrCorruption = goerrors.NewKind("corrupt packed-memory array: %s")

	// ErrRaiseOutsideTrigger is raised when the emitter is asked to
	// lower a RAISE(...) expression on a Program not marked InTrigger.
	ErrRaiseOutsideTrigger = goerrors.NewKind("RAISE used outside a trigger body")
)

// all is the registry walked by Describe.
var all = []*goerrors.Kind{
	ErrOOM,
	ErrNoSuchColumn,
	ErrAmbiguousColumn,
	ErrNoSuchFunction,
	ErrWrongNumberOfArgs,
	ErrMisuseOfAggregate,
	ErrSchemaMismatch,
	ErrMisuse,
	ErrIO,
	ErrCorruption,
	ErrRaiseOutsideTrigger,
}

// Describe renders every registered kind's name and message template.
// Used by cmd/sqlcorebench -list-errors (through engine.Describe).
func Describe() []string {
	out := make([]string, 0, len(all))
	for _, k := range all {
		out = append(out, k.Error())
	}
	return out
}

// Sticky wraps an error so repeated calls to Err() on the owning
// object return the exact same error without re-deriving it. Both
// emit.Program and sorter.Sorter embed one.
type Sticky struct {
	err error
}

// Set latches err if nothing has been latched yet. Once set, Set is a
// no-op: the first error observed wins, matching §7's "an error, once
// observed, is sticky" rule.
func (s *Sticky) Set(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

// Err returns the latched error, or nil if none has been observed.
func (s *Sticky) Err() error {
	return s.err
}

// Reset clears the latch. Only the owning object's explicit Reset/
// Close path may call this; it is never implied by an accessor.
func (s *Sticky) Reset() {
	s.err = nil
}

// Wrapf attaches additional context to err without discarding the
// underlying *goerrors.Kind, so errors.Is/Kind.Is still match after
// wrapping. Mirrors the teacher's use of github.com/pkg/errors around
// gopkg.in/src-d/go-errors.v1 sentinels in engine.go.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
