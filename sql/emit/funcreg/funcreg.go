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

// Package funcreg is the minimal registered-function table the
// resolver's arity/existence check and the emitter's Function opcode
// need to run end to end (SPEC_FULL.md §3.5). It is not a SQL builtin
// catalog: spec.md's Non-goals exclude "the set of built-in SQL
// functions", and this package registers only enough metadata to
// exercise §4.2's arity check and §4.3's Function(n_args, fn-binding)
// emission.
package funcreg

// Variadic is the arity used to retry a lookup when the exact arity
// misses (spec.md §4.2: "on miss, retry with arity -1 (variadic)").
const Variadic = -1

// Function is one registered name/arity binding.
type Function struct {
	Name        string
	Arity       int // Variadic for any arity
	IsAggregate bool
	// WantsTypeName marks a declaration that takes argument type
	// names. The emitter does not read this flag: function, LIKE and
	// GLOB calls push only their arguments, with no affinity-name
	// strings after them.
	WantsTypeName bool
}

// Registry maps a function name to the set of arities it is
// registered at.
type Registry struct {
	byName map[string][]*Function
}

// New returns a Registry preloaded with the minimal built-in set
// named in SPEC_FULL.md §3.5.
func New() *Registry {
	r := &Registry{byName: make(map[string][]*Function)}
	for _, f := range defaultFunctions() {
		r.Register(f)
	}
	return r
}

// Register adds f to the registry. Re-registering the same
// name+arity replaces the previous binding.
func (r *Registry) Register(f *Function) {
	list := r.byName[f.Name]
	for i, existing := range list {
		if existing.Arity == f.Arity {
			list[i] = f
			return
		}
	}
	r.byName[f.Name] = append(list, f)
}

// Lookup finds the binding for name at exactly arity n. It does not
// retry at Variadic; callers implement the retry themselves so they
// can distinguish "unknown function" from "wrong arity" (spec.md
// §4.2).
func (r *Registry) Lookup(name string, n int) (*Function, bool) {
	for _, f := range r.byName[name] {
		if f.Arity == n {
			return f, true
		}
	}
	return nil, false
}

// Exists reports whether name is registered at any arity, used to
// distinguish "no such function" from "wrong number of arguments".
func (r *Registry) Exists(name string) bool {
	return len(r.byName[name]) > 0
}

func defaultFunctions() []*Function {
	return []*Function{
		{Name: "count", Arity: 1, IsAggregate: true},
		{Name: "count", Arity: 0, IsAggregate: true}, // COUNT(*)
		{Name: "sum", Arity: 1, IsAggregate: true},
		{Name: "min", Arity: 1, IsAggregate: true},
		{Name: "max", Arity: 1, IsAggregate: true},
		{Name: "avg", Arity: 1, IsAggregate: true},
		{Name: "abs", Arity: 1},
		{Name: "length", Arity: 1},
		{Name: "coalesce", Arity: Variadic},
		{Name: "like", Arity: 2, WantsTypeName: true},
		{Name: "glob", Arity: 2, WantsTypeName: true},
	}
}
