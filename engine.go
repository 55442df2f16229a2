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

// Package sqle is the thin facade that wires the expression resolver,
// the bytecode emitter and the external sorter together into one
// compile path, the way the teacher's own engine.go glues its parser,
// analyzer and executor together.
package sqle

import (
	"github.com/pkg/errors"

	"github.com/dolthub/sqlcore/internal/sqlerr"
	"github.com/dolthub/sqlcore/internal/vfs"
	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/emit"
	"github.com/dolthub/sqlcore/sql/emit/funcreg"
	"github.com/dolthub/sqlcore/sql/resolve"
	"github.com/dolthub/sqlcore/sql/sorter"
)

// Engine owns the long-lived state a single compile pipeline needs
// across many expressions: the function registry consulted by both
// the resolver (arity/aggregate checks) and the emitter (FUNCTION
// binding), and the bytecode emission options.
type Engine struct {
	Registry *funcreg.Registry
	Options  emit.Options
}

// NewEngine returns an Engine with a fresh function registry and
// default emission options.
func NewEngine() *Engine {
	return &Engine{
		Registry: funcreg.New(),
		Options:  emit.DefaultOptions(),
	}
}

// Compiled is the result of compiling one expression: the sealed
// bytecode program. The first resolver/checker error is returned by
// CompileValue instead.
type Compiled struct {
	Instrs []emit.Instr
}

// CompileValue resolves expr against sources/aliases, checks it
// (rejecting aggregates when allowAggregates is false), and emits its
// value form, following the pipeline spec.md §6 assigns to the
// statement compiler: resolve → check → emit-value → seal.
func (e *Engine) CompileValue(sources []resolve.TableSource, aliases []resolve.ResultAlias, expr ast.Expr, allowAggregates bool) (*Compiled, error) {
	ctx := resolve.NewContext(e.Registry)

	resolved, errCount := resolve.Resolve(ctx, sources, aliases, expr)
	if errCount > 0 {
		return nil, errors.New(ctx.FirstError())
	}

	if _, errCount = resolve.Check(ctx, resolved, allowAggregates); errCount > 0 {
		return nil, errors.New(ctx.FirstError())
	}

	if allowAggregates {
		resolved, errCount = resolve.AnalyzeAggregates(ctx, resolved)
		if errCount > 0 {
			return nil, errors.New(ctx.FirstError())
		}
	}

	prog := emit.New(e.Options)
	emit.EmitValue(prog, resolved)
	instrs, err := prog.Seal()
	if err != nil {
		return nil, err
	}
	return &Compiled{Instrs: instrs}, nil
}

// NewSorter constructs an external sorter over an OS-backed VFS whose
// temp files go in the caller-supplied tempDir, wiring Config, a Comparer and the default goroutine
// Spawner the way a query executor's ORDER BY / GROUP BY path would
// (spec.md §6's "Sorter entry points", consumed here rather than by a
// virtual machine this module doesn't implement).
func (e *Engine) NewSorter(cfg sorter.Config, cmp sorter.Comparer, tempDir string, nKeyFields int) (*sorter.Sorter, error) {
	fs := vfs.NewOS(tempDir)
	return sorter.New(cfg, cmp, fs, nil, sorter.GoSpawner{}, nil, nKeyFields)
}

// Describe returns the module's error taxonomy (spec.md §7), exposed
// for cmd/sqlcorebench's -list-errors flag.
func Describe() []string {
	return sqlerr.Describe()
}
