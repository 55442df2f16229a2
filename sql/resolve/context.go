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
	"github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/emit/funcreg"
)

// Context is the parse-time compile state threaded through Resolve,
// Check and AnalyzeAggregates (spec.md §6's "parse-ctx"). It
// accumulates every error raised during a single pass rather than
// stopping at the first one, via hashicorp/go-multierror, matching
// §7's propagation policy ("accumulate error counts and continue
// where safe"); the top-level caller sees only the count and the
// first formatted message, which is all spec.md promises.
type Context struct {
	Registry *funcreg.Registry

	// AggTable accumulates aggregate-table entries across a single
	// query's resolution (spec.md §3).
	AggTable *ast.AggTable

	// InTrigger and pseudo tables back step 3 of identifier binding
	// (spec.md §4.2): inside a trigger body, an otherwise-unmatched
	// bare name retries against the pinned NEW/OLD row.
	InTrigger   bool
	NewPseudo   *TableSource
	OldPseudo   *TableSource

	// NextCursor hands out fresh cursor indices for IN-subselect
	// resolution (spec.md §4.2).
	NextCursor int
	// NextCell hands out fresh memory cell numbers for scalar
	// subqueries.
	NextCell int
	// NextSetID hands out fresh runtime lookup-set identifiers for
	// IN (value-list).
	NextSetID int

	errs  *multierror.Error
	Log   *logrus.Entry
	Tracer opentracing.Tracer
}

// NewContext returns a Context ready for a single statement's worth of
// resolution.
func NewContext(reg *funcreg.Registry) *Context {
	if reg == nil {
		reg = funcreg.New()
	}
	return &Context{
		Registry: reg,
		AggTable: ast.NewAggTable(),
		Log:      discardLogger(),
		Tracer:   opentracing.NoopTracer{},
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return logrus.NewEntry(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// addErr records err without interrupting the walk; callers read the
// running error count from the Context.
func (c *Context) addErr(err error) {
	c.errs = multierror.Append(c.errs, err)
	if c.Log != nil {
		c.Log.WithError(err).Debug("resolve: error recorded")
	}
}

// ErrorCount reports how many errors have been recorded so far.
func (c *Context) ErrorCount() int {
	if c.errs == nil {
		return 0
	}
	return len(c.errs.Errors)
}

// FirstError returns the first recorded error's formatted message, or
// "" if none was recorded — the "(status-code, optional message)"
// pair of spec.md §6 collapses, at this API boundary, to (count,
// message) since Context accumulates by count.
func (c *Context) FirstError() string {
	if c.errs == nil || len(c.errs.Errors) == 0 {
		return ""
	}
	return c.errs.Errors[0].Error()
}

func (c *Context) allocCursor() int {
	id := c.NextCursor
	c.NextCursor++
	return id
}

func (c *Context) allocCell() int {
	id := c.NextCell
	c.NextCell++
	return id
}

func (c *Context) allocSetID() int {
	id := c.NextSetID
	c.NextSetID++
	return id
}
