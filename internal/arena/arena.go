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

// Package arena provides the scoped-allocation context threaded into
// sql/ast's node constructors (ast.Factory); sql/sorter can take a Ctx
// as its HeapHint, and sql/resolve does not use it. See DESIGN NOTES §9 ("Global allocator state"). Go has no manual
// allocation failure mode, but the expression-tree and sorter designs
// this module ports from model allocation as fallible (OOM is a first
// class, sticky error) and the arena keeps that contract: callers that
// want to simulate bounded memory (the sort-equivalence property,
// Testable Property 8) set a budget and Alloc reports exhaustion the
// same way a real allocator would.
package arena

import (
	"github.com/sirupsen/logrus"
)

// Ctx is a task-local allocation context. The zero value has no
// budget and never reports OOM; it is safe to use unconfigured in
// production, and configured with a budget only by tests that need to
// force the spill path deterministically (scenario F in spec.md §8).
type Ctx struct {
	// Budget is the maximum number of bytes this context will admit
	// via Alloc before reporting OOM. Zero means unbounded.
	Budget int64

	used int64

	// Log receives OOM and budget-exhaustion diagnostics. Defaults to
	// a discard logger so library use stays silent.
	Log *logrus.Entry
}

// New returns an arena.Ctx with an optional budget. budget <= 0 means
// unbounded.
func New(budget int64) *Ctx {
	return &Ctx{Budget: budget, Log: discardLogger()}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return logrus.NewEntry(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Alloc admits n additional bytes against the budget, returning false
// (OOM) if doing so would exceed it. The recursive-allocation
// invariant from DESIGN NOTES §9 ("children of a freed allocation are
// also freed") is realized by callers calling Free on the same n when
// the owning node is released, not by the arena tracking ownership
// itself — Go's GC owns the actual memory.
func (c *Ctx) Alloc(n int64) bool {
	if c == nil || c.Budget <= 0 {
		return true
	}
	if c.used+n > c.Budget {
		if c.Log != nil {
			c.Log.WithFields(logrus.Fields{
				"requested": n,
				"used":      c.used,
				"budget":    c.Budget,
			}).Warn("arena: allocation would exceed budget")
		}
		return false
	}
	c.used += n
	return true
}

// Free releases n bytes back to the budget. It never goes negative;
// over-freeing is a caller bug but arena degrades to zero rather than
// panicking, since this bookkeeping is advisory, not a real allocator.
func (c *Ctx) Free(n int64) {
	if c == nil {
		return
	}
	c.used -= n
	if c.used < 0 {
		c.used = 0
	}
}

// Used reports bytes currently charged against the budget.
func (c *Ctx) Used() int64 {
	if c == nil {
		return 0
	}
	return c.used
}

// HeapNearlyFull is the host hint consumed by sql/sorter's write path
// (spec.md §4.4: "or when list_size > min_pma_size and the host's
// 'heap nearly full' hint returns true"). The arena-backed
// implementation treats 90% of budget or more as "nearly full"; a Ctx with no
// budget never reports nearly-full, since it has nothing to be nearly
// full of.
func (c *Ctx) HeapNearlyFull() bool {
	if c == nil || c.Budget <= 0 {
		return false
	}
	return float64(c.used) >= 0.9*float64(c.Budget)
}
