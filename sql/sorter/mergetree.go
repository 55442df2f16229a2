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

package sorter

// mergeTree is a tournament (loser/winner) tree over a fixed set of
// sources, each exposing the subset of pmaIter it needs to merge
// (spec.md §4.4 "Tournament-tree merge"). For N sources rounded up to
// the next power of two P: tree[i] for i>=P/2 names the winner of
// comparing sources 2*(i-P/2) and 2*(i-P/2)+1; each shallower level
// aggregates the next down; tree[1] always names the source currently
// holding the minimum key. tree[0] is unused. A source at EOF compares
// greater than every live key; ties favor the lower source index, so
// the merge is stable when every source is itself stable.
//
// Grounded on the source's aTree/aIter comment block and
// SorterDoCompare/SorterNext.
type mergeTree struct {
	cmp   compareFunc
	srcs  []mergeSource
	tree  []int
}

// mergeSource is the slice of pmaIter behavior the tournament tree
// needs; both leaf PMA iterators and incremental mergers satisfy it.
type mergeSource interface {
	mergeKey() []byte
	mergeEOF() bool
	mergeAdvance() error
}

func (it *pmaIter) mergeKey() []byte    { return it.key }
func (it *pmaIter) mergeEOF() bool      { return it.done }
func (it *pmaIter) mergeAdvance() error { return it.advance() }

type eofSource struct{}

func (eofSource) mergeKey() []byte    { return nil }
func (eofSource) mergeEOF() bool      { return true }
func (eofSource) mergeAdvance() error { return nil }

// newMergeTree builds a tournament tree over srcs, each already
// positioned at its first key (or EOF). Fewer than two real sources is
// padded out to a tree of size 2 with an eofSource filling the gap.
func newMergeTree(cmp compareFunc, srcs []mergeSource) (*mergeTree, error) {
	n := len(srcs)
	p := 2
	for p < n {
		p *= 2
	}
	padded := make([]mergeSource, p)
	copy(padded, srcs)
	for i := n; i < p; i++ {
		padded[i] = eofSource{}
	}
	mt := &mergeTree{cmp: cmp, srcs: padded, tree: make([]int, p)}
	for i := p - 1; i > 0; i-- {
		if err := mt.doCompare(i); err != nil {
			return nil, err
		}
	}
	return mt, nil
}

// doCompare recomputes tree[iOut] from its two children, exactly
// mirroring SorterDoCompare's leaf-vs-interior branch.
func (mt *mergeTree) doCompare(iOut int) error {
	p := len(mt.tree)
	var i1, i2 int
	if iOut >= p/2 {
		i1 = (iOut - p/2) * 2
		i2 = i1 + 1
	} else {
		i1 = mt.tree[iOut*2]
		i2 = mt.tree[iOut*2+1]
	}

	s1, s2 := mt.srcs[i1], mt.srcs[i2]
	winner := i1
	switch {
	case s1.mergeEOF() && s2.mergeEOF():
		winner = i1
	case s1.mergeEOF():
		winner = i2
	case s2.mergeEOF():
		winner = i1
	default:
		res, err := mt.cmp(s1.mergeKey(), s2.mergeKey())
		if err != nil {
			return err
		}
		if res > 0 {
			winner = i2
		}
	}
	mt.tree[iOut] = winner
	return nil
}

// Winner returns the index (into the padded source slice) currently
// holding the minimum key.
func (mt *mergeTree) Winner() int { return mt.tree[1] }

// EOF reports whether every source has been exhausted.
func (mt *mergeTree) EOF() bool { return mt.srcs[mt.Winner()].mergeEOF() }

// Key returns the current minimum key. Valid until the next Advance.
func (mt *mergeTree) Key() []byte { return mt.srcs[mt.Winner()].mergeKey() }

// Advance moves the winning source forward one record and recomputes
// every ancestor on its path to the root — roughly log2(P) comparisons
// (spec.md §4.4), mirroring SorterNext.
func (mt *mergeTree) Advance() error {
	prev := mt.Winner()
	if err := mt.srcs[prev].mergeAdvance(); err != nil {
		return err
	}
	p := len(mt.tree)
	for i := (p + prev) / 2; i > 0; i /= 2 {
		if err := mt.doCompare(i); err != nil {
			return err
		}
	}
	return nil
}
