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

// recordNode is one element of the in-memory write list. New writes
// are prepended (the list head is always the most recently written
// record), matching the source's singly-linked "push onto pRecord"
// convention — the 64-bin merge below only produces the insertion-
// order stability Testable Property 6 requires when fed records in
// that same most-recent-first traversal order.
type recordNode struct {
	key  []byte
	next *recordNode
}

// push prepends rec onto the list headed at head and returns the new
// head.
func push(head *recordNode, key []byte) *recordNode {
	return &recordNode{key: key, next: head}
}

// compareFunc compares two record keys, wrapping the host Comparer
// with whatever scratch object the caller already allocated.
type compareFunc func(left, right []byte) (int, error)

// merge stably merges two already-sorted lists p1 and p2 into one,
// preferring p1 on a tie (spec.md §4.4 "in-memory sort ... stable on
// records with equal keys"; grounded on the source's vdbeSorterMerge,
// which takes the same res<=0-favors-p1 branch).
func merge(cmp compareFunc, p1, p2 *recordNode) (*recordNode, error) {
	var dummy recordNode
	tail := &dummy
	for p1 != nil && p2 != nil {
		res, err := cmp(p1.key, p2.key)
		if err != nil {
			return nil, err
		}
		if res <= 0 {
			tail.next = p1
			tail = p1
			p1 = p1.next
		} else {
			tail.next = p2
			tail = p2
			p2 = p2.next
		}
	}
	if p1 != nil {
		tail.next = p1
	} else {
		tail.next = p2
	}
	return dummy.next, nil
}

// memSort runs the 64-bin merge sort over the most-recent-first write
// list headed at head (spec.md §4.4: "A merge sort organised around a
// fixed array of 64 bins. Each incoming record is repeatedly merged
// into bin i (freeing that bin) until an empty bin is found; the final
// bin receives the result. After all records are placed, the bins are
// merged left-to-right into a single ordered list."). Grounded on the
// source's vdbeSorterSort.
func memSort(cmp compareFunc, head *recordNode) (*recordNode, error) {
	var bins [64]*recordNode
	for p := head; p != nil; {
		next := p.next
		p.next = nil
		var err error
		i := 0
		for ; i < len(bins) && bins[i] != nil; i++ {
			p, err = merge(cmp, p, bins[i])
			if err != nil {
				return nil, err
			}
			bins[i] = nil
		}
		bins[i] = p
		p = next
	}
	var out *recordNode
	var err error
	for i := range bins {
		out, err = merge(cmp, out, bins[i])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
