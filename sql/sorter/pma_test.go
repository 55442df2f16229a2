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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPMAIterHandlesZeroLengthTerminalRecord pins down a trailer-sizing
// edge case: a PMA whose final record is zero-length puts that
// record's header varint at offset end-1, one byte before the content
// region ends. The reader always requests a full
// binary.MaxVarintLen64-byte window starting at a header's offset, so
// the trailer pad must be wide enough to satisfy that window even from
// the very last valid header offset.
func TestPMAIterHandlesZeroLengthTerminalRecord(t *testing.T) {
	f, err := tempVFS(t).OpenTemp()
	require.NoError(t, err)

	list := push(nil, nil) // zero-length terminal record
	list = push(list, []byte("ab"))

	var total int64
	for p := list; p != nil; p = p.next {
		total += recordHeaderSize(len(p.key)) + int64(len(p.key))
	}
	_, err = writePMA(f, 0, total, list)
	require.NoError(t, err)

	it, _, err := newPMAIter(f, 0)
	require.NoError(t, err)

	var got [][]byte
	for !it.done {
		got = append(got, append([]byte{}, it.key...))
		require.NoError(t, it.advance())
	}
	require.Equal(t, [][]byte{[]byte("ab"), {}}, got)
}
