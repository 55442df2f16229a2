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
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/sqlcore/internal/vfs"
)

// keyComparer compares records whose first byte is the sort key and
// whose remaining bytes are an opaque tag, so tests can assert both
// ordering and stability (which tag rode along with which key).
type keyComparer struct{}

func (keyComparer) NewScratch(nKeyFields int) (interface{}, error) { return nil, nil }

func (keyComparer) Compare(_ interface{}, left, right []byte) (int, error) {
	return bytes.Compare(left[:1], right[:1]), nil
}

func rec(key byte, tag string) []byte {
	return append([]byte{key}, []byte(tag)...)
}

func tempVFS(t *testing.T) *vfs.OS {
	t.Helper()
	dir, err := ioutil.TempDir("", "sqlcore-sorter-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return vfs.NewOS(dir)
}

func drain(t *testing.T, s *Sorter, eof bool) []string {
	t.Helper()
	var got []string
	for !eof {
		key, err := s.Rowkey()
		require.NoError(t, err)
		got = append(got, string(key))
		var err2 error
		eof, err2 = s.Advance()
		require.NoError(t, err2)
	}
	return got
}

// TestSorterRoundTripInMemory is spec.md §8 Scenario E.
func TestSorterRoundTripInMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPMASize = MaxPMASizeUnbounded
	s, err := New(cfg, keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	for _, rc := range []struct {
		key byte
		tag string
	}{{5, "a"}, {2, "b"}, {5, "c"}, {1, "d"}, {3, "e"}} {
		require.NoError(t, s.Write(rec(rc.key, rc.tag)))
	}

	eof, err := s.Rewind()
	require.NoError(t, err)
	require.False(t, eof)

	got := drain(t, s, eof)
	require.Equal(t, []string{"\x01d", "\x02b", "\x03e", "\x05a", "\x05c"}, got)
}

// TestSorterRoundTripSpilled is spec.md §8 Scenario F: same input, a
// max-PMA size small enough to force several spills, same output.
func TestSorterRoundTripSpilled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPMASize = 4 // each record is a 1-byte header + 2-byte key, so two records per PMA
	s, err := New(cfg, keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	for _, rc := range []struct {
		key byte
		tag string
	}{{5, "a"}, {2, "b"}, {5, "c"}, {1, "d"}, {3, "e"}} {
		require.NoError(t, s.Write(rec(rc.key, rc.tag)))
	}

	eof, err := s.Rewind()
	require.NoError(t, err)

	var flushed int
	for _, slot := range s.slots {
		flushed += len(slot.pmas)
	}
	require.GreaterOrEqual(t, flushed, 1)

	got := drain(t, s, eof)
	require.Equal(t, []string{"\x01d", "\x02b", "\x03e", "\x05a", "\x05c"}, got)
}

// TestSorterMonotonicity is spec.md §8 Testable Property 7.
func TestSorterMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPMASize = 8
	s, err := New(cfg, keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	keys := []byte{9, 3, 7, 1, 8, 2, 6, 4, 0, 5}
	for _, k := range keys {
		require.NoError(t, s.Write(rec(k, "x")))
	}

	eof, err := s.Rewind()
	require.NoError(t, err)

	var prev []byte
	for !eof {
		cur, err := s.Rowkey()
		require.NoError(t, err)
		if prev != nil {
			cmp, err := keyComparer{}.Compare(nil, prev, cur)
			require.NoError(t, err)
			require.LessOrEqual(t, cmp, 0)
		}
		prev = append([]byte(nil), cur...)
		eof, err = s.Advance()
		require.NoError(t, err)
	}
}

// TestSorterWriteAfterRewindIsMisuse checks the init→write→rewind→read
// state machine rejects an out-of-order call instead of silently
// accepting it.
func TestSorterWriteAfterRewindIsMisuse(t *testing.T) {
	s, err := New(DefaultConfig(), keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(rec(1, "a")))
	_, err = s.Rewind()
	require.NoError(t, err)

	err = s.Write(rec(2, "b"))
	require.Error(t, err)
}

// TestSorterResetRewindsToInit checks reset discards flushed PMAs and
// lets the sorter be reused for a fresh write/rewind cycle.
func TestSorterResetRewindsToInit(t *testing.T) {
	s, err := New(DefaultConfig(), keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(rec(9, "a")))
	_, err = s.Rewind()
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	require.NoError(t, s.Write(rec(1, "z")))
	eof, err := s.Rewind()
	require.NoError(t, err)
	got := drain(t, s, eof)
	require.Equal(t, []string{"\x01z"}, got)
}

// TestSorterManyPMAsMultiLevelMerge forces more PMAs than FanIn so
// that buildMergeTree must recurse through an incrementalMerger level
// (spec.md §4.4 "Incremental & multi-level merge").
func TestSorterManyPMAsMultiLevelMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPMASize = 1 // force a flush after every single write
	s, err := New(cfg, keyComparer{}, tempVFS(t), nil, nil, nil, 1)
	require.NoError(t, err)
	defer s.Close()

	const n = 20
	want := make([]string, n)
	for i := 0; i < n; i++ {
		key := byte((i*7 + 3) % n) // a fixed pseudo-shuffle, all keys distinct
		require.NoError(t, s.Write(rec(key, "")))
	}
	for i := 0; i < n; i++ {
		want[i] = string([]byte{byte(i)})
	}

	eof, err := s.Rewind()
	require.NoError(t, err)

	var flushed int
	for _, slot := range s.slots {
		flushed += len(slot.pmas)
	}
	require.Greater(t, flushed, FanIn)

	got := drain(t, s, eof)
	require.Equal(t, want, got)
}
