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

// Package vfs is the host-provided temp-file shim the external sorter
// spills PMAs through (spec.md §6, "Temp-file VFS"). sql/sorter never
// touches an *os.File directly; it only ever sees the File interface
// below, so a host can substitute an in-memory or BoltDB-backed
// implementation (see Bolt in this package) without the sorter
// noticing.
package vfs

import "time"

// File is the minimal temp-file surface the sorter needs: positioned
// read/write, truncate, and close. fetch/unfetch (mmap attempts) are
// optional — a File that cannot mmap simply always fails Fetch, and
// the sorter falls back to buffered reads (spec.md §4.4).
type File interface {
	ReadAt(p []byte, off int64) (n int, err error)
	WriteAt(p []byte, off int64) (n int, err error)
	Truncate(size int64) error
	Close() error

	// Fetch attempts to map [off, off+n) into memory and returns a
	// slice backed directly by the mapping. ok is false when the
	// implementation does not support mmap or the range can't be
	// mapped; callers must fall back to ReadAt in that case.
	Fetch(off int64, n int) (p []byte, ok bool)
	// Unfetch releases a mapping previously returned by Fetch.
	Unfetch(off int64, p []byte)
}

// VFS opens and names temporary files. Implementations: OS (default,
// backed by real temp files) and Bolt (an embedded-KV-backed
// alternative, see bolt.go) — both satisfy the same interface so
// sql/sorter can be pointed at either without code changes.
type VFS interface {
	OpenTemp() (File, error)
	// ControlMmapSize hints the maximum number of bytes the VFS should
	// be willing to map via File.Fetch; implementations that don't
	// support mmap ignore it.
	ControlMmapSize(n int64)
	// CurrentTimeMillis is debug-only instrumentation (spec.md §6).
	CurrentTimeMillis() int64
}

// nowMillis is the unhooked wall-clock source CurrentTimeMillis uses by
// default; tests can swap package-level behavior by embedding a fake
// VFS instead of mutating this.
func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
