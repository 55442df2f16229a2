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

// Package sorter is the external merge-sort engine (spec.md §4.4): an
// ordered-stream abstraction fed an unbounded series of opaque record
// keys, spilling to temporary packed-memory-array files when an
// in-memory threshold is crossed, producing the sorted stream back via
// a tournament-tree k-way merge. The virtual machine that drives it
// and the key-comparison routine that understands record contents are
// both external collaborators (spec.md §1); this package only owns the
// write/spill/merge machinery.
package sorter

import "github.com/dolthub/sqlcore/internal/vfs"

// Comparer is the host-supplied key-comparison routine (spec.md §6:
// "Key comparison"). Scratch is a reusable unpacked-record object the
// sorter allocates once via NewScratch and passes back on every call,
// matching the source's "populated from the right-hand record on each
// call and reused" convention.
type Comparer interface {
	NewScratch(nKeyFields int) (scratch interface{}, err error)
	// Compare returns -1, 0 or +1 according to whether left sorts
	// before, equal to, or after right. Implementations may return an
	// error (OOM while unpacking right into scratch, for instance);
	// the sorter treats any error as sticky, per §4.4's failure model.
	Compare(scratch interface{}, left, right []byte) (int, error)
}

// VFS is the temp-file shim the sorter spills PMAs through (spec.md
// §6: "Temp-file VFS"). It is satisfied directly by internal/vfs.VFS;
// the alias keeps this package's public surface self-contained without
// forcing callers outside sql/sorter to import internal/vfs.
type VFS = vfs.VFS

// File is the per-PMA-file handle (spec.md §6); alias of vfs.File for
// the same reason as VFS above.
type File = vfs.File

// HeapHint reports whether the host's heap is nearly full, one of the
// two flush triggers for a non-arena-backed in-memory list (spec.md
// §4.4 write path). internal/arena.Ctx satisfies this directly.
type HeapHint interface {
	HeapNearlyFull() bool
}

// Handle is a joinable unit of background work (spec.md §6: "Thread
// primitives"). Join blocks until the work started by Spawn completes
// and returns any error it produced.
type Handle interface {
	Join() error
}

// Spawner starts background work (spec.md §6: "spawn(fn, arg) →
// handle"). The default GoSpawner runs fn on a goroutine; a caller
// that wants single-threaded cooperative mode simply never configures
// a Spawner (Config.Workers == 0), and the sorter does all flush/merge
// work inline on the calling goroutine instead.
type Spawner interface {
	Spawn(fn func() error) Handle
}
