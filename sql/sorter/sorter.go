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
	"encoding/binary"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/sqlcore/internal/sqlerr"
)

type phase int

const (
	phaseInit phase = iota
	phaseWrite
	phaseRead
	phaseClosed
)

// pmaLocation names one flushed PMA: the file it lives in and the
// byte offset its leading length varint starts at.
type pmaLocation struct {
	file   File
	offset int64
}

// flushSlot is one subtask in the round-robin flush dispatch (spec.md
// §4.4/§5: "each write-time flush is dispatched round-robin to one of
// N-1 worker threads; the Nth subtask is the foreground thread"). Each
// slot owns its temp file exclusively — "there is no file sharing"
// (spec.md §5) — opened lazily on its first flush.
type flushSlot struct {
	background bool
	file       File
	off        int64
	pmas       []pmaLocation
	handle     Handle
}

// Sorter is the external merge-sort engine described by spec.md §4.4:
// an ordered-stream cursor fed record keys via Write, spilling to
// packed-memory-array temp files when configured thresholds are
// crossed, and served back in order via Advance/Rowkey/Compare after
// Rewind. State follows init → [write]* → rewind →
// [rowkey|advance|compare]* → close, enforced by the phase field;
// reset cheaply rewinds to init.
type Sorter struct {
	cfg        Config
	comparer   Comparer
	vfs        VFS
	heap       HeapHint
	spawner    Spawner
	metrics    *Metrics
	nKeyFields int

	scratch interface{}
	err     sqlerr.Sticky
	phase   phase

	list      *recordNode
	listCount int
	listSize  int64

	slots    []*flushSlot
	nextSlot int

	tree    *mergeTree
	memIter *recordNode // set only when rewind served directly from memory

	// Log and Tracer are optional structured-diagnostics hooks (spec.md
	// ambient logging/tracing conventions), defaulted by New to a
	// discard logger and a no-op tracer so a caller that never sets
	// them observes no behavior change.
	Log    *logrus.Entry
	Tracer opentracing.Tracer
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return logrus.NewEntry(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// New constructs a Sorter bound to the given comparison routine,
// temp-file VFS and tunables (spec.md §6 "init(db, n-key-fields,
// cursor)"). heap, spawner and metrics may be nil: a nil heap hint
// disables the heap-nearly-full flush trigger, a nil spawner forces
// Config.Workers to behave as single-threaded cooperative mode, and a
// nil metrics makes every counter update a no-op. Log and Tracer start
// out as a discard logger and a no-op tracer; set them on the returned
// Sorter before use to observe spill/worker-lifecycle events and
// Rewind spans.
func New(cfg Config, comparer Comparer, fs VFS, heap HeapHint, spawner Spawner, metrics *Metrics, nKeyFields int) (*Sorter, error) {
	scratch, err := comparer.NewScratch(nKeyFields)
	if err != nil {
		return nil, sqlerr.ErrOOM.New()
	}
	s := &Sorter{
		cfg:        cfg,
		comparer:   comparer,
		vfs:        fs,
		heap:       heap,
		spawner:    spawner,
		metrics:    metrics,
		nKeyFields: nKeyFields,
		scratch:    scratch,
		phase:      phaseInit,
		Log:        discardLogger(),
		Tracer:     opentracing.NoopTracer{},
	}
	nSlots := cfg.Workers + 1
	if nSlots < 1 || spawner == nil {
		nSlots = 1
	}
	s.slots = make([]*flushSlot, nSlots)
	for i := range s.slots {
		s.slots[i] = &flushSlot{background: spawner != nil && i < nSlots-1}
	}
	return s, nil
}

func (s *Sorter) compareRecords(left, right []byte) (int, error) {
	return s.comparer.Compare(s.scratch, left, right)
}

// recordHeaderSize returns the varint width of a record's length
// prefix, the "header-size" term in the write-path trigger formula.
func recordHeaderSize(n int) int64 {
	var tmp [binary.MaxVarintLen64]byte
	return int64(binary.PutUvarint(tmp[:], uint64(n)))
}

// Write appends key to the in-memory write list, flushing to a PMA
// first if the configured thresholds require it (spec.md §4.4 "Write
// path"). This module has no bulk-memory-arena fast path (Go's GC
// makes manually carving a contiguous arena out of the record list
// pointless); only the list_size-based triggers apply.
func (s *Sorter) Write(key []byte) error {
	if err := s.err.Err(); err != nil {
		return err
	}
	if s.phase != phaseInit && s.phase != phaseWrite {
		return s.fail(sqlerr.ErrMisuse.New("write called out of order"))
	}
	s.phase = phaseWrite

	nReq := int64(len(key)) + recordHeaderSize(len(key))
	s.list = push(s.list, key)
	s.listCount++
	s.listSize += nReq

	needFlush := s.listSize > s.cfg.MaxPMASize ||
		(s.listSize > s.cfg.MinPMASize && s.heap != nil && s.heap.HeapNearlyFull())
	if !needFlush {
		return nil
	}
	list := s.list
	s.list = nil
	s.listCount = 0
	s.listSize = 0
	if err := s.dispatchFlush(list); err != nil {
		return s.fail(err)
	}
	return nil
}

// dispatchFlush hands list to the next slot in round-robin order,
// joining that slot's previous flush first if it is still running.
func (s *Sorter) dispatchFlush(list *recordNode) error {
	slot := s.slots[s.nextSlot]
	s.nextSlot = (s.nextSlot + 1) % len(s.slots)
	if slot.handle != nil {
		h := slot.handle
		slot.handle = nil
		s.Log.Debug("sorter: joining previous flush before reusing slot")
		if err := h.Join(); err != nil {
			return err
		}
	}
	if !slot.background {
		return s.writeOnePMA(slot, list)
	}
	s.Log.Debug("sorter: spawning background flush worker")
	slot.handle = s.spawner.Spawn(func() error {
		return s.writeOnePMA(slot, list)
	})
	return nil
}

func (s *Sorter) ensureSlotFile(slot *flushSlot) error {
	if slot.file != nil {
		return nil
	}
	f, err := s.vfs.OpenTemp()
	if err != nil {
		return err
	}
	slot.file = f
	return nil
}

// writeOnePMA sorts list and appends it as one PMA to slot's temp
// file. Safe to run on a background goroutine: slot's file and pmas
// fields are touched by exactly one worker between dispatch and join,
// per spec.md §5's ownership-move rule.
func (s *Sorter) writeOnePMA(slot *flushSlot, list *recordNode) error {
	sorted, err := memSort(s.compareRecords, list)
	if err != nil {
		return err
	}
	if err := s.ensureSlotFile(slot); err != nil {
		return err
	}
	var total int64
	for p := sorted; p != nil; p = p.next {
		total += recordHeaderSize(len(p.key)) + int64(len(p.key))
	}
	endOff, err := writePMA(slot.file, slot.off, total, sorted)
	if err != nil {
		return err
	}
	slot.pmas = append(slot.pmas, pmaLocation{file: slot.file, offset: slot.off})
	slot.off = endOff
	s.metrics.flushed(total)
	s.Log.WithField("bytes", total).Debug("sorter: spilled a PMA")
	return nil
}

func (s *Sorter) fail(err error) error {
	s.err.Set(err)
	return err
}

// Rewind terminates the write phase and readies reads (spec.md §4.4
// "Rewind"). If nothing was ever flushed, the remaining in-memory list
// is sorted and served directly; otherwise the list is flushed as a
// final PMA, all outstanding flush workers are joined, and a
// tournament-tree merge is built over every PMA written.
func (s *Sorter) Rewind() (eof bool, err error) {
	span := s.Tracer.StartSpan("sorter.Rewind")
	defer span.Finish()

	if err := s.err.Err(); err != nil {
		return true, err
	}
	if s.phase != phaseInit && s.phase != phaseWrite {
		return true, s.fail(sqlerr.ErrMisuse.New("rewind called out of order"))
	}

	for _, slot := range s.slots {
		if slot.handle != nil {
			h := slot.handle
			slot.handle = nil
			if err := h.Join(); err != nil {
				return true, s.fail(err)
			}
		}
	}

	totalPMAs := 0
	for _, slot := range s.slots {
		totalPMAs += len(slot.pmas)
	}

	if totalPMAs == 0 {
		sorted, err := memSort(s.compareRecords, s.list)
		if err != nil {
			return true, s.fail(err)
		}
		s.list = nil
		s.memIter = sorted
		s.phase = phaseRead
		return s.memIter == nil, nil
	}

	if s.list != nil {
		list := s.list
		s.list = nil
		if err := s.writeOnePMA(s.slots[0], list); err != nil {
			return true, s.fail(err)
		}
	}

	var leaves []mergeSource
	for _, slot := range s.slots {
		for _, loc := range slot.pmas {
			it, _, err := newPMAIter(loc.file, loc.offset)
			if err != nil {
				return true, s.fail(err)
			}
			leaves = append(leaves, it)
		}
	}
	tree, err := s.buildMergeTree(leaves)
	if err != nil {
		return true, s.fail(err)
	}
	s.tree = tree
	s.metrics.mergeDepth(mergeDepth(len(leaves)))
	s.phase = phaseRead
	return s.tree.EOF(), nil
}

// buildMergeTree builds the merge-engine tree described by spec.md
// §4.4 "Incremental & multi-level merge": when leaves outnumber
// FanIn, they are chunked into FanIn-wide tournament trees and each
// chunk's tree is wrapped as a single incrementalMerger source one
// level up, repeating until a single root tree remains (depth
// ⌈log16 n⌉). Unlike the source this keeps each level's state resident
// in memory rather than rematerializing it to an intermediate temp
// file: nothing is gained by spilling a merge level back to disk
// within a single process, and the tournament-tree state already
// holds exactly the working set a backing file region would.
func (s *Sorter) buildMergeTree(leaves []mergeSource) (*mergeTree, error) {
	if len(leaves) <= FanIn {
		return newMergeTree(s.compareRecords, leaves)
	}
	var next []mergeSource
	for i := 0; i < len(leaves); i += FanIn {
		end := i + FanIn
		if end > len(leaves) {
			end = len(leaves)
		}
		sub, err := newMergeTree(s.compareRecords, leaves[i:end])
		if err != nil {
			return nil, err
		}
		next = append(next, &incrementalMerger{tree: sub})
	}
	return s.buildMergeTree(next)
}

func mergeDepth(n int) int {
	if n <= 1 {
		return 1
	}
	d := 0
	for reach := 1; reach < n; reach *= FanIn {
		d++
	}
	return d
}

// incrementalMerger is a non-leaf reader in the merge-engine tree: it
// refills from its child engine on demand via mergeAdvance, the way
// spec.md §4.4 describes a merger "refilling that region from its
// child engine on demand".
type incrementalMerger struct {
	tree *mergeTree
}

func (m *incrementalMerger) mergeKey() []byte    { return m.tree.Key() }
func (m *incrementalMerger) mergeEOF() bool      { return m.tree.EOF() }
func (m *incrementalMerger) mergeAdvance() error { return m.tree.Advance() }

// Advance pops the current minimum and walks the tree back up to the
// root (spec.md §4.4 "Advance / key-access").
func (s *Sorter) Advance() (eof bool, err error) {
	if err := s.err.Err(); err != nil {
		return true, err
	}
	if s.phase != phaseRead {
		return true, s.fail(sqlerr.ErrMisuse.New("advance called out of order"))
	}
	if s.tree != nil {
		if s.tree.EOF() {
			return true, nil
		}
		if err := s.tree.Advance(); err != nil {
			return true, s.fail(err)
		}
		return s.tree.EOF(), nil
	}
	if s.memIter == nil {
		return true, nil
	}
	s.memIter = s.memIter.next
	return s.memIter == nil, nil
}

// Rowkey returns the current minimum key, valid until the next
// Advance (spec.md §4.4).
func (s *Sorter) Rowkey() ([]byte, error) {
	if err := s.err.Err(); err != nil {
		return nil, err
	}
	if s.phase != phaseRead {
		return nil, s.fail(sqlerr.ErrMisuse.New("rowkey called out of order"))
	}
	if s.tree != nil {
		if s.tree.EOF() {
			return nil, s.fail(sqlerr.ErrMisuse.New("rowkey called at EOF"))
		}
		return s.tree.Key(), nil
	}
	if s.memIter == nil {
		return nil, s.fail(sqlerr.ErrMisuse.New("rowkey called at EOF"))
	}
	return s.memIter.key, nil
}

// Compare decodes the current sorter key against a caller-owned key
// and returns the three-valued comparison (spec.md §4.4 "compare").
func (s *Sorter) Compare(key []byte) (int, error) {
	cur, err := s.Rowkey()
	if err != nil {
		return 0, err
	}
	res, err := s.compareRecords(cur, key)
	if err != nil {
		return 0, s.fail(err)
	}
	return res, nil
}

// Reset cheaply rewinds the sorter back to init, discarding any
// flushed PMAs and in-memory list (spec.md §4.4 "reset rewinds to
// init cheaply").
func (s *Sorter) Reset() error {
	if s.phase == phaseClosed {
		return sqlerr.ErrMisuse.New("reset called after close")
	}
	for _, slot := range s.slots {
		if slot.handle != nil {
			h := slot.handle
			slot.handle = nil
			_ = h.Join()
		}
		if slot.file != nil {
			_ = slot.file.Close()
		}
		slot.file = nil
		slot.off = 0
		slot.pmas = nil
	}
	s.list = nil
	s.listCount = 0
	s.listSize = 0
	s.tree = nil
	s.memIter = nil
	s.err.Reset()
	s.phase = phaseInit
	return nil
}

// Close releases every resource regardless of any previously observed
// error (spec.md §4.4/§7: "close always releases resources regardless
// of error state").
func (s *Sorter) Close() error {
	for _, slot := range s.slots {
		if slot.handle != nil {
			h := slot.handle
			slot.handle = nil
			_ = h.Join()
		}
		if slot.file != nil {
			_ = slot.file.Close()
		}
	}
	s.phase = phaseClosed
	return s.err.Err()
}

// Err reports the sticky error latched by any prior operation, or nil.
func (s *Sorter) Err() error {
	return s.err.Err()
}
