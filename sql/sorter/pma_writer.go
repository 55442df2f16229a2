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

import "encoding/binary"

// pmaTrailerBytes pads every PMA file with nine zero bytes past the
// final record so that a varint read issued from any valid offset can
// always pull binary.MaxVarintLen64 (10) bytes without a short read
// (spec.md §4.4, grounded on the source's "eightZeros" trailer in
// vdbeSorterListToPMA, widened here by one byte: the reader always
// requests a full MaxVarintLen64 window, so the pad must cover that
// whole window past the very last content byte, not just enough for
// one more byte).
const pmaTrailerBytes = binary.MaxVarintLen64 - 1

// pmaWriter coalesces writes into PageSize-sized blocks before they
// hit the underlying File (spec.md §4.4: "page-aligned buffered
// writer"). Once a write fails, every subsequent call is a no-op and
// the error is returned from finish (spec.md: "tracks an error flag;
// once set it discards all subsequent writes").
type pmaWriter struct {
	file   File
	off    int64 // file offset the next flushed page will land at
	buf    []byte
	err    error
}

func newPMAWriter(f File, startOff int64) *pmaWriter {
	return &pmaWriter{file: f, off: startOff, buf: make([]byte, 0, PageSize)}
}

func (w *pmaWriter) writeBytes(p []byte) {
	if w.err != nil {
		return
	}
	for len(p) > 0 {
		space := cap(w.buf) - len(w.buf)
		if space == 0 {
			w.flushPage()
			if w.err != nil {
				return
			}
			space = cap(w.buf)
		}
		take := space
		if take > len(p) {
			take = len(p)
		}
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
	}
}

func (w *pmaWriter) flushPage() {
	if w.err != nil || len(w.buf) == 0 {
		return
	}
	n, err := w.file.WriteAt(w.buf, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += int64(n)
	w.buf = w.buf[:0]
}

func (w *pmaWriter) writeVarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.writeBytes(tmp[:n])
}

// finish flushes any short tail block and returns the offset one past
// the last byte written, or the sticky write error.
func (w *pmaWriter) finish() (int64, error) {
	w.flushPage()
	return w.off, w.err
}

// writePMA serializes sorted (already in ascending-key order) as one
// PMA starting at startOff: a leading varint of totalBytes (the sum of
// each record's own varint-length header plus its key bytes, summed by
// the caller over the sorted list before this call — spec.md §4.4),
// followed by each record's (varint length, key bytes), followed by
// the trailing pad.
func writePMA(f File, startOff int64, totalBytes int64, sorted *recordNode) (endOff int64, err error) {
	w := newPMAWriter(f, startOff)
	w.writeVarint(uint64(totalBytes))
	for p := sorted; p != nil; p = p.next {
		w.writeVarint(uint64(len(p.key)))
		w.writeBytes(p.key)
	}
	w.writeBytes(make([]byte, pmaTrailerBytes))
	return w.finish()
}
