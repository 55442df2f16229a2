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
	"io"

	"github.com/dolthub/sqlcore/internal/sqlerr"
)

// pmaIter walks one PMA's records in ascending order (spec.md §4.4
// "PMA read format and buffering"), grounded on the source's
// VdbeSorterIter: a file handle, a read cursor, an EOF offset, a
// scratch allocation for records straddling a buffer edge, and a
// page-sized buffer for bulk reads. done mirrors the source's
// File==nil EOF sentinel.
type pmaIter struct {
	file File
	off  int64 // next header to read
	end  int64 // offset one past the last content byte (before the trailer pad)

	mapped      []byte
	mappedStart int64

	page      []byte
	pageStart int64
	pageValid int

	alloc []byte

	key  []byte
	done bool
}

// newPMAIter opens an iterator over the PMA starting at startOff in f,
// positioned at its first record (or EOF if the PMA is empty).
func newPMAIter(f File, startOff int64) (*pmaIter, int64, error) {
	it := &pmaIter{file: f}
	total, dataOff, err := readUvarintFresh(f, startOff)
	if err != nil {
		return nil, 0, sqlerr.Wrapf(sqlerr.ErrCorruption.New(err.Error()), "PMA header at offset %d", startOff)
	}
	it.off = dataOff
	it.end = dataOff + int64(total)
	if err := it.advance(); err != nil {
		return nil, 0, err
	}
	return it, it.end + pmaTrailerBytes, nil
}

// readUvarintFresh reads a single varint directly from f at off,
// bypassing the iterator's page cache — used only for the one-off PMA
// header read before an iterator's buffering state exists.
func readUvarintFresh(f File, off int64) (uint64, int64, error) {
	tmp := make([]byte, binary.MaxVarintLen64)
	n, err := f.ReadAt(tmp, off)
	if err != nil && n == 0 {
		return 0, 0, err
	}
	v, sz := binary.Uvarint(tmp[:n])
	if sz <= 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	return v, off + int64(sz), nil
}

// read returns exactly n bytes starting at off. It tries the
// memory-mapped window first, then the bulk page buffer, and only
// falls back to a direct positioned read — copied into the scratch
// allocation — when the span straddles both (spec.md §4.4).
func (it *pmaIter) read(off int64, n int) ([]byte, error) {
	if it.mapped != nil && off >= it.mappedStart && off+int64(n) <= it.mappedStart+int64(len(it.mapped)) {
		s := off - it.mappedStart
		return it.mapped[s : s+int64(n)], nil
	}
	if it.page != nil && off >= it.pageStart && off+int64(n) <= it.pageStart+int64(it.pageValid) {
		s := off - it.pageStart
		return it.page[s : s+int64(n)], nil
	}
	if mp, ok := it.file.Fetch(off, PageSize); ok {
		it.mapped = mp
		it.mappedStart = off
		it.page = nil
		if int64(n) <= int64(len(mp)) {
			return mp[:n], nil
		}
	} else {
		it.mapped = nil
		if it.page == nil {
			it.page = make([]byte, PageSize)
		}
		got, err := it.file.ReadAt(it.page, off)
		if err != nil && got == 0 {
			return nil, err
		}
		it.pageStart = off
		it.pageValid = got
		if n <= got {
			return it.page[:n], nil
		}
	}
	if cap(it.alloc) < n {
		it.alloc = make([]byte, n)
	}
	it.alloc = it.alloc[:n]
	got, err := it.file.ReadAt(it.alloc, off)
	if err != nil && got < n {
		return nil, err
	}
	return it.alloc, nil
}

func (it *pmaIter) readVarint(off int64) (uint64, int64, error) {
	b, err := it.read(off, binary.MaxVarintLen64)
	if err != nil && len(b) == 0 {
		return 0, 0, err
	}
	v, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, 0, sqlerr.ErrCorruption.New("invalid varint")
	}
	return v, off + int64(n), nil
}

// advance moves to the next record, or marks EOF when the PMA's
// content has been exhausted.
func (it *pmaIter) advance() error {
	if it.off >= it.end {
		it.done = true
		it.key = nil
		return nil
	}
	n, dataOff, err := it.readVarint(it.off)
	if err != nil {
		return err
	}
	key, err := it.read(dataOff, int(n))
	if err != nil {
		return err
	}
	it.key = key
	it.off = dataOff + int64(n)
	return nil
}
