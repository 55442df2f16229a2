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

package vfs

import (
	"os"
	"path/filepath"

	uuid "github.com/satori/go.uuid"
)

// OS is the default VFS: real files in a caller-chosen directory,
// unlinked as soon as they're opened so they vanish even if the
// process is killed before Close runs (spec.md §6: "ephemeral and
// unlinked on close").
type OS struct {
	Dir string
}

// NewOS returns a VFS rooted at dir. dir must already exist.
func NewOS(dir string) *OS {
	return &OS{Dir: dir}
}

func (o *OS) OpenTemp() (File, error) {
	name := filepath.Join(o.Dir, "sqlcore-sort-"+uuid.NewV4().String())
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}
	// Unlink immediately; the open file descriptor keeps the data
	// alive until Close.
	_ = os.Remove(name)
	return &osFile{f: f}, nil
}

func (o *OS) ControlMmapSize(int64)       {}
func (o *OS) CurrentTimeMillis() int64    { return nowMillis() }

// osFile wraps *os.File. Fetch always reports ok=false: this VFS never
// memory-maps, so the sorter's reader always takes the buffered path
// (spec.md §4.4 already specifies that fallback).
type osFile struct {
	f *os.File
}

func (o *osFile) ReadAt(p []byte, off int64) (int, error)  { return o.f.ReadAt(p, off) }
func (o *osFile) WriteAt(p []byte, off int64) (int, error) { return o.f.WriteAt(p, off) }
func (o *osFile) Truncate(size int64) error                { return o.f.Truncate(size) }
func (o *osFile) Close() error                             { return o.f.Close() }
func (o *osFile) Fetch(int64, int) ([]byte, bool)           { return nil, false }
func (o *osFile) Unfetch(int64, []byte)                    {}
