// Copyright 2020-2022 Dolthub, Inc.
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

// This is a throughput-testing harness for the bytecode emitter and
// the external sorter (spec.md §1 names both as consumed by external
// tooling; mirrors the teacher's benchmark/+_example/ combination of
// a fixed dataset shape plus a runnable driver).
//
// > sqlcorebench -records 200000 -max-pma-size 65536
// > sqlcorebench -list-errors
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"time"

	sqle "github.com/dolthub/sqlcore"
	"github.com/dolthub/sqlcore/sql/ast"
	"github.com/dolthub/sqlcore/sql/resolve"
	"github.com/dolthub/sqlcore/sql/sorter"
)

type byteComparer struct{}

func (byteComparer) NewScratch(int) (interface{}, error) { return nil, nil }

func (byteComparer) Compare(_ interface{}, left, right []byte) (int, error) {
	return bytes.Compare(left, right), nil
}

func main() {
	records := flag.Int("records", 100000, "number of records to feed the sorter")
	maxPMASize := flag.Int64("max-pma-size", sorter.MaxPMASizeUnbounded, "max in-memory PMA size in bytes before a forced flush")
	workers := flag.Int("workers", 0, "number of background flush workers (0 = single-threaded)")
	listErrors := flag.Bool("list-errors", false, "print the registered error taxonomy and exit")
	flag.Parse()

	if *listErrors {
		for _, line := range sqle.Describe() {
			fmt.Println(line)
		}
		return
	}

	runSorterBench(*records, *maxPMASize, *workers)
	runEmitBench()
}

func runSorterBench(records int, maxPMASize int64, workers int) {
	dir, err := ioutil.TempDir("", "sqlcorebench-sort")
	if err != nil {
		fmt.Fprintln(os.Stderr, "tempdir:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	engine := sqle.NewEngine()
	cfg := sorter.DefaultConfig()
	cfg.MaxPMASize = maxPMASize
	cfg.Workers = workers

	s, err := engine.NewSorter(cfg, byteComparer{}, dir, 1)
	if err != nil {
		fmt.Fprintln(os.Stderr, "new sorter:", err)
		os.Exit(1)
	}
	defer s.Close()

	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	for i := 0; i < records; i++ {
		key := make([]byte, 8)
		rng.Read(key)
		if err := s.Write(key); err != nil {
			fmt.Fprintln(os.Stderr, "write:", err)
			os.Exit(1)
		}
	}
	writeElapsed := time.Since(start)

	start = time.Now()
	eof, err := s.Rewind()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rewind:", err)
		os.Exit(1)
	}
	n := 0
	for !eof {
		n++
		eof, err = s.Advance()
		if err != nil {
			fmt.Fprintln(os.Stderr, "advance:", err)
			os.Exit(1)
		}
	}
	readElapsed := time.Since(start)

	fmt.Printf("sorter: %d records, write %s (%.0f rec/s), read %d records %s (%.0f rec/s)\n",
		records, writeElapsed, float64(records)/writeElapsed.Seconds(),
		n, readElapsed, float64(n)/readElapsed.Seconds())
}

func runEmitBench() {
	engine := sqle.NewEngine()
	sources := []resolve.TableSource{{
		Cursor: 0,
		Name:   "t",
		Columns: []resolve.ColumnDef{
			{Name: "x"},
			{Name: "y"},
		},
	}}

	expr := &ast.BinaryOp{
		Op:    ast.OpAdd,
		Left:  &ast.UnresolvedColumn{Table: "", Column: "x"},
		Right: &ast.Literal{Kind: ast.LitInteger, Tok: ast.Token{Text: "1"}},
	}

	const iterations = 100000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := engine.CompileValue(sources, nil, expr, false); err != nil {
			fmt.Fprintln(os.Stderr, "compile:", err)
			os.Exit(1)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("emit: %d compiles in %s (%.0f compiles/s)\n", iterations, elapsed, float64(iterations)/elapsed.Seconds())
}
