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

// GoSpawner is the default Spawner: one goroutine per Spawn call. This
// is the natural Go realization of spec.md §5's "up to N-1 worker
// threads, each pinned to one subtask" model — a goroutine plays the
// role of the OS thread the source spawns directly, and Join plays the
// role of pthread_join.
type GoSpawner struct{}

type goHandle struct {
	done chan struct{}
	err  error
}

func (h *goHandle) Join() error {
	<-h.done
	return h.err
}

// Spawn runs fn on a new goroutine and returns a Handle that blocks
// until it returns.
func (GoSpawner) Spawn(fn func() error) Handle {
	h := &goHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = fn()
	}()
	return h
}
