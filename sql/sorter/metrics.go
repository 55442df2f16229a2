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

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the sorter's operational counters to a Prometheus
// registry. Nil-safe: every method on Metrics no-ops when the sorter
// was constructed without one, so wiring metrics is strictly opt-in.
// The sorter updates PMAsFlushed, BytesSpilled and MergeDepth;
// WorkerUtilization is registered but no sorter code path sets it, so
// it stays at zero.
type Metrics struct {
	PMAsFlushed       prometheus.Counter
	BytesSpilled      prometheus.Counter
	MergeDepth        prometheus.Gauge
	WorkerUtilization prometheus.Gauge
}

// NewMetrics registers and returns a Metrics bound to reg. Pass a
// fresh prometheus.NewRegistry() in tests to avoid collisions with the
// default global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PMAsFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sqlcore_sorter_pmas_flushed_total",
			Help: "Number of packed-memory-array files written by the external sorter.",
		}),
		BytesSpilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sqlcore_sorter_bytes_spilled_total",
			Help: "Total bytes of record data written to temp files.",
		}),
		MergeDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sqlcore_sorter_merge_depth",
			Help: "Depth of the incremental merge-engine tree for the current rewind.",
		}),
		WorkerUtilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sqlcore_sorter_worker_utilization",
			Help: "Fraction of configured worker slots currently busy.",
		}),
	}
	reg.MustRegister(m.PMAsFlushed, m.BytesSpilled, m.MergeDepth, m.WorkerUtilization)
	return m
}

func (m *Metrics) flushed(bytes int64) {
	if m == nil {
		return
	}
	m.PMAsFlushed.Inc()
	m.BytesSpilled.Add(float64(bytes))
}

func (m *Metrics) mergeDepth(d int) {
	if m == nil {
		return
	}
	m.MergeDepth.Set(float64(d))
}

func (m *Metrics) workerUtilization(busy, total int) {
	if m == nil || total == 0 {
		return
	}
	m.WorkerUtilization.Set(float64(busy) / float64(total))
}
