// Copyright (c) 2019 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tunnel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// path of the registry with tunnel metrics
	prometheusTunnelsPath = "/srtunnel"

	operationLabel = "operation"
	resultLabel    = "result"

	createOperation = "create"
	removeOperation = "remove"
)

// MetricsRegistry is the subset of the Prometheus plugin API used to publish
// tunnel metrics.
type MetricsRegistry interface {
	NewRegistry(path string, opts promhttp.HandlerOpts) error
	Register(registryPath string, collector prometheus.Collector) error
}

type metrics struct {
	operations    *prometheus.CounterVec
	tunnels       prometheus.GaugeFunc
	groupsRemoved prometheus.Counter
	groupUnwinds  prometheus.Counter
}

func newMetrics(tunnelCount func() float64) *metrics {
	return &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srtunnel_operations_total",
			Help: "Number of tunnel operations by result",
		}, []string{operationLabel, resultLabel}),
		tunnels: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "srtunnel_tunnels",
			Help: "Number of tunnels in the store",
		}, tunnelCount),
		groupsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srtunnel_groups_removed_total",
			Help: "Number of groups removed together with their last tunnel",
		}),
		groupUnwinds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srtunnel_group_unwinds_total",
			Help: "Number of groups removed after a failed tunnel creation",
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.operations, m.tunnels, m.groupsRemoved, m.groupUnwinds}
}

func (m *metrics) observe(operation string, result Result) {
	m.operations.WithLabelValues(operation, result.String()).Inc()
}
