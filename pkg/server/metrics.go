// Copyright 2026 The Candlepin Authors.
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

package server

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Version is reported by /status and the build_info metric.
var Version = "devel"

var (
	metricRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "candlepin_bdd_consumers_registered",
		Help: "The total number of consumers registered, by type",
	}, []string{"type"})

	metricRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "candlepin_bdd_registrations_rejected",
		Help: "The total number of rejected registrations, by status code",
	}, []string{"code"})

	MetricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "candlepin_bdd_api_latency",
		Help: "API Latency on calls",
	}, []string{"code", "method"})

	RequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Count all HTTP requests",
	}, []string{"code", "method"})

	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "candlepin_bdd",
			Name:      "build_info",
			Help:      "A metric with a constant '1' value labeled by version and goversion of the stub server.",
			ConstLabels: prometheus.Labels{
				"version":   Version,
				"goversion": runtime.Version(),
			},
		},
		func() float64 { return 1 },
	)
)
