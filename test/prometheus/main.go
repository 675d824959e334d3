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

// Command prometheus scrapes a stub server's metrics endpoint after a suite
// run and checks that registrations, rejections and latency were recorded.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	latencyMetric      = "candlepin_bdd_api_latency"
	registrationMetric = "candlepin_bdd_consumers_registered"
	rejectionMetric    = "candlepin_bdd_registrations_rejected"
)

func fetchMF(url string) (map[string]*dto.MetricFamily, error) {
	resp, err := http.Get(url) // nolint
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return parseMF(resp.Body)
}

func parseMF(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	return parser.TextToMetricFamilies(r)
}

func main() {
	f := flag.String("url", "http://localhost:2112/metrics", "set url to fetch metrics from")
	minRegistrations := flag.Float64("min-registrations", 1, "consumers the suite is expected to have registered")
	flag.Parse()

	mf, err := fetchMF(*f)
	if err != nil {
		log.Fatalf("Failed to fetch/parse metrics: %v", err)
	}
	if err := check(mf, *minRegistrations); err != nil {
		log.Fatal(err)
	}
	log.Print("metrics look good")
}

func check(mf map[string]*dto.MetricFamily, minRegistrations float64) error {
	latency, ok := mf[latencyMetric]
	if !ok || latency == nil {
		return fmt.Errorf("did not get %s metric", latencyMetric)
	}
	if err := checkLatency(latency); err != nil {
		return fmt.Errorf("%s metric failed: %w", latencyMetric, err)
	}

	registrations, ok := mf[registrationMetric]
	if !ok || registrations == nil {
		return fmt.Errorf("did not get %s metric", registrationMetric)
	}
	if err := checkRegistrations(registrations, minRegistrations); err != nil {
		return fmt.Errorf("%s metric failed: %w", registrationMetric, err)
	}

	// The negative scenarios must have been answered with 400 and 404.
	rejections, ok := mf[rejectionMetric]
	if !ok || rejections == nil {
		return fmt.Errorf("did not get %s metric", rejectionMetric)
	}
	if counterValue(rejections, "code", "400") < 1 {
		return fmt.Errorf("%s metric failed: no rejections with code 400", rejectionMetric)
	}
	if !hasSeries(latency, "get", "404") {
		return fmt.Errorf("%s metric failed: no lookups answered with 404", latencyMetric)
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

// Make sure latency is a Histogram with at least one successful POST.
func checkLatency(latency *dto.MetricFamily) error {
	if latency.GetType() != dto.MetricType_HISTOGRAM {
		return fmt.Errorf("wrong type, wanted %v, got: %v", dto.MetricType_HISTOGRAM, latency.GetType())
	}
	if !hasSeries(latency, "post", "200") {
		return fmt.Errorf("no post/200 series in %d entries", len(latency.GetMetric()))
	}
	return nil
}

func hasSeries(latency *dto.MetricFamily, method, code string) bool {
	for _, m := range latency.GetMetric() {
		if labelValue(m, "method") == method && labelValue(m, "code") == code {
			return m.GetHistogram().GetSampleCount() > 0
		}
	}
	return false
}

func checkRegistrations(registrations *dto.MetricFamily, min float64) error {
	if registrations.GetType() != dto.MetricType_COUNTER {
		return fmt.Errorf("wrong type, wanted %v, got: %v", dto.MetricType_COUNTER, registrations.GetType())
	}
	var total float64
	for _, m := range registrations.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	if total < min {
		return fmt.Errorf("got %v registrations, wanted at least %v", total, min)
	}
	return nil
}

func counterValue(mf *dto.MetricFamily, label, value string) float64 {
	for _, m := range mf.GetMetric() {
		if labelValue(m, label) == value {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
