// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// Recorder holds the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry

	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	runDuration  prometheus.Gauge
	runInfo      *prometheus.GaugeVec
}

// NewRecorder returns a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "servicemaker_step_duration_seconds",
				Help:    "Duration of packaging pipeline steps in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"step"},
		),
		stepFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "servicemaker_step_failures_total",
				Help: "Total number of failed packaging pipeline steps",
			},
			[]string{"step"},
		),
		runDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "servicemaker_run_duration_seconds",
				Help: "Duration of the packaging run in seconds",
			},
		),
		runInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "servicemaker_run_info",
				Help: "Packaging run identity and outcome",
			},
			[]string{"run_id", "project_type", "status"},
		),
	}
}

// ObserveStep records a finished step.
func (r *Recorder) ObserveStep(step string, d time.Duration, err error) {
	r.stepDuration.WithLabelValues(step).Observe(d.Seconds())
	// touch the counter so every step has a failures series
	failures := r.stepFailures.WithLabelValues(step)
	if err != nil {
		failures.Inc()
	}
}

// ObserveRun records the run outcome.
func (r *Recorder) ObserveRun(runID, projectType string, d time.Duration, err error) {
	r.runDuration.Set(d.Seconds())
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	r.runInfo.WithLabelValues(runID, projectType, status).Set(1)
}

// Gatherer exposes the run registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to write metrics", err,
			map[string]any{"path": path})
	}
	return nil
}
