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

// Package metrics collects per-run step metrics in a private Prometheus
// registry and writes them as a node_exporter textfile (metrics.prom) into
// the workspace.
//
// Metrics:
//
//	servicemaker_step_duration_seconds{step}        histogram
//	servicemaker_step_failures_total{step}          counter
//	servicemaker_run_duration_seconds               gauge
//	servicemaker_run_info{run_id,project_type,status} gauge, always 1
package metrics
