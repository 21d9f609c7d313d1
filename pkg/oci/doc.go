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

// Package oci publishes packaged Helm charts to OCI registries.
//
// A chart registry is given as an oci:// URI naming a registry host and a
// repository prefix:
//
//	oci://ghcr.io/acme/charts
//
// The chart is pushed to <prefix>/<chart name> and tagged with the chart
// version, which mirrors what `helm push` does:
//
//	ghcr.io/acme/charts/svc:2.0.0
//
// # Artifact Layout
//
// The manifest carries two blobs:
//
//   - a config blob of media type "application/vnd.cncf.helm.config.v1+json"
//     holding the chart name, version and API version
//   - a single layer of media type
//     "application/vnd.cncf.helm.chart.content.v1.tar+gzip" holding the
//     packaged chart archive unchanged
//
// # Authentication
//
// Credentials are resolved from the Docker credential store
// (~/.docker/config.json and any configured credential helpers). PlainHTTP
// talks to the registry without TLS, InsecureTLS keeps TLS but skips
// certificate verification.
package oci
