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

// Package chart renders the embedded Helm chart for a service and drives the
// chart engine through lint and package.
//
// The chart is rendered into <workspace>/<service> with the tokens
// {SERVICE_NAME}, {VERSION}, {PORT} and {IMAGE_NAME}. Packaging runs in the
// workspace and must produce <workspace>/<service>-<version>.tgz; a zero exit
// status without that archive is reported as ErrCodeArtifactMissing.
package chart
