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

// Package builder drives a docker-compatible container engine through the
// image build, the optional push, and the optional snapshot extraction.
//
// Steps run strictly in order and the first failure aborts the sequence:
//
//	build             <engine> build -f ./Dockerfile -t <image> .
//	push              <engine> push <image>
//	snapshot-run      <engine> run -d --entrypoint bash <image> -c "/scripts/zipper.sh <dir>"
//	snapshot-wait     <engine> wait <id>
//	snapshot-inspect  <engine> inspect -f {{.State.ExitCode}} <id>
//	snapshot-copy     <engine> cp <id>:/tmp/project.tar.gz <workspace>/project.tar.gz
//	snapshot-remove   <engine> rm <id>
//
// A non-zero container exit code reported by snapshot-inspect fails the
// "snapshot" step. When a snapshot step fails before snapshot-remove, the
// container is left in place for diagnosis and its ID is logged.
package builder
