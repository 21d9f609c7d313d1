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

// Package runner invokes external engines (container CLI, chart CLI) as
// opaque commands.
//
// Every invocation is named by the pipeline step it belongs to. A non-zero
// exit status is returned as *errors.StepError carrying that step name and
// the exit code. Commands run to completion: the context is consulted before
// a command starts and never used to kill a running one.
//
// Exec is the production implementation backed by k8s.io/utils/exec. Fake
// records invocations and replays scripted results for tests.
package runner
