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

// Package header provides the common document header of servicemaker outputs.
//
// Every document written by servicemaker, such as the packaging report,
// starts with the same three fields:
//
//	kind: PackagingReport
//	apiVersion: servicemaker.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2025-01-02T15:04:05Z"
//	  version: v0.3.0
//
// Embed Header inline in a document type and call Init before writing it:
//
//	type Report struct {
//	    header.Header `json:",inline" yaml:",inline"`
//	    ...
//	}
//
//	r.Init(header.KindPackagingReport, header.APIVersion, version)
package header
