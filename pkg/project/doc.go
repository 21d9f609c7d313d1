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

// Package project classifies a project directory and exposes everything that
// differs between project types through a single Kind capability.
//
// # Project Types
//
//   - script-project: pyproject.toml present. Built on a Python base image with
//     an explicit entrypoint script.
//   - multi-service-project: package.json and services.json present. Copied flat
//     and built on a Node base image.
//   - single-service-project: package.json present without services.json. Staged
//     inside a generated wrapper with a synthesized services.json.
//   - web-project: a plain Node project copied flat. Never detected from marker
//     files; selected explicitly by type.
//
// # Classification
//
// Classify checks the kinds in precedence order and returns the first match:
//
//	kind, err := project.Classify("./svc")
//	if err != nil {
//	    // errors.ErrCodeClassification
//	}
//	meta, err := kind.ReadMetadata("./svc")
//
// Detect honors an explicit type before falling back to Classify.
//
// # Metadata
//
// Script projects read project.name and project.version from pyproject.toml;
// both are required. The other kinds read name and version from package.json;
// name is required and version defaults to 1.0.0.
package project
