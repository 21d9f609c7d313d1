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

package project

import (
	"github.com/NVIDIA/servicemaker/pkg/render"
)

// Type is the closed set of project type tags.
type Type string

const (
	TypeScript        Type = "script-project"
	TypeMultiService  Type = "multi-service-project"
	TypeSingleService Type = "single-service-project"
	TypeWeb           Type = "web-project"
)

// String returns the type tag.
func (t Type) String() string {
	return string(t)
}

// Marker and manifest file names.
const (
	ScriptManifestFile    = "pyproject.toml"
	WebManifestFile       = "package.json"
	ServiceDescriptorFile = "services.json"
)

// Layout describes how a project tree is staged in the workspace.
type Layout int

const (
	// LayoutFlat copies the project as <workspace>/<dir>.
	LayoutFlat Layout = iota

	// LayoutWrapper copies the project as <workspace>/wrapper/<dir> next to a
	// generated service descriptor.
	LayoutWrapper
)

// String returns the layout name.
func (l Layout) String() string {
	if l == LayoutWrapper {
		return "wrapper"
	}
	return "flat"
}

// Metadata is the canonical service identity read from a manifest.
type Metadata struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// BuildInput carries the resolved values a build-file template is rendered with.
type BuildInput struct {
	BaseImage  string
	ProjectDir string
	Port       int
	Entrypoint string
}

// Kind is the per-type capability set. The pipeline selects one Kind per run
// and never branches on the raw Type afterwards.
type Kind interface {
	// Type returns the type tag.
	Type() Type

	// Matches reports whether the marker files in home select this kind.
	Matches(home string) bool

	// ReadMetadata parses the manifest in home.
	ReadMetadata(home string) (Metadata, error)

	// InferName returns a project name derived from home, or "" if none.
	InferName(home string) string

	// Layout returns the staging layout.
	Layout() Layout

	// BuildTemplate returns the raw build-file template.
	BuildTemplate() string

	// BuildValues returns the placeholder values for BuildTemplate.
	BuildValues(in BuildInput) render.Values

	// DefaultBaseImage returns the base image used when none was chosen.
	DefaultBaseImage() string

	// NeedsEntrypoint reports whether an entrypoint script is required.
	NeedsEntrypoint() bool

	// NeedsMountPath reports whether a service mount path is required.
	NeedsMountPath() bool
}
