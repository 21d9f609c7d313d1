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

package defaults

// Base images.
const (
	// PythonBaseImage is the default base image for script projects.
	PythonBaseImage = "arangodb/py13base:latest"

	// NodeBaseImage replaces PythonBaseImage for web projects when the
	// operator did not choose a base image.
	NodeBaseImage = "arangodb/node22base:latest"

	// RuntimeVersionMarker precedes the runtime version digits in a base image name.
	RuntimeVersionMarker = "py"

	// RuntimeVersion is used when the base image does not encode a version.
	RuntimeVersion = "3.13"
)

// Manifest defaults.
const (
	// ManifestVersion is used when a web manifest has no version field.
	ManifestVersion = "1.0.0"
)

// External engines.
const (
	// ContainerEngine is the docker-compatible CLI used to build images.
	ContainerEngine = "docker"

	// ChartEngine is the CLI used to lint and package charts.
	ChartEngine = "helm"
)

// Workspace layout.
const (
	// WorkspacePrefix prefixes every workspace directory name.
	WorkspacePrefix = "servicemaker"

	// BuildFileName is the rendered container build file.
	BuildFileName = "Dockerfile"

	// ScriptsDirName holds the helper scripts inside the workspace and the image.
	ScriptsDirName = "scripts"

	// WrapperDirName is the staged project directory for single-service projects.
	WrapperDirName = "wrapper"

	// SnapshotArchiveName is the snapshot archive copied out of the container.
	SnapshotArchiveName = "project.tar.gz"

	// SnapshotContainerPath is where the snapshot helper writes its archive.
	SnapshotContainerPath = "/tmp/project.tar.gz"

	// SnapshotScript is the in-image path of the snapshot helper.
	SnapshotScript = "/scripts/zipper.sh"

	// ChartArchiveExt is the extension of packaged charts.
	ChartArchiveExt = ".tgz"

	// ReportFileName is the run report written to the workspace.
	ReportFileName = "servicemaker-report.yaml"

	// MetricsFileName is the Prometheus textfile written to the workspace.
	MetricsFileName = "metrics.prom"
)

// ExcludedDirs lists directory names never copied into the workspace.
var ExcludedDirs = []string{
	".venv",
	"node_modules",
}
