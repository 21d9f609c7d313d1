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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/oci"
)

// Request is the resolved configuration for one packaging run.
// All fields are read-only after creation.
type Request struct {
	// name is the project name, used for the workspace directory.
	name string

	// projectHome is the source directory to package.
	projectHome string

	// baseImage is the container base image reference.
	baseImage string

	// port is the exposed service port.
	port int

	// imageName is the target image reference.
	imageName string

	// push pushes the built image.
	push bool

	// entrypoint is the script run by script projects.
	entrypoint string

	// snapshot extracts a filesystem archive from the built image.
	snapshot bool

	// mountPath is the service mount for single-service projects.
	mountPath string

	// projectType forces a project kind instead of detecting one.
	projectType string

	// workspaceRoot is the parent directory of the workspace.
	workspaceRoot string

	containerEngine string
	chartEngine     string

	// chartRegistry is an optional oci:// destination for the packaged chart.
	chartRegistry string
	plainHTTP     bool
	insecureTLS   bool
}

// Name returns the project name.
func (r *Request) Name() string {
	return r.name
}

// ProjectHome returns the project source directory.
func (r *Request) ProjectHome() string {
	return r.projectHome
}

// BaseImage returns the container base image reference.
func (r *Request) BaseImage() string {
	return r.baseImage
}

// Port returns the exposed port.
func (r *Request) Port() int {
	return r.port
}

// ImageName returns the target image reference.
func (r *Request) ImageName() string {
	return r.imageName
}

// Push reports whether the built image is pushed.
func (r *Request) Push() bool {
	return r.push
}

// Entrypoint returns the script entrypoint.
func (r *Request) Entrypoint() string {
	return r.entrypoint
}

// Snapshot reports whether a filesystem snapshot is extracted after the build.
func (r *Request) Snapshot() bool {
	return r.snapshot
}

// MountPath returns the single-service mount path.
func (r *Request) MountPath() string {
	return r.mountPath
}

// ProjectType returns the forced project type, or "" to detect.
func (r *Request) ProjectType() string {
	return r.projectType
}

// WorkspaceRoot returns the directory the workspace is created in.
func (r *Request) WorkspaceRoot() string {
	return r.workspaceRoot
}

// ContainerEngine returns the container CLI binary.
func (r *Request) ContainerEngine() string {
	return r.containerEngine
}

// ChartEngine returns the chart CLI binary.
func (r *Request) ChartEngine() string {
	return r.chartEngine
}

// ChartRegistry returns the chart push destination, or "" when disabled.
func (r *Request) ChartRegistry() string {
	return r.chartRegistry
}

// PlainHTTP reports whether the chart registry is reached over HTTP.
func (r *Request) PlainHTTP() bool {
	return r.plainHTTP
}

// InsecureTLS reports whether registry certificate checks are skipped.
func (r *Request) InsecureTLS() bool {
	return r.insecureTLS
}

// Validate checks the request for values the pipeline cannot work with.
// Kind-specific requirements (entrypoint, mount path) are checked by the pipeline
// once the project kind is known.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.name) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "project name is required")
	}
	if r.name == "." || r.name == ".." || filepath.Base(r.name) != r.name ||
		strings.ContainsAny(r.name, `/\`) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"project name must not contain path separators", map[string]any{"name": r.name})
	}

	if r.projectHome == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "project home is required")
	}
	info, err := os.Stat(r.projectHome)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "project home is not accessible", err,
			map[string]any{"path": r.projectHome})
	}
	if !info.IsDir() {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "project home is not a directory",
			map[string]any{"path": r.projectHome})
	}

	if msgs := validation.IsValidPortNum(r.port); len(msgs) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid port %d: %s", r.port, strings.Join(msgs, "; ")),
			map[string]any{"port": r.port})
	}

	if err := validateImageRef("image name", r.imageName); err != nil {
		return err
	}
	if err := validateImageRef("base image", r.baseImage); err != nil {
		return err
	}

	if r.containerEngine == "" || r.chartEngine == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "container and chart engines must be set")
	}

	if r.chartRegistry != "" {
		if _, err := oci.ParseReference(r.chartRegistry); err != nil {
			return err
		}
	}

	return nil
}

func validateImageRef(field, ref string) error {
	if ref == "" {
		return errors.New(errors.ErrCodeInvalidRequest, field+" is required")
	}
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"invalid "+field, err, map[string]any{"reference": ref})
	}
	return nil
}

// With returns a copy of r with options applied.
func (r *Request) With(options ...Option) *Request {
	c := *r
	for _, opt := range options {
		opt(&c)
	}
	return &c
}

type Option func(*Request)

// WithName sets the project name.
func WithName(name string) Option {
	return func(r *Request) {
		r.name = name
	}
}

// WithProjectHome sets the project source directory.
func WithProjectHome(path string) Option {
	return func(r *Request) {
		r.projectHome = path
	}
}

// WithBaseImage sets the container base image.
func WithBaseImage(image string) Option {
	return func(r *Request) {
		r.baseImage = image
	}
}

// WithPort sets the exposed port.
func WithPort(port int) Option {
	return func(r *Request) {
		r.port = port
	}
}

// WithImageName sets the target image reference.
func WithImageName(name string) Option {
	return func(r *Request) {
		r.imageName = name
	}
}

// WithPush sets whether the image is pushed after the build.
func WithPush(enabled bool) Option {
	return func(r *Request) {
		r.push = enabled
	}
}

// WithEntrypoint sets the script entrypoint.
func WithEntrypoint(entrypoint string) Option {
	return func(r *Request) {
		r.entrypoint = entrypoint
	}
}

// WithSnapshot sets whether a filesystem snapshot is extracted.
func WithSnapshot(enabled bool) Option {
	return func(r *Request) {
		r.snapshot = enabled
	}
}

// WithMountPath sets the single-service mount path.
func WithMountPath(path string) Option {
	return func(r *Request) {
		r.mountPath = path
	}
}

// WithProjectType forces the project type.
func WithProjectType(t string) Option {
	return func(r *Request) {
		r.projectType = t
	}
}

// WithWorkspaceRoot sets the parent directory of the workspace.
func WithWorkspaceRoot(path string) Option {
	return func(r *Request) {
		r.workspaceRoot = path
	}
}

// WithContainerEngine sets the container CLI binary.
func WithContainerEngine(bin string) Option {
	return func(r *Request) {
		r.containerEngine = bin
	}
}

// WithChartEngine sets the chart CLI binary.
func WithChartEngine(bin string) Option {
	return func(r *Request) {
		r.chartEngine = bin
	}
}

// WithChartRegistry sets the oci:// destination for the packaged chart.
func WithChartRegistry(registry string) Option {
	return func(r *Request) {
		r.chartRegistry = registry
	}
}

// WithPlainHTTP sets whether the chart registry is reached over HTTP.
func WithPlainHTTP(enabled bool) Option {
	return func(r *Request) {
		r.plainHTTP = enabled
	}
}

// WithInsecureTLS sets whether registry certificate checks are skipped.
func WithInsecureTLS(enabled bool) Option {
	return func(r *Request) {
		r.insecureTLS = enabled
	}
}

// NewRequest returns a Request with defaults applied before options.
func NewRequest(options ...Option) *Request {
	r := &Request{
		baseImage:       defaults.PythonBaseImage,
		workspaceRoot:   ".",
		containerEngine: defaults.ContainerEngine,
		chartEngine:     defaults.ChartEngine,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}
