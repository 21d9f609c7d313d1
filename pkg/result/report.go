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

package result

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/header"
)

// Status is the outcome of a step or run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact kinds.
const (
	ArtifactBuildFile = "build-file"
	ArtifactScript    = "script"
	ArtifactImage     = "image"
	ArtifactSnapshot  = "snapshot"
	ArtifactChartDir  = "chart-source"
	ArtifactChart     = "chart"
	ArtifactChartRef  = "chart-reference"
	ArtifactChecksums = "checksums"
)

// Step is the outcome of one pipeline step.
type Step struct {
	Name     string        `json:"name" yaml:"name"`
	Status   Status        `json:"status" yaml:"status"`
	ExitCode *int          `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Artifact is a file or reference produced by the run.
type Artifact struct {
	Kind   string `json:"kind" yaml:"kind"`
	Path   string `json:"path" yaml:"path"`
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

// Request is the subset of the packaging request recorded in the report.
type Request struct {
	Name        string `json:"name" yaml:"name"`
	ProjectHome string `json:"project_home" yaml:"project_home"`
	BaseImage   string `json:"base_image" yaml:"base_image"`
	Port        int    `json:"port" yaml:"port"`
	ImageName   string `json:"image_name" yaml:"image_name"`
	Push        bool   `json:"push" yaml:"push"`
	Snapshot    bool   `json:"snapshot" yaml:"snapshot"`
	Entrypoint  string `json:"entrypoint,omitempty" yaml:"entrypoint,omitempty"`
	MountPath   string `json:"mount_path,omitempty" yaml:"mount_path,omitempty"`
}

// Service is the manifest identity the chart was named after.
type Service struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Failure is the error that stopped the run.
type Failure struct {
	Code    errors.ErrorCode `json:"code" yaml:"code"`
	Step    string           `json:"step,omitempty" yaml:"step,omitempty"`
	Message string           `json:"message" yaml:"message"`
}

// Report is the record of one packaging run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID       string        `json:"run_id" yaml:"run_id"`
	Status      Status        `json:"status" yaml:"status"`
	ProjectType string        `json:"project_type,omitempty" yaml:"project_type,omitempty"`
	Workspace   string        `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Request     Request       `json:"request" yaml:"request"`
	Service     *Service      `json:"service,omitempty" yaml:"service,omitempty"`
	Steps       []Step        `json:"steps" yaml:"steps"`
	Artifacts   []Artifact    `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Error       *Failure      `json:"error,omitempty" yaml:"error,omitempty"`
}

// New returns an empty report for runID started now.
func New(runID string) *Report {
	r := &Report{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Steps:     []Step{},
	}
	r.Init(header.KindPackagingReport, header.APIVersion, "")
	return r
}

// AddStep records a finished internal step.
func (r *Report) AddStep(name string, d time.Duration, err error) {
	r.Steps = append(r.Steps, newStep(name, d, err))
}

// AddCommand records a finished external command step. Its exit code is 0 on
// success or taken from the *errors.StepError in err.
func (r *Report) AddCommand(name string, d time.Duration, err error) {
	s := newStep(name, d, err)
	code := 0
	var stepErr *errors.StepError
	if stderrors.As(err, &stepErr) {
		code = stepErr.ExitCode
	}
	if err == nil || stepErr != nil {
		s.ExitCode = &code
	}
	r.Steps = append(r.Steps, s)
}

func newStep(name string, d time.Duration, err error) Step {
	s := Step{Name: name, Status: StatusSucceeded, Duration: d}
	if err != nil {
		s.Status = StatusFailed
		s.Error = err.Error()
	}
	return s
}

// AddArtifact records a produced artifact.
func (r *Report) AddArtifact(kind, path string) {
	r.Artifacts = append(r.Artifacts, Artifact{Kind: kind, Path: path})
}

// SetChecksum attaches a digest to every artifact with the given path.
func (r *Report) SetChecksum(path, sum string) {
	for i := range r.Artifacts {
		if r.Artifacts[i].Path == path {
			r.Artifacts[i].SHA256 = sum
		}
	}
}

// Finish stamps the run duration and final status from err.
func (r *Report) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if err == nil {
		r.Status = StatusSucceeded
		r.Error = nil
		return
	}

	r.Status = StatusFailed
	f := &Failure{Code: errors.CodeOf(err), Message: err.Error()}
	var stepErr *errors.StepError
	if stderrors.As(err, &stepErr) {
		f.Step = stepErr.Step
	} else {
		f.Step = r.lastFailed()
	}
	r.Error = f
}

func (r *Report) lastFailed() string {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Status == StatusFailed {
			return r.Steps[i].Name
		}
	}
	return ""
}

// Succeeded reports whether the run finished without error.
func (r *Report) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Artifact returns the path of the first artifact of kind, or "".
func (r *Report) Artifact(kind string) string {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a.Path
		}
	}
	return ""
}

// StepNames returns the recorded step names in order.
func (r *Report) StepNames() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	if r.Succeeded() {
		return fmt.Sprintf("Packaged %s in %v: %d steps, %d artifacts.",
			r.Request.Name, r.Duration.Round(time.Millisecond), len(r.Steps), len(r.Artifacts))
	}
	step := ""
	if r.Error != nil && r.Error.Step != "" {
		step = fmt.Sprintf(" at step %q", r.Error.Step)
	}
	return fmt.Sprintf("Packaging %s failed%s after %v.",
		r.Request.Name, step, r.Duration.Round(time.Millisecond))
}

// Write serializes the report as YAML to path.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to serialize report", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to write report", err,
			map[string]any{"path": path})
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to read report", err,
			map[string]any{"path": path})
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to parse report", err,
			map[string]any{"path": path})
	}
	if !r.Kind.IsValid() {
		return nil, errors.NewWithContext(errors.ErrCodeInternal,
			fmt.Sprintf("unexpected document kind %q", r.Kind), map[string]any{"path": path})
	}
	return &r, nil
}
