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

package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/runner"
)

// Step names.
const (
	StepBuild           = "build"
	StepPush            = "push"
	StepSnapshot        = "snapshot"
	StepSnapshotRun     = "snapshot-run"
	StepSnapshotWait    = "snapshot-wait"
	StepSnapshotInspect = "snapshot-inspect"
	StepSnapshotCopy    = "snapshot-copy"
	StepSnapshotRemove  = "snapshot-remove"
)

// Input describes one image build.
type Input struct {
	// Dir is the workspace used as build context.
	Dir string

	// ProjectDir is the staged project directory name passed to the snapshot helper.
	ProjectDir string

	// Image is the target image reference.
	Image string

	Push     bool
	Snapshot bool
}

// Output describes what the build produced.
type Output struct {
	Image  string `json:"image" yaml:"image"`
	Pushed bool   `json:"pushed" yaml:"pushed"`

	// SnapshotPath is the extracted archive, empty when no snapshot was requested.
	SnapshotPath string `json:"snapshotPath,omitempty" yaml:"snapshotPath,omitempty"`
}

// Builder runs container engine steps through a runner.
type Builder struct {
	runner runner.Runner
	engine string
}

// New returns a Builder invoking engine through r.
func New(r runner.Runner, engine string) *Builder {
	if engine == "" {
		engine = defaults.ContainerEngine
	}
	return &Builder{runner: r, engine: engine}
}

// Build runs build, then push and snapshot when requested.
func (b *Builder) Build(ctx context.Context, in Input) (*Output, error) {
	if in.Dir == "" || in.Image == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "build requires a workspace and an image name")
	}

	if err := runner.Preflight(b.runner, b.engine); err != nil {
		return nil, err
	}

	out := &Output{Image: in.Image}

	start := time.Now()
	slog.Info("building image", "image", in.Image, "context", in.Dir)
	if err := b.step(ctx, StepBuild, in.Dir,
		"build", "-f", "./"+defaults.BuildFileName, "-t", in.Image, "."); err != nil {
		return nil, err
	}
	slog.Info("image built", "image", in.Image, "duration", time.Since(start).Round(time.Millisecond))

	if in.Push {
		start = time.Now()
		slog.Info("pushing image", "image", in.Image)
		if err := b.step(ctx, StepPush, "", "push", in.Image); err != nil {
			return nil, err
		}
		out.Pushed = true
		slog.Info("image pushed", "image", in.Image, "duration", time.Since(start).Round(time.Millisecond))
	}

	if in.Snapshot {
		path, err := b.snapshot(ctx, in)
		if err != nil {
			return nil, err
		}
		out.SnapshotPath = path
	}

	return out, nil
}

// snapshot runs the snapshot helper in a detached container and copies its archive out.
func (b *Builder) snapshot(ctx context.Context, in Input) (string, error) {
	start := time.Now()
	slog.Info("extracting snapshot", "image", in.Image, "project_dir", in.ProjectDir)

	id, err := b.runner.Output(ctx, b.invocation(StepSnapshotRun, "",
		"run", "-d", "--entrypoint", "bash", in.Image,
		"-c", fmt.Sprintf("%s %s", defaults.SnapshotScript, in.ProjectDir)))
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.NewStepError(StepSnapshotRun, runner.ExitCodeUnknown,
			fmt.Errorf("engine returned no container id"))
	}
	slog.Debug("snapshot container started", "container", id)

	// failures below leave the container for diagnosis
	leave := func(err error) (string, error) {
		slog.Warn("snapshot container left in place", "container", id, "error", err)
		return "", err
	}

	if err := b.step(ctx, StepSnapshotWait, "", "wait", id); err != nil {
		return leave(err)
	}

	status, err := b.runner.Output(ctx, b.invocation(StepSnapshotInspect, "",
		"inspect", "-f", "{{.State.ExitCode}}", id))
	if err != nil {
		return leave(err)
	}
	code, err := strconv.Atoi(strings.TrimSpace(status))
	if err != nil {
		return leave(errors.NewStepError(StepSnapshotInspect, runner.ExitCodeUnknown,
			fmt.Errorf("unexpected exit code output %q: %w", status, err)))
	}
	if code != 0 {
		return leave(errors.NewStepError(StepSnapshot, code, nil))
	}

	archive := filepath.Join(in.Dir, defaults.SnapshotArchiveName)
	if err := b.step(ctx, StepSnapshotCopy, "",
		"cp", id+":"+defaults.SnapshotContainerPath, archive); err != nil {
		return leave(err)
	}

	if err := b.step(ctx, StepSnapshotRemove, "", "rm", id); err != nil {
		return leave(err)
	}

	if _, err := os.Stat(archive); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeArtifactMissing,
			"snapshot archive not found after copy", err, map[string]any{"path": archive})
	}

	slog.Info("snapshot extracted", "path", archive, "duration", time.Since(start).Round(time.Millisecond))
	return archive, nil
}

func (b *Builder) step(ctx context.Context, step, dir string, args ...string) error {
	return b.runner.Run(ctx, b.invocation(step, dir, args...))
}

func (b *Builder) invocation(step, dir string, args ...string) runner.Invocation {
	return runner.Invocation{Step: step, Name: b.engine, Args: args, Dir: dir}
}
