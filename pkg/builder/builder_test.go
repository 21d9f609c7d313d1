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
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/runner"
)

// copyEffect simulates the engine writing the snapshot archive.
func copyEffect(inv runner.Invocation) error {
	dst := inv.Args[len(inv.Args)-1]
	return os.WriteFile(dst, []byte("archive"), 0o644)
}

func snapshotFake() *runner.Fake {
	return runner.NewFake().
		On(StepSnapshotRun, runner.Result{Stdout: "c0ffee"}).
		On(StepSnapshotInspect, runner.Result{Stdout: "0"}).
		On(StepSnapshotCopy, runner.Result{Effect: copyEffect})
}

func TestBuildOnly(t *testing.T) {
	f := runner.NewFake()
	b := New(f, "docker")
	ws := t.TempDir()

	out, err := b.Build(context.Background(), Input{Dir: ws, ProjectDir: "svc", Image: "svc:1"})
	require.NoError(t, err)

	assert.Equal(t, []string{StepBuild}, f.Steps())
	call, _ := f.Call(StepBuild)
	assert.Equal(t, "docker", call.Name)
	assert.Equal(t, []string{"build", "-f", "./Dockerfile", "-t", "svc:1", "."}, call.Args)
	assert.Equal(t, ws, call.Dir)
	assert.False(t, out.Pushed)
	assert.Empty(t, out.SnapshotPath)
}

func TestBuildPushSnapshotSequence(t *testing.T) {
	f := snapshotFake()
	b := New(f, "podman")
	ws := t.TempDir()

	out, err := b.Build(context.Background(), Input{
		Dir:        ws,
		ProjectDir: "wrapper",
		Image:      "registry.example.com/svc:2",
		Push:       true,
		Snapshot:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepBuild,
		StepPush,
		StepSnapshotRun,
		StepSnapshotWait,
		StepSnapshotInspect,
		StepSnapshotCopy,
		StepSnapshotRemove,
	}, f.Steps())

	run, _ := f.Call(StepSnapshotRun)
	assert.Equal(t, []string{
		"run", "-d", "--entrypoint", "bash", "registry.example.com/svc:2",
		"-c", "/scripts/zipper.sh wrapper",
	}, run.Args)

	inspect, _ := f.Call(StepSnapshotInspect)
	assert.Equal(t, []string{"inspect", "-f", "{{.State.ExitCode}}", "c0ffee"}, inspect.Args)

	cp, _ := f.Call(StepSnapshotCopy)
	assert.Equal(t, "c0ffee:/tmp/project.tar.gz", cp.Args[1])

	rm, _ := f.Call(StepSnapshotRemove)
	assert.Equal(t, []string{"rm", "c0ffee"}, rm.Args)

	for _, c := range f.Calls() {
		assert.Equal(t, "podman", c.Name)
	}

	assert.True(t, out.Pushed)
	assert.Equal(t, filepath.Join(ws, "project.tar.gz"), out.SnapshotPath)
	assert.FileExists(t, out.SnapshotPath)
}

func TestSnapshotRunsWithoutPush(t *testing.T) {
	f := snapshotFake()
	_, err := New(f, "docker").Build(context.Background(), Input{
		Dir: t.TempDir(), ProjectDir: "svc", Image: "svc:1", Snapshot: true,
	})
	require.NoError(t, err)

	steps := f.Steps()
	assert.NotContains(t, steps, StepPush)
	assert.Equal(t, StepSnapshotRemove, steps[len(steps)-1])
}

func TestBuildFailureHaltsBeforePush(t *testing.T) {
	f := runner.NewFake().On(StepBuild, runner.Result{ExitCode: 2})

	_, err := New(f, "docker").Build(context.Background(), Input{
		Dir: t.TempDir(), ProjectDir: "svc", Image: "svc:1", Push: true, Snapshot: true,
	})
	require.Error(t, err)

	var stepErr *errors.StepError
	require.True(t, stderrors.As(err, &stepErr))
	assert.Equal(t, StepBuild, stepErr.Step)
	assert.Equal(t, 2, stepErr.ExitCode)
	assert.Equal(t, []string{StepBuild}, f.Steps())
}

func TestSnapshotFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(f *runner.Fake)
		wantStep  string
		wantCode  int
		lastStep  string
		errCode   errors.ErrorCode
	}{
		{
			name:      "container exited non-zero",
			configure: func(f *runner.Fake) { f.On(StepSnapshotInspect, runner.Result{Stdout: "3"}) },
			wantStep:  StepSnapshot,
			wantCode:  3,
			lastStep:  StepSnapshotInspect,
			errCode:   errors.ErrCodeExternalStep,
		},
		{
			name:      "wait fails",
			configure: func(f *runner.Fake) { f.On(StepSnapshotWait, runner.Result{ExitCode: 1}) },
			wantStep:  StepSnapshotWait,
			wantCode:  1,
			lastStep:  StepSnapshotWait,
			errCode:   errors.ErrCodeExternalStep,
		},
		{
			name:      "inspect output garbage",
			configure: func(f *runner.Fake) { f.On(StepSnapshotInspect, runner.Result{Stdout: "exited"}) },
			wantStep:  StepSnapshotInspect,
			wantCode:  runner.ExitCodeUnknown,
			lastStep:  StepSnapshotInspect,
			errCode:   errors.ErrCodeExternalStep,
		},
		{
			name:      "no container id",
			configure: func(f *runner.Fake) { f.On(StepSnapshotRun, runner.Result{}) },
			wantStep:  StepSnapshotRun,
			wantCode:  runner.ExitCodeUnknown,
			lastStep:  StepSnapshotRun,
			errCode:   errors.ErrCodeExternalStep,
		},
		{
			name:      "archive not produced",
			configure: func(f *runner.Fake) { f.On(StepSnapshotCopy, runner.Result{}) },
			lastStep:  StepSnapshotRemove,
			errCode:   errors.ErrCodeArtifactMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := snapshotFake()
			tt.configure(f)

			_, err := New(f, "docker").Build(context.Background(), Input{
				Dir: t.TempDir(), ProjectDir: "svc", Image: "svc:1", Snapshot: true,
			})
			require.Error(t, err)
			assert.Equal(t, tt.errCode, errors.CodeOf(err))

			if tt.wantStep != "" {
				var stepErr *errors.StepError
				require.True(t, stderrors.As(err, &stepErr))
				assert.Equal(t, tt.wantStep, stepErr.Step)
				assert.Equal(t, tt.wantCode, stepErr.ExitCode)
			}

			steps := f.Steps()
			assert.Equal(t, tt.lastStep, steps[len(steps)-1])
		})
	}
}

func TestPreflightMissingEngine(t *testing.T) {
	f := runner.NewFake().Missing("docker")

	_, err := New(f, "").Build(context.Background(), Input{Dir: t.TempDir(), Image: "svc:1"})
	var stepErr *errors.StepError
	require.True(t, stderrors.As(err, &stepErr))
	assert.Equal(t, "preflight", stepErr.Step)
	assert.Equal(t, runner.ExitCodeNotFound, stepErr.ExitCode)
	assert.Empty(t, f.Steps())
}

func TestCancelledContextStopsBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := runner.NewFake().On(StepBuild, runner.Result{Effect: func(runner.Invocation) error {
		cancel()
		return nil
	}})

	_, err := New(f, "docker").Build(ctx, Input{Dir: t.TempDir(), Image: "svc:1", Push: true})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, []string{StepBuild}, f.Steps())
}

func TestBuildRequiresInput(t *testing.T) {
	_, err := New(runner.NewFake(), "docker").Build(context.Background(), Input{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "INVALID_REQUEST"))
}
