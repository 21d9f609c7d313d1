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

package chart

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/project"
	"github.com/NVIDIA/servicemaker/pkg/render"
	"github.com/NVIDIA/servicemaker/pkg/runner"
)

func testInput(dir string) Input {
	return Input{
		Dir:     dir,
		Service: project.Metadata{Name: "svc", Version: "2.0.0"},
		Port:    8080,
		Image:   "registry.example.com/svc:2.0.0",
	}
}

// packageEffect simulates the chart engine writing the archive into its working directory.
func packageEffect(name string) func(runner.Invocation) error {
	return func(inv runner.Invocation) error {
		return os.WriteFile(filepath.Join(inv.Dir, name), []byte("chart"), 0o644)
	}
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "svc-2.0.0.tgz", ArchiveName("svc", "2.0.0"))
}

func TestValuesMatchVocabulary(t *testing.T) {
	values := Values(testInput(t.TempDir()))
	assert.Equal(t, values, values.Restrict(render.ChartVocabulary))
	assert.Len(t, values, len(render.ChartVocabulary))
}

func TestTemplateFiles(t *testing.T) {
	files, err := TemplateFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Chart.yaml",
		"values.yaml",
		"templates/_helpers.tpl",
		"templates/deployment.yaml",
		"templates/route.yaml",
		"templates/service.yaml",
	}, files)
}

func TestRender(t *testing.T) {
	ws := t.TempDir()
	p := New(runner.NewFake(), "helm")

	chartDir, files, err := p.Render(testInput(ws))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "svc"), chartDir)
	assert.Len(t, files, 6)
	assert.FileExists(t, filepath.Join(chartDir, "templates", "_helpers.tpl"))

	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.Empty(t, render.Unresolved(string(data), render.ChartVocabulary), f)
	}

	var meta Metadata
	data, err := os.ReadFile(filepath.Join(chartDir, "Chart.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, Metadata{APIVersion: "v2", Name: "svc", Version: "2.0.0", AppVersion: "2.0.0"}, meta)

	var values map[string]any
	data, err = os.ReadFile(filepath.Join(chartDir, "values.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &values))
	assert.Equal(t, "registry.example.com/svc:2.0.0", values["image"].(map[string]any)["name"])
	assert.Equal(t, 8080, values["service"].(map[string]any)["port"])
}

func TestRenderRejectsBrokenMetadata(t *testing.T) {
	in := testInput(t.TempDir())
	in.Service.Name = "svc: broken"

	_, _, err := New(runner.NewFake(), "helm").Render(in)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestRenderRejectsExistingDir(t *testing.T) {
	ws := t.TempDir()
	project := filepath.Join(ws, "svc", "templates", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(project), 0o755))
	require.NoError(t, os.WriteFile(project, []byte("<html></html>"), 0o644))

	_, _, err := New(runner.NewFake(), "helm").Render(testInput(ws))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWorkspace))
	assert.NoFileExists(t, filepath.Join(ws, "svc", "Chart.yaml"))
}

func TestRenderRejectsNestedName(t *testing.T) {
	in := testInput(t.TempDir())
	in.Service.Name = "@scope/pkg"

	_, _, err := New(runner.NewFake(), "helm").Render(in)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWorkspace))
}

func TestRenderRequiresMetadata(t *testing.T) {
	in := testInput(t.TempDir())
	in.Service.Version = ""

	_, _, err := New(runner.NewFake(), "helm").Render(in)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestPackage(t *testing.T) {
	ws := t.TempDir()
	f := runner.NewFake().On(StepPackage, runner.Result{Effect: packageEffect("svc-2.0.0.tgz")})

	out, err := New(f, "helm").Package(context.Background(), testInput(ws))
	require.NoError(t, err)

	assert.Equal(t, []string{StepLint, StepPackage}, f.Steps())

	lint, _ := f.Call(StepLint)
	assert.Equal(t, []string{"lint", filepath.Join(ws, "svc")}, lint.Args)

	pkg, _ := f.Call(StepPackage)
	assert.Equal(t, []string{"package", filepath.Join(ws, "svc")}, pkg.Args)
	assert.Equal(t, ws, pkg.Dir)

	assert.Equal(t, filepath.Join(ws, "svc-2.0.0.tgz"), out.Archive)
	assert.Equal(t, filepath.Join(ws, "svc"), out.Dir)
}

func TestPackageFailures(t *testing.T) {
	tests := []struct {
		name     string
		fake     *runner.Fake
		wantCode errors.ErrorCode
		wantStep string
		steps    []string
	}{
		{
			name:     "lint fails",
			fake:     runner.NewFake().On(StepLint, runner.Result{ExitCode: 1}),
			wantCode: errors.ErrCodeExternalStep,
			wantStep: StepLint,
			steps:    []string{StepLint},
		},
		{
			name:     "package fails",
			fake:     runner.NewFake().On(StepPackage, runner.Result{ExitCode: 1}),
			wantCode: errors.ErrCodeExternalStep,
			wantStep: StepPackage,
			steps:    []string{StepLint, StepPackage},
		},
		{
			name:     "archive missing",
			fake:     runner.NewFake(),
			wantCode: errors.ErrCodeArtifactMissing,
			steps:    []string{StepLint, StepPackage},
		},
		{
			name:     "archive with unexpected name",
			fake:     runner.NewFake().On(StepPackage, runner.Result{Effect: packageEffect("svc-2.0.1.tgz")}),
			wantCode: errors.ErrCodeArtifactMissing,
			steps:    []string{StepLint, StepPackage},
		},
		{
			name:     "engine missing",
			fake:     runner.NewFake().Missing("helm"),
			wantCode: errors.ErrCodeExternalStep,
			wantStep: "preflight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fake, "helm").Package(context.Background(), testInput(t.TempDir()))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))

			if tt.wantStep != "" {
				var stepErr *errors.StepError
				require.True(t, stderrors.As(err, &stepErr))
				assert.Equal(t, tt.wantStep, stepErr.Step)
			}
			if tt.steps == nil {
				assert.Empty(t, tt.fake.Steps())
			} else {
				assert.Equal(t, tt.steps, tt.fake.Steps())
			}
		})
	}
}
