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
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/project"
	"github.com/NVIDIA/servicemaker/pkg/render"
	"github.com/NVIDIA/servicemaker/pkg/runner"
)

// all: keeps templates/_helpers.tpl, which a plain directory embed would drop.
//
//go:embed all:files
var chartFS embed.FS

const filesRoot = "files"

// Step names.
const (
	StepLint    = "lint"
	StepPackage = "package"
)

// Metadata is the subset of Chart.yaml checked after rendering.
type Metadata struct {
	APIVersion string `yaml:"apiVersion"`
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	AppVersion string `yaml:"appVersion"`
}

// Input describes one chart.
type Input struct {
	// Dir is the workspace the chart is rendered into and packaged in.
	Dir string

	Service project.Metadata
	Port    int
	Image   string
}

// Output describes the packaged chart.
type Output struct {
	Dir     string   `json:"dir" yaml:"dir"`
	Archive string   `json:"archive" yaml:"archive"`
	Files   []string `json:"files" yaml:"files"`
}

// Packager renders, lints, and packages charts.
type Packager struct {
	runner runner.Runner
	engine string
}

// New returns a Packager invoking engine through r.
func New(r runner.Runner, engine string) *Packager {
	if engine == "" {
		engine = defaults.ChartEngine
	}
	return &Packager{runner: r, engine: engine}
}

// ArchiveName returns the packaged chart file name for a service.
func ArchiveName(service, version string) string {
	return fmt.Sprintf("%s-%s%s", service, version, defaults.ChartArchiveExt)
}

// Values returns the chart placeholder values.
func Values(in Input) render.Values {
	return render.Values{
		render.TokenServiceName: in.Service.Name,
		render.TokenVersion:     in.Service.Version,
		render.TokenPort:        strconv.Itoa(in.Port),
		render.TokenImageName:   in.Image,
	}
}

// TemplateFiles returns the embedded chart file paths relative to the chart root.
func TemplateFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(chartFS, filesRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, strings.TrimPrefix(p, filesRoot+"/"))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list chart templates", err)
	}
	return files, nil
}

// Render writes every chart template into <in.Dir>/<service> and returns the chart
// directory and the written files.
func (p *Packager) Render(in Input) (string, []string, error) {
	if in.Service.Name == "" || in.Service.Version == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidRequest, "chart requires a service name and version")
	}
	if msgs := validation.IsDNS1123Subdomain(in.Service.Name); len(msgs) > 0 {
		slog.Warn("service name is not a valid Kubernetes resource name",
			"name", in.Service.Name, "reasons", strings.Join(msgs, "; "))
	}

	chartDir := filepath.Join(in.Dir, in.Service.Name)
	if filepath.Dir(chartDir) != filepath.Clean(in.Dir) {
		return "", nil, errors.NewWithContext(errors.ErrCodeWorkspace,
			"chart directory must be a direct child of the workspace",
			map[string]any{"workspace": in.Dir, "name": in.Service.Name})
	}
	// the staged project and helper scripts live next to the chart
	if _, err := os.Stat(chartDir); err == nil {
		return "", nil, errors.NewWithContext(errors.ErrCodeWorkspace,
			"chart directory collides with an existing workspace entry",
			map[string]any{"path": chartDir})
	}
	values := Values(in).Restrict(render.ChartVocabulary)

	rels, err := TemplateFiles()
	if err != nil {
		return "", nil, err
	}

	written := make([]string, 0, len(rels))
	for _, rel := range rels {
		raw, err := chartFS.ReadFile(filesRoot + "/" + rel)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeInternal, "failed to read chart template "+rel, err)
		}

		target := filepath.Join(chartDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", nil, errors.WrapWithContext(errors.ErrCodeWorkspace,
				"failed to create chart directory", err, map[string]any{"path": filepath.Dir(target)})
		}
		content := render.Render(string(raw), values)
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return "", nil, errors.WrapWithContext(errors.ErrCodeWorkspace,
				"failed to write chart file", err, map[string]any{"path": target})
		}
		written = append(written, target)
	}

	if err := verifyChartMetadata(chartDir, in.Service); err != nil {
		return "", nil, err
	}

	slog.Debug("chart rendered", "dir", chartDir, "files", len(written))
	return chartDir, written, nil
}

// verifyChartMetadata checks that the rendered Chart.yaml names the service.
func verifyChartMetadata(chartDir string, svc project.Metadata) error {
	path := filepath.Join(chartDir, "Chart.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to read rendered Chart.yaml", err,
			map[string]any{"path": path})
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "rendered Chart.yaml is not valid YAML", err,
			map[string]any{"path": path})
	}
	if meta.Name != svc.Name || meta.Version != svc.Version {
		return errors.NewWithContext(errors.ErrCodeInternal, "rendered Chart.yaml does not match service metadata",
			map[string]any{
				"path":          path,
				"chart_name":    meta.Name,
				"chart_version": meta.Version,
				"name":          svc.Name,
				"version":       svc.Version,
			})
	}
	return nil
}

// Package renders the chart, lints it, packages it, and checks the archive exists.
func (p *Packager) Package(ctx context.Context, in Input) (*Output, error) {
	if err := runner.Preflight(p.runner, p.engine); err != nil {
		return nil, err
	}

	chartDir, files, err := p.Render(in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slog.Info("linting chart", "dir", chartDir)
	if err := p.runner.Run(ctx, runner.Invocation{
		Step: StepLint,
		Name: p.engine,
		Args: []string{"lint", chartDir},
	}); err != nil {
		return nil, err
	}
	slog.Info("chart lint passed", "duration", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	slog.Info("packaging chart", "dir", chartDir)
	if err := p.runner.Run(ctx, runner.Invocation{
		Step: StepPackage,
		Name: p.engine,
		Args: []string{"package", chartDir},
		Dir:  in.Dir,
	}); err != nil {
		return nil, err
	}

	archive := filepath.Join(in.Dir, ArchiveName(in.Service.Name, in.Service.Version))
	if _, err := os.Stat(archive); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeArtifactMissing,
			"chart engine reported success but the archive is missing", err,
			map[string]any{"path": archive})
	}
	slog.Info("chart packaged", "archive", archive, "duration", time.Since(start).Round(time.Millisecond))

	return &Output{Dir: chartDir, Archive: archive, Files: files}, nil
}
