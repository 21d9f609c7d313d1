/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/servicemaker/pkg/builder"
	"github.com/NVIDIA/servicemaker/pkg/chart"
	"github.com/NVIDIA/servicemaker/pkg/checksum"
	"github.com/NVIDIA/servicemaker/pkg/config"
	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/metrics"
	"github.com/NVIDIA/servicemaker/pkg/oci"
	"github.com/NVIDIA/servicemaker/pkg/project"
	"github.com/NVIDIA/servicemaker/pkg/render"
	"github.com/NVIDIA/servicemaker/pkg/result"
	"github.com/NVIDIA/servicemaker/pkg/runner"
	"github.com/NVIDIA/servicemaker/pkg/workspace"
)

// Internal step names.
const (
	StepValidate  = "validate"
	StepDetect    = "detect"
	StepMetadata  = "metadata"
	StepStage     = "stage"
	StepBuildFile = "build-file"
	StepChartPush = "chart-push"
	StepChecksums = "checksums"
)

// Driver runs packaging pipelines.
type Driver struct {
	runner  runner.Runner
	pid     int
	runID   string
	version string
}

// Option defines a functional option for configuring Driver.
type Option func(*Driver)

// WithRunner sets the runner used for external commands.
func WithRunner(r runner.Runner) Option {
	return func(d *Driver) {
		if r != nil {
			d.runner = r
		}
	}
}

// WithPID overrides the process id used in the workspace name.
func WithPID(pid int) Option {
	return func(d *Driver) {
		d.pid = pid
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = id
	}
}

// WithVersion records the tool version in the report metadata.
func WithVersion(v string) Option {
	return func(d *Driver) {
		d.version = v
	}
}

// New creates a Driver. Without WithRunner, commands run on the host with
// their output attached to the current process.
func New(opts ...Option) *Driver {
	d := &Driver{pid: os.Getpid()}
	for _, opt := range opts {
		opt(d)
	}
	if d.runner == nil {
		d.runner = runner.NewExec(os.Stdout, os.Stderr)
	}
	return d
}

// run holds the state of one pipeline execution.
type run struct {
	req     *config.Request
	report  *result.Report
	metrics *metrics.Recorder
	log     *slog.Logger
	runner  runner.Runner
	pid     int

	kind  project.Kind
	meta  project.Metadata
	ws    *workspace.Workspace
	chart *chart.Output
}

// Run packages the project described by req. The report is always returned;
// err is the first failure.
func (d *Driver) Run(ctx context.Context, req *config.Request) (*result.Report, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request is required")
	}

	runID := d.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	r := &run{
		req:     req,
		report:  result.New(runID),
		metrics: metrics.NewRecorder(),
		log:     slog.With("run_id", runID),
		pid:     d.pid,
	}
	r.report.Request = summarize(req)
	if d.version != "" {
		r.report.SetMetadata("version", d.version)
	}
	r.runner = runner.WithObserver(d.runner, r.observe)

	r.log.Info("packaging started", "name", req.Name(), "project_home", req.ProjectHome())

	err := r.execute(ctx)

	r.report.Finish(err)
	r.metrics.ObserveRun(runID, r.report.ProjectType, r.report.Duration, err)
	r.persist()

	if err != nil {
		r.log.Error("packaging failed",
			"error", err,
			"workspace", r.report.Workspace,
			"duration", r.report.Duration.Round(time.Millisecond))
		return r.report, err
	}

	r.log.Info("packaging completed",
		"workspace", r.report.Workspace,
		"chart", r.report.Artifact(result.ArtifactChart),
		"duration", r.report.Duration.Round(time.Millisecond))
	return r.report, nil
}

func (r *run) execute(ctx context.Context) error {
	if err := r.step(ctx, StepValidate, r.req.Validate); err != nil {
		return err
	}
	if err := r.step(ctx, StepDetect, r.detect); err != nil {
		return err
	}
	if err := r.step(ctx, StepMetadata, r.readMetadata); err != nil {
		return err
	}
	if err := r.step(ctx, StepStage, r.stage); err != nil {
		return err
	}
	if err := r.step(ctx, StepBuildFile, r.writeBuildFile); err != nil {
		return err
	}
	if err := r.buildImage(ctx); err != nil {
		return err
	}
	if err := r.packageChart(ctx); err != nil {
		return err
	}
	if r.req.ChartRegistry() != "" {
		if err := r.step(ctx, StepChartPush, func() error { return r.pushChart(ctx) }); err != nil {
			return err
		}
	}
	return r.step(ctx, StepChecksums, func() error { return r.writeChecksums(ctx) })
}

// step runs an internal step, recording its outcome. It does not start once
// ctx is done.
func (r *run) step(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("step %s not started: %w", name, err)
	}

	start := time.Now()
	err := fn()
	d := time.Since(start)

	r.report.AddStep(name, d, err)
	r.metrics.ObserveStep(name, d, err)
	if err != nil {
		r.log.Debug("step failed", "step", name, "duration", d, "error", err)
		return err
	}
	r.log.Debug("step completed", "step", name, "duration", d)
	return nil
}

// observe records every external command.
func (r *run) observe(inv runner.Invocation, d time.Duration, err error) {
	r.report.AddCommand(inv.Step, d, err)
	r.metrics.ObserveStep(inv.Step, d, err)
}

func (r *run) detect() error {
	kind, err := project.Detect(r.req.ProjectHome(), r.req.ProjectType())
	if err != nil {
		return err
	}

	if kind.NeedsEntrypoint() && r.req.Entrypoint() == "" {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"entrypoint is required for "+kind.Type().String(),
			map[string]any{"project_home": r.req.ProjectHome()})
	}
	if kind.NeedsMountPath() && r.req.MountPath() == "" {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"mount path is required for "+kind.Type().String(),
			map[string]any{"project_home": r.req.ProjectHome()})
	}

	r.kind = kind
	r.report.ProjectType = kind.Type().String()
	r.log.Info("project type detected", "type", kind.Type().String(), "layout", kind.Layout().String())
	return nil
}

func (r *run) readMetadata() error {
	meta, err := r.kind.ReadMetadata(r.req.ProjectHome())
	if err != nil {
		return err
	}
	r.meta = meta
	r.report.Service = &result.Service{Name: meta.Name, Version: meta.Version}
	r.log.Info("service metadata read", "service", meta.Name, "version", meta.Version)
	return nil
}

func (r *run) stage() error {
	ws, err := workspace.Create(r.req.WorkspaceRoot(), r.req.Name(), r.pid)
	if err != nil {
		return err
	}
	r.ws = ws
	r.report.Workspace = ws.Dir

	if err := ws.WriteScripts(); err != nil {
		return err
	}
	for _, name := range workspace.ScriptNames() {
		r.report.AddArtifact(result.ArtifactScript, ws.Path(defaults.ScriptsDirName, name))
	}

	if err := ws.Stage(r.req.ProjectHome(), r.kind.Layout(), r.req.MountPath()); err != nil {
		return err
	}
	r.log.Info("project staged", "workspace", ws.Dir, "project_dir", ws.ProjectDir)
	return nil
}

// baseImage switches the script default to the kind's default for web kinds.
func (r *run) baseImage() string {
	if r.req.BaseImage() == defaults.PythonBaseImage {
		return r.kind.DefaultBaseImage()
	}
	return r.req.BaseImage()
}

func (r *run) writeBuildFile() error {
	values := r.kind.BuildValues(project.BuildInput{
		BaseImage:  r.baseImage(),
		ProjectDir: r.ws.ProjectDir,
		Port:       r.req.Port(),
		Entrypoint: r.req.Entrypoint(),
	})
	content := render.Render(r.kind.BuildTemplate(), values.Restrict(render.BuildFileVocabulary))
	if left := render.Unresolved(content, render.BuildFileVocabulary); len(left) > 0 {
		r.log.Warn("build file has unresolved placeholders", "tokens", left)
	}

	path, err := r.ws.WriteBuildFile(content)
	if err != nil {
		return err
	}
	r.report.AddArtifact(result.ArtifactBuildFile, path)
	return nil
}

func (r *run) buildImage(ctx context.Context) error {
	out, err := builder.New(r.runner, r.req.ContainerEngine()).Build(ctx, builder.Input{
		Dir:        r.ws.Dir,
		ProjectDir: r.ws.ProjectDir,
		Image:      r.req.ImageName(),
		Push:       r.req.Push(),
		Snapshot:   r.req.Snapshot(),
	})
	if err != nil {
		return err
	}
	r.report.AddArtifact(result.ArtifactImage, out.Image)
	if out.SnapshotPath != "" {
		r.ws.AddFile(out.SnapshotPath)
		r.report.AddArtifact(result.ArtifactSnapshot, out.SnapshotPath)
	}
	return nil
}

func (r *run) packageChart(ctx context.Context) error {
	out, err := chart.New(r.runner, r.req.ChartEngine()).Package(ctx, chart.Input{
		Dir:     r.ws.Dir,
		Service: r.meta,
		Port:    r.req.Port(),
		Image:   r.req.ImageName(),
	})
	if err != nil {
		return err
	}
	r.chart = out
	for _, f := range out.Files {
		r.ws.AddFile(f)
	}
	r.ws.AddFile(out.Archive)
	r.report.AddArtifact(result.ArtifactChartDir, out.Dir)
	r.report.AddArtifact(result.ArtifactChart, out.Archive)
	return nil
}

func (r *run) pushChart(ctx context.Context) error {
	registry, err := oci.ParseReference(r.req.ChartRegistry())
	if err != nil {
		return err
	}

	res, err := oci.PushChart(ctx, oci.ChartPushOptions{
		Archive:     r.chart.Archive,
		Registry:    registry,
		Name:        r.meta.Name,
		Version:     r.meta.Version,
		PlainHTTP:   r.req.PlainHTTP(),
		InsecureTLS: r.req.InsecureTLS(),
	})
	if err != nil {
		return err
	}
	r.report.AddArtifact(result.ArtifactChartRef, res.Reference)
	r.log.Info("chart pushed", "reference", res.Reference, "digest", res.Digest)
	return nil
}

func (r *run) writeChecksums(ctx context.Context) error {
	entries, err := checksum.Generate(ctx, r.ws.Dir, r.ws.Files)
	if err != nil {
		return err
	}
	for _, e := range entries {
		r.report.SetChecksum(filepath.Join(r.ws.Dir, filepath.FromSlash(e.Path)), e.SHA256)
	}
	r.report.AddArtifact(result.ArtifactChecksums, checksum.FilePath(r.ws.Dir))
	return nil
}

// persist writes the report and metrics into the workspace, best effort.
func (r *run) persist() {
	if r.ws == nil {
		return
	}
	if err := r.metrics.WriteTextfile(r.ws.Path(defaults.MetricsFileName)); err != nil {
		r.log.Warn("failed to write metrics", "error", err)
	}
	if err := r.report.Write(r.ws.Path(defaults.ReportFileName)); err != nil {
		r.log.Warn("failed to write report", "error", err)
	}
}

func summarize(req *config.Request) result.Request {
	return result.Request{
		Name:        req.Name(),
		ProjectHome: req.ProjectHome(),
		BaseImage:   req.BaseImage(),
		Port:        req.Port(),
		ImageName:   req.ImageName(),
		Push:        req.Push(),
		Snapshot:    req.Snapshot(),
		Entrypoint:  req.Entrypoint(),
		MountPath:   req.MountPath(),
	}
}
