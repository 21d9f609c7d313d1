/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/servicemaker/pkg/result"
)

func TestParsePackageCmdOptions(t *testing.T) {
	var got packageCmdOptions
	cmd := packageCmd()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		got = parsePackageCmdOptions(c)
		return nil
	}

	err := cmd.Run(context.Background(), []string{
		"package",
		"--name", "svc",
		"--project-home", "/src/svc",
		"--port", "8080",
		"--image-name", "svc:1",
		"--push",
		"--make-tar-gz",
		"--container-engine", "podman",
		"--chart-registry", "oci://localhost:5000/charts",
		"--plain-http",
		"--no-input",
	})
	if err != nil {
		t.Fatalf("failed to run command: %v", err)
	}

	if got.name != "svc" || got.projectHome != "/src/svc" || got.imageName != "svc:1" {
		t.Errorf("unexpected string options: %+v", got)
	}
	if got.port != 8080 {
		t.Errorf("port = %d, want 8080", got.port)
	}
	if !got.push || !got.snapshot || !got.plainHTTP || !got.noInput {
		t.Errorf("unexpected bool options: %+v", got)
	}
	if got.insecureTLS {
		t.Error("insecure-tls should default to false")
	}
	if got.containerEngine != "podman" || got.chartEngine != "helm" {
		t.Errorf("engines = %q/%q", got.containerEngine, got.chartEngine)
	}
	if got.baseImage != "arangodb/py13base:latest" {
		t.Errorf("base image default = %q", got.baseImage)
	}
	if got.chartRegistry != "oci://localhost:5000/charts" {
		t.Errorf("chart registry = %q", got.chartRegistry)
	}
}

func TestPackageCmdEnvSources(t *testing.T) {
	t.Setenv("SERVICEMAKER_IMAGE_NAME", "env/svc:3")
	t.Setenv("SERVICEMAKER_PORT", "9000")
	t.Setenv("SERVICEMAKER_NO_INPUT", "true")

	var got packageCmdOptions
	cmd := packageCmd()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		got = parsePackageCmdOptions(c)
		return nil
	}
	if err := cmd.Run(context.Background(), []string{"package"}); err != nil {
		t.Fatalf("failed to run command: %v", err)
	}

	if got.imageName != "env/svc:3" || got.port != 9000 || !got.noInput {
		t.Errorf("env values not applied: %+v", got)
	}
}

func TestPackageCmdRejectsUnknownProjectType(t *testing.T) {
	cmd := packageCmd()
	cmd.Action = func(context.Context, *cli.Command) error { return nil }

	err := cmd.Run(context.Background(), []string{"package", "--project-type", "rust-project"})
	if err == nil {
		t.Fatal("expected error for unknown project type")
	}
}

func TestRootCmd(t *testing.T) {
	cmd := newRootCmd()
	if cmd.Name != name {
		t.Errorf("root name = %q", cmd.Name)
	}
	if len(cmd.Commands) != 1 || cmd.Commands[0].Name != "package" {
		t.Errorf("unexpected subcommands: %v", cmd.Commands)
	}
}

func TestPrintSummary(t *testing.T) {
	rep := result.New("run-1")
	rep.Request.Name = "svc"
	rep.Workspace = "/tmp/servicemaker-svc-1"
	rep.AddArtifact(result.ArtifactImage, "svc:1")
	rep.AddArtifact(result.ArtifactChart, "/tmp/servicemaker-svc-1/svc-2.0.0.tgz")
	rep.Finish(nil)

	var buf bytes.Buffer
	printSummary(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"Packaged svc",
		"Workspace: /tmp/servicemaker-svc-1",
		"Image: svc:1",
		"Chart: /tmp/servicemaker-svc-1/svc-2.0.0.tgz",
		"Report: /tmp/servicemaker-svc-1/servicemaker-report.yaml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Snapshot:") {
		t.Errorf("summary should omit absent snapshot:\n%s", out)
	}

	buf.Reset()
	printSummary(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil report should print nothing, got %q", buf.String())
	}
}
