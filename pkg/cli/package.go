/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/pipeline"
	"github.com/NVIDIA/servicemaker/pkg/project"
	"github.com/NVIDIA/servicemaker/pkg/result"
	"github.com/NVIDIA/servicemaker/pkg/runner"
)

const envPrefix = "SERVICEMAKER_"

func env(key string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + key)
}

// parsePackageCmdOptions reads the package command flags.
func parsePackageCmdOptions(cmd *cli.Command) packageCmdOptions {
	return packageCmdOptions{
		name:            cmd.String("name"),
		projectHome:     cmd.String("project-home"),
		baseImage:       cmd.String("base-image"),
		port:            cmd.Int("port"),
		imageName:       cmd.String("image-name"),
		push:            cmd.Bool("push"),
		entrypoint:      cmd.String("entrypoint"),
		snapshot:        cmd.Bool("make-tar-gz"),
		mountPath:       cmd.String("mount-path"),
		projectType:     cmd.String("project-type"),
		workspaceRoot:   cmd.String("workspace-root"),
		containerEngine: cmd.String("container-engine"),
		chartEngine:     cmd.String("chart-engine"),
		chartRegistry:   cmd.String("chart-registry"),
		plainHTTP:       cmd.Bool("plain-http"),
		insecureTLS:     cmd.Bool("insecure-tls"),
		noInput:         cmd.Bool("no-input"),
	}
}

// prompterFor returns the prompter for the current terminal.
func prompterFor(noInput bool) Prompter {
	if noInput || !isatty.IsTerminal(os.Stdin.Fd()) {
		return noInputPrompter{}
	}
	return huhPrompter{accessible: os.Getenv("ACCESSIBLE") != ""}
}

func packageCmd() *cli.Command {
	return &cli.Command{
		Name:                  "package",
		EnableShellCompletion: true,
		Usage:                 "Build the container image and Helm chart for a project",
		Description: fmt.Sprintf(`Classifies the project, stages it in a workspace, renders a Dockerfile,
builds the image and packages a Helm chart named after the project manifest.

# Project Types

  - %s: %s at the project root
  - %s: %s and %s at the project root
  - %s: %s only; wrapped with a generated %s
  - %s: plain Node.js project, selected with --project-type

# Outputs (in servicemaker-<name>-<pid>/)

  - Dockerfile and scripts/
  - <service>/ chart sources and <service>-<version>.tgz
  - project.tar.gz with --make-tar-gz
  - checksums.txt, %s, %s

# Examples

Package a script project, pushing the image:
  servicemaker package --project-home ./svc --port 8080 \
    --image-name ghcr.io/acme/svc:2.0.0 --push

Package a single Node.js service without prompting:
  servicemaker package --project-home ./hello --port 3000 \
    --image-name hello:0.1.0 --mount-path /hello --no-input

Publish the chart to an OCI registry:
  servicemaker package --project-home ./svc --port 8080 \
    --image-name ghcr.io/acme/svc:2.0.0 --chart-registry oci://ghcr.io/acme/charts`,
			project.TypeScript, project.ScriptManifestFile,
			project.TypeMultiService, project.WebManifestFile, project.ServiceDescriptorFile,
			project.TypeSingleService, project.WebManifestFile, project.ServiceDescriptorFile,
			project.TypeWeb,
			defaults.ReportFileName, defaults.MetricsFileName),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Project name used for the workspace (default: manifest name)",
				Sources: env("NAME"),
			},
			&cli.StringFlag{
				Name:    "project-home",
				Aliases: []string{"p"},
				Usage:   "Project directory to package",
				Sources: env("PROJECT_HOME"),
			},
			&cli.StringFlag{
				Name:    "base-image",
				Usage:   "Base image of the generated Dockerfile (Node.js projects switch to " + defaults.NodeBaseImage + " when left at the default)",
				Value:   defaults.PythonBaseImage,
				Sources: env("BASE_IMAGE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port the service listens on",
				Sources: env("PORT"),
			},
			&cli.StringFlag{
				Name:    "image-name",
				Aliases: []string{"i"},
				Usage:   "Image reference to build (e.g. ghcr.io/acme/svc:1.0.0)",
				Sources: env("IMAGE_NAME"),
			},
			&cli.BoolFlag{
				Name:    "push",
				Usage:   "Push the image after building it",
				Sources: env("PUSH"),
			},
			&cli.StringFlag{
				Name:    "entrypoint",
				Usage:   "Python file to run (script projects; default: the only *.py file at the root)",
				Sources: env("ENTRYPOINT"),
			},
			&cli.BoolFlag{
				Name:    "make-tar-gz",
				Usage:   "Extract " + defaults.SnapshotArchiveName + " of the prepared project from the built image",
				Sources: env("MAKE_TAR_GZ"),
			},
			&cli.StringFlag{
				Name:    "mount-path",
				Usage:   "Mount path of a single-service project (default: /<directory name>)",
				Sources: env("MOUNT_PATH"),
			},
			&cli.StringFlag{
				Name:    "project-type",
				Usage:   "Skip detection and force a project type",
				Sources: env("PROJECT_TYPE"),
				Validator: func(s string) error {
					if s == "" {
						return nil
					}
					_, err := project.Lookup(project.Type(s))
					return err
				},
			},
			&cli.StringFlag{
				Name:    "workspace-root",
				Usage:   "Directory the workspace is created in",
				Value:   ".",
				Sources: env("WORKSPACE_ROOT"),
			},
			&cli.StringFlag{
				Name:    "container-engine",
				Usage:   "Docker-compatible CLI used to build, push, and run images",
				Value:   defaults.ContainerEngine,
				Sources: env("CONTAINER_ENGINE"),
			},
			&cli.StringFlag{
				Name:    "chart-engine",
				Usage:   "Helm CLI used to lint and package the chart",
				Value:   defaults.ChartEngine,
				Sources: env("CHART_ENGINE"),
			},
			&cli.StringFlag{
				Name:    "chart-registry",
				Usage:   "Push the packaged chart to this registry (oci://host/repository)",
				Sources: env("CHART_REGISTRY"),
			},
			&cli.BoolFlag{
				Name:    "plain-http",
				Usage:   "Use HTTP instead of HTTPS for the chart registry",
				Sources: env("PLAIN_HTTP"),
			},
			&cli.BoolFlag{
				Name:    "insecure-tls",
				Usage:   "Skip TLS certificate verification for the chart registry",
				Sources: env("INSECURE_TLS"),
			},
			&cli.BoolFlag{
				Name:    "no-input",
				Usage:   "Never prompt; fail when a required value is missing",
				Sources: env("NO_INPUT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := parsePackageCmdOptions(cmd)

			req, err := resolve(opts, prompterFor(opts.noInput))
			if err != nil {
				return err
			}

			out := cmd.Root().Writer
			d := pipeline.New(
				pipeline.WithRunner(runner.NewExec(out, cmd.Root().ErrWriter)),
				pipeline.WithVersion(version),
			)
			rep, err := d.Run(ctx, req)
			printSummary(out, rep)
			return err
		},
	}
}

// printSummary writes where the run left its outputs.
func printSummary(w io.Writer, rep *result.Report) {
	if rep == nil {
		return
	}
	fmt.Fprintf(w, "\n%s\n", rep.Summary())
	if rep.Workspace == "" {
		return
	}
	fmt.Fprintf(w, "\nWorkspace: %s\n", rep.Workspace)
	rows := []struct{ label, kind string }{
		{"Image", result.ArtifactImage},
		{"Chart", result.ArtifactChart},
		{"Chart reference", result.ArtifactChartRef},
		{"Snapshot", result.ArtifactSnapshot},
	}
	for _, row := range rows {
		if v := rep.Artifact(row.kind); v != "" {
			fmt.Fprintf(w, "%s: %s\n", row.label, v)
		}
	}
	fmt.Fprintf(w, "Report: %s/%s\n", rep.Workspace, defaults.ReportFileName)
}
