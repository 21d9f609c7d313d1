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

package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	utilexec "k8s.io/utils/exec"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// ExitCodeNotFound is reported when the command binary cannot be found.
const ExitCodeNotFound = 127

// ExitCodeUnknown is reported when a command failed without an exit status.
const ExitCodeUnknown = -1

// Invocation is one external command.
type Invocation struct {
	// Step names the pipeline step, e.g. "build" or "lint".
	Step string

	// Name is the binary to run.
	Name string

	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string
}

// Argv returns the binary followed by its arguments.
func (i Invocation) Argv() []string {
	return append([]string{i.Name}, i.Args...)
}

// String renders the command line for logs.
func (i Invocation) String() string {
	return strings.Join(i.Argv(), " ")
}

// Runner runs external commands.
type Runner interface {
	// Run executes inv and streams its output.
	Run(ctx context.Context, inv Invocation) error

	// Output executes inv and returns its trimmed standard output.
	Output(ctx context.Context, inv Invocation) (string, error)

	// LookPath resolves a binary on PATH.
	LookPath(file string) (string, error)
}

// Exec runs commands on the host.
type Exec struct {
	exec   utilexec.Interface
	stdout io.Writer
	stderr io.Writer
}

// NewExec returns an Exec streaming command output to stdout and stderr.
// Nil writers discard output.
func NewExec(stdout, stderr io.Writer) *Exec {
	return newExec(utilexec.New(), stdout, stderr)
}

func newExec(e utilexec.Interface, stdout, stderr io.Writer) *Exec {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Exec{exec: e, stdout: stdout, stderr: stderr}
}

// Run executes inv, streaming stdout and stderr.
func (r *Exec) Run(ctx context.Context, inv Invocation) error {
	return r.run(ctx, inv, r.stdout)
}

// Output executes inv and returns standard output with surrounding whitespace trimmed.
// Standard error is still streamed.
func (r *Exec) Output(ctx context.Context, inv Invocation) (string, error) {
	var buf bytes.Buffer
	if err := r.run(ctx, inv, &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// LookPath resolves file on PATH.
func (r *Exec) LookPath(file string) (string, error) {
	return r.exec.LookPath(file)
}

func (r *Exec) run(ctx context.Context, inv Invocation, stdout io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("step %s not started: %w", inv.Step, err)
	}

	// Command rather than CommandContext: a started step always runs to completion.
	cmd := r.exec.Command(inv.Name, inv.Args...)
	if inv.Dir != "" {
		cmd.SetDir(inv.Dir)
	}
	cmd.SetStdout(stdout)
	cmd.SetStderr(r.stderr)

	slog.Debug("running external command",
		"step", inv.Step,
		"argv", inv.Argv(),
		"dir", inv.Dir)

	start := time.Now()
	err := cmd.Run()
	slog.Debug("external command finished",
		"step", inv.Step,
		"duration", time.Since(start).Round(time.Millisecond),
		"error", err)

	return toStepError(inv, err)
}

// toStepError maps a command error to a StepError carrying the exit status.
func toStepError(inv Invocation, err error) error {
	if err == nil {
		return nil
	}

	var exitErr utilexec.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.NewStepError(inv.Step, exitErr.ExitStatus(), err)
	}
	if stderrors.Is(err, utilexec.ErrExecutableNotFound) {
		return errors.NewStepError(inv.Step, ExitCodeNotFound, err)
	}
	return errors.NewStepError(inv.Step, ExitCodeUnknown, err)
}

// Preflight verifies that every binary resolves on PATH.
// A missing binary is reported as a failed "preflight" step with ExitCodeNotFound.
func Preflight(r Runner, binaries ...string) error {
	for _, bin := range binaries {
		resolved, err := r.LookPath(bin)
		if err != nil {
			return errors.NewStepError("preflight", ExitCodeNotFound,
				fmt.Errorf("%s not found: %w", bin, err))
		}
		slog.Debug("external engine resolved", "binary", bin, "path", resolved)
	}
	return nil
}
