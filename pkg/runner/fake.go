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
	"context"
	"fmt"
	"sync"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// Result scripts the outcome of every invocation of one step.
type Result struct {
	// ExitCode is returned as a StepError when non-zero.
	ExitCode int

	// Stdout is returned by Output.
	Stdout string

	// Effect runs before the exit code is applied, to simulate side effects
	// such as the archive a packager writes. A returned error fails the step.
	Effect func(inv Invocation) error
}

// Fake records invocations and replays scripted results keyed by step name.
// Steps without a scripted result succeed with empty output.
type Fake struct {
	mu      sync.Mutex
	calls   []Invocation
	results map[string]Result
	missing map[string]bool
}

// NewFake returns a Fake where every step succeeds.
func NewFake() *Fake {
	return &Fake{
		results: make(map[string]Result),
		missing: make(map[string]bool),
	}
}

// On scripts the result for step.
func (f *Fake) On(step string, r Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[step] = r
	return f
}

// Missing makes LookPath fail for bin.
func (f *Fake) Missing(bin string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[bin] = true
	return f
}

// Calls returns a copy of every recorded invocation in order.
func (f *Fake) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Invocation, len(f.calls))
	copy(out, f.calls)
	return out
}

// Steps returns the recorded step names in order.
func (f *Fake) Steps() []string {
	calls := f.Calls()
	steps := make([]string, len(calls))
	for i, c := range calls {
		steps[i] = c.Step
	}
	return steps
}

// Call returns the first invocation of step.
func (f *Fake) Call(step string) (Invocation, bool) {
	for _, c := range f.Calls() {
		if c.Step == step {
			return c, true
		}
	}
	return Invocation{}, false
}

// Run records inv and applies the scripted result.
func (f *Fake) Run(ctx context.Context, inv Invocation) error {
	_, err := f.Output(ctx, inv)
	return err
}

// Output records inv and returns the scripted stdout.
func (f *Fake) Output(ctx context.Context, inv Invocation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("step %s not started: %w", inv.Step, err)
	}

	f.mu.Lock()
	f.calls = append(f.calls, inv)
	r := f.results[inv.Step]
	f.mu.Unlock()

	if r.Effect != nil {
		if err := r.Effect(inv); err != nil {
			return "", errors.NewStepError(inv.Step, ExitCodeUnknown, err)
		}
	}
	if r.ExitCode != 0 {
		return "", errors.NewStepError(inv.Step, r.ExitCode, nil)
	}
	return r.Stdout, nil
}

// LookPath resolves every binary except those marked Missing.
func (f *Fake) LookPath(file string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[file] {
		return "", fmt.Errorf("executable file %q not found in $PATH", file)
	}
	return "/usr/bin/" + file, nil
}
