/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// Question is one value the operator is asked for.
type Question struct {
	// Flag names the flag that would have supplied the value.
	Flag string
	// Title is the prompt shown to the operator.
	Title string
	// Description is optional help text under the title.
	Description string
	// Default is returned for an empty answer.
	Default string
	// Validate rejects an answer; nil accepts anything non-empty.
	Validate func(string) error
}

// Prompter asks the operator for values that could not be resolved otherwise.
type Prompter interface {
	Ask(q Question) (string, error)
}

// huhPrompter prompts on the terminal.
type huhPrompter struct {
	accessible bool
}

func (p huhPrompter) Ask(q Question) (string, error) {
	var answer string

	validate := func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if q.Default != "" {
				return nil
			}
			return fmt.Errorf("a value is required")
		}
		if q.Validate != nil {
			return q.Validate(s)
		}
		return nil
	}

	input := huh.NewInput().
		Title(q.Title).
		Description(q.Description).
		Placeholder(q.Default).
		Validate(validate).
		Value(&answer)

	form := huh.NewForm(huh.NewGroup(input)).WithAccessible(p.accessible)
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return "", errors.New(errors.ErrCodeInvalidRequest, "aborted while prompting for --"+q.Flag)
		}
		return "", errors.Wrap(errors.ErrCodeInternal, "prompt failed", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return q.Default, nil
	}
	return answer, nil
}

// noInputPrompter never asks: it returns defaults and fails on required values.
type noInputPrompter struct{}

func (noInputPrompter) Ask(q Question) (string, error) {
	if q.Default != "" {
		return q.Default, nil
	}
	return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("--%s is required when prompting is disabled", q.Flag),
		map[string]any{"flag": q.Flag})
}
