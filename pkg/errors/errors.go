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

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeClassification indicates no project marker file matched.
	ErrCodeClassification ErrorCode = "CLASSIFICATION"
	// ErrCodeManifest indicates a missing, unparsable, or incomplete manifest.
	ErrCodeManifest ErrorCode = "MANIFEST"
	// ErrCodeWorkspace indicates an I/O failure while staging the workspace.
	ErrCodeWorkspace ErrorCode = "WORKSPACE"
	// ErrCodeExternalStep indicates an external command returned non-zero.
	// Errors with this code are always *StepError values.
	ErrCodeExternalStep ErrorCode = "EXTERNAL_STEP"
	// ErrCodeArtifactMissing indicates a step reported success but the
	// artifact it should have produced does not exist.
	ErrCodeArtifactMissing ErrorCode = "ARTIFACT_MISSING"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// StepError reports an external command that exited with a non-zero status.
// Step is the pipeline step name (e.g. "build", "push", "lint"), not the binary.
type StepError struct {
	Step     string
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] step %q failed with exit code %d: %v", ErrCodeExternalStep, e.Step, e.ExitCode, e.Cause)
	}
	return fmt.Sprintf("[%s] step %q failed with exit code %d", ErrCodeExternalStep, e.Step, e.ExitCode)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Cause
}

// NewStepError creates a StepError for the named step.
func NewStepError(step string, exitCode int, cause error) *StepError {
	return &StepError{
		Step:     step,
		ExitCode: exitCode,
		Cause:    cause,
	}
}

// CodeOf returns the code of the outermost classified error in the chain.
// Unclassified errors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		switch v := e.(type) {
		case *StepError:
			return ErrCodeExternalStep
		case *StructuredError:
			return v.Code
		}
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
