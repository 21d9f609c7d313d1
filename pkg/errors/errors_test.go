package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeClassification, "no marker file")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeClassification {
		t.Errorf("expected code %s, got %s", ErrCodeClassification, err.Code)
	}
	if err.Message != "no marker file" {
		t.Errorf("expected message 'no marker file', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeWorkspace, "failed to copy project", cause)

	if err.Code != ErrCodeWorkspace {
		t.Errorf("expected code %s, got %s", ErrCodeWorkspace, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("unexpected EOF")
	ctx := map[string]any{
		"path": "/src/app/pyproject.toml",
	}

	err := WrapWithContext(ErrCodeManifest, "failed to parse manifest", cause, ctx)

	if err.Code != ErrCodeManifest {
		t.Errorf("expected code %s, got %s", ErrCodeManifest, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["path"] != "/src/app/pyproject.toml" {
		t.Errorf("expected path in context")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeArtifactMissing, "chart archive not found"),
			expected: "[ARTIFACT_MISSING] chart archive not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
		{
			name:     "step error",
			err:      NewStepError("build", 2, nil),
			expected: `[EXTERNAL_STEP] step "build" failed with exit code 2`,
		},
		{
			name:     "step error with cause",
			err:      NewStepError("lint", 1, errors.New("exit status 1")),
			expected: `[EXTERNAL_STEP] step "lint" failed with exit code 1: exit status 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestStepErrorAs(t *testing.T) {
	err := fmt.Errorf("pipeline aborted: %w", NewStepError("push", 125, nil))

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatal("expected errors.As to find StepError")
	}
	if stepErr.Step != "push" {
		t.Errorf("expected step push, got %s", stepErr.Step)
	}
	if stepErr.ExitCode != 125 {
		t.Errorf("expected exit code 125, got %d", stepErr.ExitCode)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "structured", err: New(ErrCodeManifest, "x"), want: ErrCodeManifest},
		{name: "step", err: NewStepError("build", 1, nil), want: ErrCodeExternalStep},
		{name: "wrapped structured", err: fmt.Errorf("ctx: %w", New(ErrCodeWorkspace, "x")), want: ErrCodeWorkspace},
		{name: "plain error", err: errors.New("boom"), want: ErrCodeInternal},
		{name: "outermost wins", err: Wrap(ErrCodeArtifactMissing, "x", New(ErrCodeInternal, "y")), want: ErrCodeArtifactMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NewStepError("build", 1, nil), ErrCodeExternalStep) {
		t.Error("expected step error to report EXTERNAL_STEP")
	}
	if IsCode(nil, ErrCodeInternal) {
		t.Error("nil error should not match any code")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeClassification,
		ErrCodeManifest,
		ErrCodeWorkspace,
		ErrCodeExternalStep,
		ErrCodeArtifactMissing,
		ErrCodeInvalidRequest,
		ErrCodeInternal,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
