// Package errors provides the structured error taxonomy used across the
// packaging pipeline.
//
// Every failure that aborts a run is either a StructuredError carrying one of
// the ErrorCode values below, or a StepError describing an external command
// (container engine, chart engine) that exited non-zero.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeManifest,
//	    "failed to parse pyproject.toml",
//	    cause,
//	    map[string]any{
//	        "path": manifestPath,
//	    },
//	)
//
//	var stepErr *errors.StepError
//	if stderrors.As(err, &stepErr) {
//	    fmt.Println(stepErr.Step, stepErr.ExitCode)
//	}
package errors
