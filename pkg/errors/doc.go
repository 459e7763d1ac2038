// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeBuildFailure,
//	    "cmake exited with non-zero status",
//	    runErr,
//	    map[string]any{
//	        errors.ContextKeyExitCode: 2,
//	        "command":                 "cmake --build build",
//	    },
//	)
//
// Callers branch on the classification with IsCode and recover the tool's
// exit status with ExitCode:
//
//	if errors.IsCode(err, errors.ErrCodeBuildFailure) {
//	    code, _ := errors.ExitCode(err)
//	    os.Exit(code)
//	}
package errors
