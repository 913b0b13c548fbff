// Package errors provides unified error handling for shellkit.
// It implements a structured error type with machine-readable codes,
// retryable detection and cause chaining. Packages with their own closed
// error taxonomy (such as shell) convert into AppError at their boundary.
package errors
