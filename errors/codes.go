package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeTimeout indicates an operation ran past its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUnavailable indicates a collaborator is temporarily unavailable.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Process execution errors
const (
	// ErrCodeExecutableNotFound indicates a command could not be resolved to a file.
	ErrCodeExecutableNotFound ErrorCode = "EXECUTABLE_NOT_FOUND"
	// ErrCodeAbnormalExit indicates a process exited with an unaccepted code.
	ErrCodeAbnormalExit ErrorCode = "ABNORMAL_EXIT"
	// ErrCodeExecutionFailure indicates a process could not be spawned, waited on or read from.
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:     true,
	ErrCodeUnavailable: true,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
