package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out")
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("file", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no id detail for empty id")
	}
	if err.Details["resource"] != "file" {
		t.Errorf("expected resource=file, got %v", err.Details["resource"])
	}
}

func TestAppError_ExecutableNotFound_Success(t *testing.T) {
	err := ExecutableNotFound("nope")
	if err.Code != ErrCodeExecutableNotFound {
		t.Errorf("expected EXECUTABLE_NOT_FOUND, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "'nope'") {
		t.Errorf("expected message to name the command, got %q", err.Message)
	}
	if err.Retryable {
		t.Error("ExecutableNotFound should not be retryable")
	}
}

func TestAppError_AbnormalExit_Details(t *testing.T) {
	argv := []string{"/bin/false"}
	err := AbnormalExit(argv, 1)
	if err.Details["exit_code"] != 1 {
		t.Errorf("expected exit_code=1, got %v", err.Details["exit_code"])
	}
	got, ok := err.Details["argv"].([]string)
	if !ok || len(got) != 1 || got[0] != "/bin/false" {
		t.Errorf("expected argv detail, got %v", err.Details["argv"])
	}
}

func TestAppError_ExecutionFailure_Cause(t *testing.T) {
	cause := fmt.Errorf("fork/exec: permission denied")
	err := ExecutionFailure([]string{"/x"}, cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Internal(nil).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected WithCause to set the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad").
		WithDetails(map[string]any{"a": 1}).
		WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad input")
	if err.Error() != "INVALID_INPUT: bad input" {
		t.Errorf("unexpected format: %q", err.Error())
	}
	err.WithCause(fmt.Errorf("boom"))
	if !strings.Contains(err.Error(), "(cause: boom)") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"Timeout", Timeout("run"), ErrCodeTimeout, true},
		{"NotFound", NotFound("file", "a"), ErrCodeNotFound, false},
		{"InvalidInput", InvalidInput("field", "reason"), ErrCodeInvalidInput, false},
		{"Validation", Validation("msg"), ErrCodeInvalidInput, false},
		{"MissingField", MissingField("name"), ErrCodeMissingField, false},
		{"ExecutableNotFound", ExecutableNotFound("cmd"), ErrCodeExecutableNotFound, false},
		{"AbnormalExit", AbnormalExit(nil, 2), ErrCodeAbnormalExit, false},
		{"ExecutionFailure", ExecutionFailure(nil, nil), ErrCodeExecutionFailure, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeUnavailable, true},
		{ErrCodeInternal, false},
		{ErrCodeAbnormalExit, false},
		{ErrCodeExecutableNotFound, false},
	}
	for _, tc := range tests {
		if got := IsRetryableCode(tc.code); got != tc.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Internal(nil))
	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}

	_, ok = AsAppError(fmt.Errorf("not an app error"))
	if ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected IsAppError to be false for plain error")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrap_AppErrorPassthrough(t *testing.T) {
	orig := NotFound("item", "1")
	if got := Wrap(orig); got != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
}

func TestWrap_PlainError(t *testing.T) {
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("wrapped: %w", Timeout("run"))) {
		t.Error("expected wrapped timeout to be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are never retryable")
	}
}
