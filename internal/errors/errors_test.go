package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAppError_Error(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetworkError("probe failed", cause)

	if err.Type != ErrTypeNetwork {
		t.Errorf("Expected type %s, got %s", ErrTypeNetwork, err.Type)
	}
	if !err.Retryable {
		t.Error("Expected network error to be retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to match the wrapped cause")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		wantType  ErrorType
		retryable bool
	}{
		{"no recording", NewNoRecordingFound("1977-05-08"), ErrTypeNotFound, false},
		{"no tracks", NewNoTracksFound("gd77-05-08.sbd"), ErrTypeNotFound, false},
		{"no format", NewNoSupportedFormat([]string{"Shorten"}), ErrTypeFormat, false},
		{"engine", NewEngineError("pipeline gave up", nil), ErrTypeEngine, false},
		{"transfer", NewTransferFailed("stream reset", nil), ErrTypeTransfer, true},
		{"validation", NewValidationError("empty track list"), ErrTypeValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorType(tt.err); got != tt.wantType {
				t.Errorf("GetErrorType = %s, want %s", got, tt.wantType)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestGetErrorType_PlainError(t *testing.T) {
	if got := GetErrorType(fmt.Errorf("plain")); got != ErrTypeUnknown {
		t.Errorf("Expected unknown type for plain error, got %s", got)
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("Plain errors must not be retryable")
	}
}

func TestRetryWithSchedule_SucceedsOnRetry(t *testing.T) {
	attempts := 0
	schedule := []time.Duration{0, time.Millisecond, 2 * time.Millisecond}

	err := RetryWithSchedule(context.Background(), schedule, func() error {
		attempts++
		if attempts < 3 {
			return NewNetworkError("timeout", nil)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithSchedule_NonRetryableStopsEarly(t *testing.T) {
	attempts := 0
	schedule := []time.Duration{0, time.Millisecond, 2 * time.Millisecond}

	err := RetryWithSchedule(context.Background(), schedule, func() error {
		attempts++
		return NewValidationError("bad input")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryWithSchedule_Exhausted(t *testing.T) {
	attempts := 0
	schedule := []time.Duration{0, time.Millisecond}

	err := RetryWithSchedule(context.Background(), schedule, func() error {
		attempts++
		return NewNetworkError("still down", nil)
	})

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if attempts != len(schedule) {
		t.Errorf("Expected %d attempts, got %d", len(schedule), attempts)
	}
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	attempts := 0

	err := RetryWithBackoff(context.Background(), cfg, func() error {
		attempts++
		return NewValidationError("nope")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}
