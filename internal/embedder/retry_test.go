package embedder

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}

	calls := 0
	result, err := retryWithBackoff(context.Background(), config, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}

	wantErr := errors.New("persistent")
	calls := 0
	_, err := retryWithBackoff(context.Background(), config, func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoffStopsOnClientError(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}

	calls := 0
	_, err := retryWithBackoff(context.Background(), config, func() (int, error) {
		calls++
		return 0, &apiStatusError{StatusCode: http.StatusUnauthorized, Body: "bad key"}
	})

	var apiErr *apiStatusError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want apiStatusError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", apiErr.StatusCode, http.StatusUnauthorized)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: a rejected key never succeeds on retry", calls)
	}
}

func TestRetryWithBackoffRetriesRateLimit(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}

	calls := 0
	result, err := retryWithBackoff(context.Background(), config, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &apiStatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &apiStatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &apiStatusError{StatusCode: http.StatusInternalServerError}, true},
		{"gateway timeout", &apiStatusError{StatusCode: http.StatusGatewayTimeout}, true},
		{"bad request", &apiStatusError{StatusCode: http.StatusBadRequest}, false},
		{"unauthorized", &apiStatusError{StatusCode: http.StatusUnauthorized}, false},
		{"unprocessable", &apiStatusError{StatusCode: http.StatusUnprocessableEntity}, false},
		{"transport failure", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultRetryConfig()
	_, err := retryWithBackoff(ctx, config, func() (int, error) {
		return 0, errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
