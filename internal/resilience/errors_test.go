package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"transient", NewTransientError(errors.New("503"), 503), true},
		{"wrapped transient", fmt.Errorf("download: %w", NewTransientError(errors.New("429"), 429)), true},
		{"net timeout", timeoutErr{}, true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", syscall.ECONNREFUSED, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 502)
	if !errors.Is(te, inner) {
		t.Error("expected errors.Is to reach inner error")
	}
	if te.Error() != "inner" {
		t.Errorf("unexpected message %q", te.Error())
	}
	if te.StatusCode != 502 {
		t.Errorf("expected 502, got %d", te.StatusCode)
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be transient", code)
		}
	}
	for _, code := range []int{200, 304, 400, 401, 403, 404} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be permanent", code)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{" 2 ", 2 * time.Second},
		{"-3", 0},
		{"soon", 0},
		{"Tue, 05 Mar 2024 09:00:30 GMT", 30 * time.Second},
		{"Tue, 05 Mar 2024 08:59:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRetryAfterHint(t *testing.T) {
	if _, ok := RetryAfterHint(errors.New("plain")); ok {
		t.Error("plain error should carry no hint")
	}
	te := NewTransientError(errors.New("busy"), 503)
	if _, ok := RetryAfterHint(te); ok {
		t.Error("zero RetryAfter should carry no hint")
	}
	te.RetryAfter = 4 * time.Second
	if d, ok := RetryAfterHint(fmt.Errorf("download: %w", te)); !ok || d != 4*time.Second {
		t.Errorf("expected 4s hint, got %s ok=%v", d, ok)
	}
}
