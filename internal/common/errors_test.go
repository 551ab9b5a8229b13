package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyCause(t *testing.T) {
	tests := []struct {
		name string
		errs []error
		want Cause
	}{
		{
			name: "auth failure wins over everything",
			errs: []error{ErrNetworkFailure, fmt.Errorf("wrapped: %w", ErrAuthFailure)},
			want: CauseCredential,
		},
		{
			name: "rate limit beats connectivity",
			errs: []error{ErrRateLimited, ErrNetworkFailure},
			want: CauseQuota,
		},
		{
			name: "network failure alone",
			errs: []error{fmt.Errorf("primary: %w", ErrNetworkFailure)},
			want: CauseConnectivity,
		},
		{
			name: "protocol errors are content failures",
			errs: []error{ErrBackendProtocol, ErrValidationFailed},
			want: CauseContent,
		},
		{
			name: "nil errors ignored",
			errs: []error{nil, ErrRateLimited},
			want: CauseQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyCause(tt.errs...); got != tt.want {
				t.Errorf("ClassifyCause() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTerminalError(t *testing.T) {
	primary := fmt.Errorf("strategy budget: %w", ErrNetworkFailure)
	fallback := fmt.Errorf("strategy rich: %w", ErrNetworkFailure)

	err := TerminalError(primary, fallback)

	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatalf("expected UserError, got %T", err)
	}
	if !errors.Is(err, ErrNetworkFailure) {
		t.Error("terminal error should wrap the underlying failures")
	}
}
