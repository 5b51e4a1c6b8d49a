package db

import (
	"errors"
	"fmt"
	"testing"
)

func TestConnectivityErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := connectivity(cause)

	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatal("connectivity() result is not matchable as *ConnectivityError")
	}
	if !errors.Is(err, cause) {
		t.Error("connectivity() lost the underlying cause")
	}
	if ce.Unwrap() != cause {
		t.Error("Unwrap() did not return the underlying cause")
	}
	if got := err.Error(); got != "data source unreachable: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConnectivityNil(t *testing.T) {
	if connectivity(nil) != nil {
		t.Error("connectivity(nil) should be nil")
	}
}

func TestIsConnectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "direct", err: connectivity(errors.New("down")), want: true},
		{name: "wrapped further", err: fmt.Errorf("capture failed: %w", connectivity(errors.New("down"))), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectivity(tt.err); got != tt.want {
				t.Errorf("IsConnectivity() = %v, want %v", got, tt.want)
			}
		})
	}
}
