package generators

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrRetryable marks a failure that may succeed when the call is repeated.
var ErrRetryable = errors.New("retryable")

func IsRetryable(err error) bool {
	if errors.Is(err, ErrRetryable) {
		return true
	}
	var s interface{ GRPCStatus() *status.Status }
	if errors.As(err, &s) {
		switch s.GRPCStatus().Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
	}
	return false
}
