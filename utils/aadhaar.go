package utils

import (
	"context"
	"regexp"
	"time"
)

var aadhaarPattern = regexp.MustCompile(`^\d{12}$`)

// AadhaarVerifier simulates the remote Aadhaar verification service. The check
// itself is deterministic: any well-formed 12-digit number is accepted. Delay
// stands in for the network round trip; tests run it at zero.
type AadhaarVerifier struct {
	Delay time.Duration
}

// Verify reports whether the number passes format validation.
func (v AadhaarVerifier) Verify(ctx context.Context, aadhaarNumber string) (bool, error) {
	if !aadhaarPattern.MatchString(aadhaarNumber) {
		return false, nil
	}

	if v.Delay > 0 {
		select {
		case <-time.After(v.Delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return true, nil
}
