// services/collection-service/internal/deposit/retry_policy.go

package deposit

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsAmbiguous reports whether a failed submit may still have committed.
// Such a failure must be resolved by re-querying the idempotency key, never by
// assuming the write was lost.
func IsAmbiguous(err error) bool {
	if err == nil {
		return false
	}
	return isAmbiguousTimeout(err) || isAmbiguousNetworkError(err) || isAmbiguousSystemError(err)
}

func isAmbiguousTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func isAmbiguousNetworkError(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	// A timeout may hit after the server received the request.
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isAmbiguousSystemError(err error) bool {
	// Connection refused never reached the server, so it is a clean failure.
	if errors.Is(err, syscall.ECONNREFUSED) {
		return false
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
