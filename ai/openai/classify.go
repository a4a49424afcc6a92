package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/curator/ai"
)

// classifyTransportErr maps an upstream call failure onto the retryable /
// permanent taxonomy. reqCtx is the enclosing request context: if it is
// already done, the failure is a cancellation, not a per-call timeout.
func classifyTransportErr(reqCtx context.Context, err error) error {
	// Per-call timeout with the request still live is transient.
	if errors.Is(err, context.DeadlineExceeded) {
		if reqCtx.Err() != nil {
			return reqCtx.Err()
		}
		return ai.Transient(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "unauthorized"):
		return ai.Permanent(err)
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "500"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "504"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "eof"):
		return ai.Transient(err)
	case strings.Contains(msg, "status code: 4"):
		// Remaining 4xx (bad request, not found, payload too large)
		return ai.Permanent(err)
	default:
		// Unclassified transport errors are treated as network flakiness.
		return ai.Transient(err)
	}
}
