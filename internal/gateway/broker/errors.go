package broker

import (
	"context"
	"errors"
	"fmt"
)

// NoDataError means the gateway has no quote or bar data for a symbol. The
// caller skips the instrument for the cycle; no state changes.
type NoDataError struct {
	Symbol string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no market data for %s", e.Symbol)
}

// RejectError is a broker-side refusal of a modify request (stale price,
// invalid stop distance, ...). The next cycle re-evaluates from live price.
type RejectError struct {
	Code    int
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("broker rejected request: code=%d %s", e.Code, e.Message)
}

// IsNoData reports whether err is a missing-data failure, including timeouts
// on data fetches, which are treated the same way at call sites.
func IsNoData(err error) bool {
	var nd *NoDataError
	if errors.As(err, &nd) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsRejected reports whether err is a broker-side rejection.
func IsRejected(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}
