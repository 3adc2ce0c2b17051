package checkout

import "errors"

// The checkout error taxonomy. Everything before the order call is fail-fast
// and leaves no side effects; everything after the order call is best-effort
// and never undoes the order.
var (
	ErrAuthenticationRequired = errors.New("authentication required")                          // No/invalid session credential
	ErrServiceNotFound        = errors.New("service not found")                                // Service lookup failed, checkout aborted
	ErrInsufficientFunds      = errors.New("insufficient funds")                               // Balance below price, nothing submitted
	ErrCheckoutInFlight       = errors.New("a checkout for this service is already in flight") // Concurrent confirm rejected
)

// OrderCreationError wraps the upstream cause of a failed order submission.
// The cause is preserved for logs; API clients only see a generic message.
type OrderCreationError struct {
	Cause error
}

func (e *OrderCreationError) Error() string {
	return "order creation failed: " + e.Cause.Error()
}

func (e *OrderCreationError) Unwrap() error {
	return e.Cause
}
