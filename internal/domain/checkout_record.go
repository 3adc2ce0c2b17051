package domain

// Checkout outcomes recorded in the journal
const (
	CheckoutOutcomeCompleted    = "completed"     // Order created, chat ready
	CheckoutOutcomeChatDegraded = "chat_degraded" // Order created, chat setup failed
	CheckoutOutcomeBlocked      = "blocked"       // Insufficient funds, nothing submitted
	CheckoutOutcomeFailed       = "failed"        // Order creation failed
)

// CheckoutRecord is the only locally-owned table: an append-only journal row
// written for every checkout attempt. It is observability, not authority; the
// backend remains the source of truth for orders.
type CheckoutRecord struct {
	ID         uint    `gorm:"primaryKey"`    // Primary key
	RequestID  string  `gorm:"size:64;index"` // X-Request-ID of the attempt
	CustomerID string  `gorm:"size:64;index"` // Customer user id
	ServiceID  string  `gorm:"size:64"`       // Service id
	TimeslotID string  `gorm:"size:64"`       // Time slot id
	Price      float64 // Service price at decision time
	Balance    float64 // Wallet balance at decision time
	Outcome    string  `gorm:"size:32"` // One of the CheckoutOutcome constants
	OrderID    string  `gorm:"size:64"` // Upstream order id when known
	ChatReady  bool    // Whether conversation reconciliation succeeded
	Message    string  `gorm:"size:255"`             // Cause summary for failed/degraded outcomes
	CreatedAt  int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
