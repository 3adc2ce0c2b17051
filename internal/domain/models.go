package domain

// Wallet is the customer's balance as reported by the accounting backend.
// The gateway only ever reads it; all mutations happen upstream.
type Wallet struct {
	OwnerID string  `json:"ownerId"` // User id of the wallet owner
	Balance float64 `json:"balance"` // Current balance, completed transactions only
	Label   string  `json:"label"`   // Role tag, e.g. "customer" or "fortune_teller"
}

// Service is a fortune-telling service listed on the marketplace.
type Service struct {
	ID                  string   `json:"serviceId"`           // Service id
	Name                string   `json:"name"`                // Display name
	Price               float64  `json:"price"`               // Price, >= 0
	FortuneTellerUserID string   `json:"fortuneTellerUserId"` // User id of the owning fortune teller
	Description         string   `json:"description"`         // Description text
	Images              []string `json:"images,omitempty"`    // Image URLs
}

// OrderInput is the payload for creating an order upstream.
type OrderInput struct {
	ServiceID  string `json:"serviceId"`  // Service being booked
	TimeslotID string `json:"timeslotId"` // Selected time slot
	CustomerID string `json:"customerId"` // Booking customer
}

// Order is a booking record as returned by the backend.
type Order struct {
	ID         string `json:"orderId"`    // Authoritative id, assigned upstream
	ServiceID  string `json:"serviceId"`  // Booked service
	TimeslotID string `json:"timeslotId"` // Booked time slot
	CustomerID string `json:"customerId"` // Booking customer
	Status     string `json:"status"`     // pending, confirmed, cancelled
	CreatedAt  int64  `json:"createdAt"`  // Creation timestamp in milliseconds
}

// Conversation is a chat channel between two users.
type Conversation struct {
	ID             string   `json:"conversationId"`     // Conversation id
	ParticipantIDs []string `json:"participantUserIds"` // User ids of the participants
	CreatedAt      int64    `json:"createdAt"`          // Creation timestamp in milliseconds
}

// HasParticipant reports whether the given user id is in the participant set.
func (c Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
