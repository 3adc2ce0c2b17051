package checkout

import (
	"context"                          // Request-scoped cancellation
	"errors"                           // Sentinel matching
	"fmt"                              // Error wrapping
	"fortune_gateway/internal/backend" // Backend error sentinels
	"fortune_gateway/internal/domain"  // Domain models
	"fortune_gateway/internal/journal" // Checkout journal
	"sync"                             // Fan-out join

	"github.com/sirupsen/logrus" // Logging library
)

// Session is the explicit session context passed into every workflow call,
// replacing the source app's ambient credential lookups. Token is the raw
// bearer credential forwarded upstream.
type Session struct {
	UserID string // Customer user id from the token claims
	Role   string // Role claim
	Token  string // Raw bearer token for upstream calls
}

// Backend is the slice of the remote marketplace/accounting API the workflow
// consumes. *backend.Client implements it; tests substitute fakes.
type Backend interface {
	WalletBalance(ctx context.Context, token, ownerID string) (domain.Wallet, error)
	Service(ctx context.Context, token, serviceID string) (domain.Service, error)
	CreateOrder(ctx context.Context, token string, in domain.OrderInput) (domain.Order, error)
	Conversations(ctx context.Context, token string) ([]domain.Conversation, error)
	CreateConversation(ctx context.Context, token string, participantIDs []string) (domain.Conversation, error)
}

// Quote is the checkout context for one customer/service pair: everything
// needed to decide whether the purchase may proceed.
type Quote struct {
	CustomerID          string  `json:"customerId"`          // Session user id
	ServiceID           string  `json:"serviceId"`           // Service id
	ServiceName         string  `json:"serviceName"`         // Service display name
	FortuneTellerUserID string  `json:"fortuneTellerUserId"` // Owning fortune teller's user id
	Price               float64 `json:"price"`               // Service price
	Balance             float64 `json:"balance"`             // Wallet balance at fetch time
}

// CanAfford reports whether the balance covers the price. Equal is enough;
// no overdraft order is ever submitted.
func (q Quote) CanAfford() bool {
	return q.Balance >= q.Price
}

// ConfirmInput is one confirm attempt.
type ConfirmInput struct {
	ServiceID  string // Service being booked
	TimeslotID string // Selected time slot
	RequestID  string // Request id for logs and the journal
}

// Result reports a successful checkout. ChatReady false with a Message means
// the order stands but conversation setup was skipped or failed.
type Result struct {
	OrderID   string `json:"orderId,omitempty"` // Upstream order id when reported
	ChatReady bool   `json:"chatReady"`         // Conversation exists between customer and fortune teller
	Message   string `json:"message,omitempty"` // Degradation note, empty on full success
}

// Service runs the checkout workflow.
type Service struct {
	backend Backend          // Remote backend
	guard   Guard            // In-flight confirm guard
	journal journal.Recorder // Attempt journal, best-effort
}

// NewService wires the workflow dependencies.
func NewService(b Backend, g Guard, j journal.Recorder) *Service {
	return &Service{backend: b, guard: g, journal: j}
}

// LoadContext fetches the wallet balance and service detail concurrently and
// joins them into a Quote. Both reads are independent; neither mutates
// anything, so a failure here aborts checkout with no side effects.
func (s *Service) LoadContext(ctx context.Context, session Session, serviceID string) (Quote, error) {
	var (
		wallet    domain.Wallet
		svc       domain.Service
		walletErr error
		svcErr    error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		wallet, walletErr = s.backend.WalletBalance(ctx, session.Token, session.UserID)
	}()
	go func() {
		defer wg.Done()
		svc, svcErr = s.backend.Service(ctx, session.Token, serviceID)
	}()
	wg.Wait()

	// A rejected credential on either read blocks everything else.
	if errors.Is(walletErr, backend.ErrUnauthorized) || errors.Is(svcErr, backend.ErrUnauthorized) {
		return Quote{}, ErrAuthenticationRequired
	}
	// Any service lookup failure aborts checkout before any mutation.
	if svcErr != nil {
		return Quote{}, fmt.Errorf("%w: %s", ErrServiceNotFound, svcErr)
	}
	if walletErr != nil {
		return Quote{}, walletErr
	}
	return Quote{
		CustomerID:          session.UserID,
		ServiceID:           serviceID,
		ServiceName:         svc.Name,
		FortuneTellerUserID: svc.FortuneTellerUserID,
		Price:               svc.Price,
		Balance:             wallet.Balance,
	}, nil
}

// Confirm runs the full workflow: context load, affordability gate, order
// submission, then best-effort conversation reconciliation. Errors before the
// order call leave no side effects; once the order is created it stands, even
// when chat setup fails.
func (s *Service) Confirm(ctx context.Context, session Session, in ConfirmInput) (Result, error) {
	quote, err := s.LoadContext(ctx, session, in.ServiceID)
	if err != nil {
		return Result{}, err
	}

	// The gate: no order request is ever issued for an unaffordable service.
	if !quote.CanAfford() {
		s.record(quote, in, domain.CheckoutOutcomeBlocked, "", false, "insufficient funds")
		return Result{}, ErrInsufficientFunds
	}

	// Reject an overlapping confirm for the same customer/service. A guard
	// outage downgrades to the source app's unguarded behavior.
	acquired, guardErr := s.guard.Acquire(ctx, session.UserID, in.ServiceID)
	if guardErr != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": in.RequestID,
			"error":      guardErr.Error(),
		}).Warn("Checkout guard unavailable, proceeding unguarded")
	} else if !acquired {
		return Result{}, ErrCheckoutInFlight
	} else {
		defer s.guard.Release(context.Background(), session.UserID, in.ServiceID)
	}

	order, err := s.backend.CreateOrder(ctx, session.Token, domain.OrderInput{
		ServiceID:  in.ServiceID,
		TimeslotID: in.TimeslotID,
		CustomerID: session.UserID,
	})
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return Result{}, ErrAuthenticationRequired
		}
		logrus.WithFields(logrus.Fields{
			"request_id":  in.RequestID,
			"customer_id": session.UserID,
			"service_id":  in.ServiceID,
			"error":       err.Error(),
		}).Error("Order creation failed")
		s.record(quote, in, domain.CheckoutOutcomeFailed, "", false, err.Error())
		return Result{}, &OrderCreationError{Cause: err}
	}

	chat := s.reconcileConversation(ctx, session, in.RequestID, quote.FortuneTellerUserID)
	outcome := domain.CheckoutOutcomeCompleted
	if chat.degraded {
		outcome = domain.CheckoutOutcomeChatDegraded
	}
	s.record(quote, in, outcome, order.ID, chat.ready, chat.note)

	logrus.WithFields(logrus.Fields{
		"request_id":  in.RequestID,
		"customer_id": session.UserID,
		"service_id":  in.ServiceID,
		"order_id":    order.ID,
		"chat_ready":  chat.ready,
	}).Info("Checkout confirmed")
	return Result{OrderID: order.ID, ChatReady: chat.ready, Message: chat.note}, nil
}

// chatOutcome reports conversation reconciliation. degraded distinguishes a
// real failure from the deliberate skip when the fortune teller is unknown.
type chatOutcome struct {
	ready    bool
	degraded bool
	note     string
}

// reconcileConversation guarantees a chat channel exists between the customer
// and the fortune teller, creating one only when absent. Everything here is
// best-effort: the order already stands and is never rolled back. The scan is
// a query against a snapshot; uniqueness under concurrent sessions is the
// backend's to enforce.
func (s *Service) reconcileConversation(ctx context.Context, session Session, requestID, fortuneTellerUserID string) chatOutcome {
	if fortuneTellerUserID == "" {
		// Soft dependency: no resolvable fortune teller means no chat, but the
		// booking still counts as successful.
		return chatOutcome{note: "fortune teller unknown, chat setup skipped"}
	}
	conversations, err := s.backend.Conversations(ctx, session.Token)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Conversation lookup failed after order")
		return chatOutcome{degraded: true, note: "could not set up the chat room"}
	}
	for _, c := range conversations {
		if c.HasParticipant(fortuneTellerUserID) {
			return chatOutcome{ready: true} // Already satisfied, nothing to do
		}
	}
	if _, err := s.backend.CreateConversation(ctx, session.Token, []string{fortuneTellerUserID}); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Conversation creation failed after order")
		return chatOutcome{degraded: true, note: "could not set up the chat room"}
	}
	return chatOutcome{ready: true}
}

// record appends the attempt to the journal. Journal trouble is logged and
// swallowed; it never changes a checkout result.
func (s *Service) record(quote Quote, in ConfirmInput, outcome, orderID string, chatReady bool, message string) {
	if s.journal == nil {
		return
	}
	rec := domain.CheckoutRecord{
		RequestID:  in.RequestID,
		CustomerID: quote.CustomerID,
		ServiceID:  quote.ServiceID,
		TimeslotID: in.TimeslotID,
		Price:      quote.Price,
		Balance:    quote.Balance,
		Outcome:    outcome,
		OrderID:    orderID,
		ChatReady:  chatReady,
		Message:    message,
	}
	if err := s.journal.Record(context.Background(), &rec); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": in.RequestID,
			"outcome":    outcome,
			"error":      err.Error(),
		}).Warn("Failed to journal checkout attempt")
	}
}
