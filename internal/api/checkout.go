package api

import (
	"context"                           // Context for cache operations
	"errors"                            // Sentinel matching
	"fortune_gateway/internal/checkout" // Checkout workflow
	"fortune_gateway/internal/middleware"
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Cache is the JSON read-cache the handlers use. *utils.Cache implements it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CheckoutService is the slice of the workflow the handlers call.
// *checkout.Service implements it; tests substitute fakes.
type CheckoutService interface {
	LoadContext(ctx context.Context, session checkout.Session, serviceID string) (checkout.Quote, error)
	Confirm(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error)
}

// quoteCacheKey is the cache key for one customer/service checkout preview.
func quoteCacheKey(customerID, serviceID string) string {
	return "checkout:quote:" + customerID + ":" + serviceID
}

// ConfirmRequest is the confirm payload from the mobile app
type ConfirmRequest struct {
	ServiceID  string `json:"service_id" binding:"required"`  // Service being booked
	TimeslotID string `json:"timeslot_id" binding:"required"` // Selected time slot
}

// PreviewCheckoutHandler returns the checkout context for a service: balance,
// price and the affordability verdict the app uses to enable or block the
// confirm control. Served from cache when a fresh snapshot exists.
func PreviewCheckoutHandler(svc CheckoutService, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSession(c) // Get session from context
		// Check if the session exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		serviceID := c.Param("service_id")
		if serviceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing service id"})
			return
		}
		cacheKey := quoteCacheKey(session.UserID, serviceID)
		var quote checkout.Quote
		found, err := cache.GetJSON(context.Background(), cacheKey, &quote)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"quote": quote, "can_afford": quote.CanAfford(), "cached": true})
			return
		}
		// Not cached: load balance and service detail from the backend
		quote, err = svc.LoadContext(c.Request.Context(), session, serviceID)
		if err != nil {
			writeCheckoutError(c, err)
			return
		}
		// Cache the snapshot briefly; a confirmed order invalidates it
		_ = cache.SetJSON(context.Background(), cacheKey, quote, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"quote": quote, "can_afford": quote.CanAfford(), "cached": false})
	}
}

// ConfirmCheckoutHandler runs the full checkout workflow. On success the order
// always stands; chat_ready reports whether conversation setup also succeeded.
func ConfirmCheckoutHandler(svc CheckoutService, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSession(c) // Get session from context
		// Check if the session exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		var req ConfirmRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		result, err := svc.Confirm(c.Request.Context(), session, checkout.ConfirmInput{
			ServiceID:  req.ServiceID,
			TimeslotID: req.TimeslotID,
			RequestID:  middleware.GetRequestID(c),
		})
		if err != nil {
			writeCheckoutError(c, err)
			return
		}
		// The order changed the balance upstream; drop the stale preview
		_ = cache.Invalidate(context.Background(), quoteCacheKey(session.UserID, req.ServiceID))
		c.JSON(http.StatusOK, gin.H{
			"message":    "Booking confirmed",
			"order_id":   result.OrderID,
			"chat_ready": result.ChatReady,
			"note":       result.Message,
		})
	}
}

// writeCheckoutError maps the workflow taxonomy onto HTTP statuses. Causes go
// to logs; clients get generic messages.
func writeCheckoutError(c *gin.Context, err error) {
	var orderErr *checkout.OrderCreationError
	switch {
	case errors.Is(err, checkout.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, checkout.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
	case errors.Is(err, checkout.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout already in progress"})
	case errors.As(err, &orderErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create the order"})
	default:
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		}).Error("Checkout failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Checkout failed"})
	}
}
