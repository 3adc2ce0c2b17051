package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fortune_gateway/internal/checkout"
	"fortune_gateway/internal/middleware"
	"fortune_gateway/internal/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

type fakeCheckout struct {
	loadFn    func(ctx context.Context, session checkout.Session, serviceID string) (checkout.Quote, error)
	confirmFn func(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error)
}

func (f fakeCheckout) LoadContext(ctx context.Context, session checkout.Session, serviceID string) (checkout.Quote, error) {
	if f.loadFn == nil {
		return checkout.Quote{}, nil
	}
	return f.loadFn(ctx, session, serviceID)
}

func (f fakeCheckout) Confirm(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error) {
	if f.confirmFn == nil {
		return checkout.Result{}, nil
	}
	return f.confirmFn(ctx, session, in)
}

type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = b
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	c.invalidated = append(c.invalidated, keys...)
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func newCheckoutRouter(svc CheckoutService, cache Cache) http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	grp := r.Group("/checkout")
	grp.Use(middleware.JWTAuthMiddleware(testSecret))
	grp.GET("/:service_id", PreviewCheckoutHandler(svc, cache))
	grp.POST("", ConfirmCheckoutHandler(svc, cache))
	return r
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, role, testSecret)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func TestPreviewRequiresAuthentication(t *testing.T) {
	router := newCheckoutRouter(fakeCheckout{}, newFakeCache())
	req := httptest.NewRequest(http.MethodGet, "/checkout/svc-1", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestPreviewReturnsAffordabilityVerdict(t *testing.T) {
	svc := fakeCheckout{
		loadFn: func(ctx context.Context, session checkout.Session, serviceID string) (checkout.Quote, error) {
			return checkout.Quote{
				CustomerID: session.UserID,
				ServiceID:  serviceID,
				Price:      500,
				Balance:    499.99,
			}, nil
		},
	}
	router := newCheckoutRouter(svc, newFakeCache())
	req := httptest.NewRequest(http.MethodGet, "/checkout/svc-1", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "cust-1", "customer"))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		CanAfford bool `json:"can_afford"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.CanAfford {
		t.Fatal("expected can_afford=false for balance 499.99 vs price 500")
	}
}

func TestPreviewServesCachedQuote(t *testing.T) {
	cache := newFakeCache()
	loads := 0
	svc := fakeCheckout{
		loadFn: func(ctx context.Context, session checkout.Session, serviceID string) (checkout.Quote, error) {
			loads++
			return checkout.Quote{CustomerID: session.UserID, ServiceID: serviceID, Price: 100, Balance: 200}, nil
		},
	}
	router := newCheckoutRouter(svc, cache)
	token := bearerToken(t, "cust-1", "customer")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/checkout/svc-1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one backend load, got %d", loads)
	}
}

func confirmRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"service_id": "svc-1", "timeslot_id": "slot-1"})
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestConfirmStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"authentication", checkout.ErrAuthenticationRequired, http.StatusUnauthorized},
		{"service missing", checkout.ErrServiceNotFound, http.StatusNotFound},
		{"insufficient funds", checkout.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"in flight", checkout.ErrCheckoutInFlight, http.StatusConflict},
		{"order failed", &checkout.OrderCreationError{Cause: context.DeadlineExceeded}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := fakeCheckout{
				confirmFn: func(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error) {
					return checkout.Result{}, tc.err
				},
			}
			router := newCheckoutRouter(svc, newFakeCache())
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, confirmRequest(t, bearerToken(t, "cust-1", "customer")))
			if resp.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestConfirmSuccessInvalidatesPreview(t *testing.T) {
	cache := newFakeCache()
	svc := fakeCheckout{
		confirmFn: func(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error) {
			return checkout.Result{OrderID: "order-1", ChatReady: true}, nil
		},
	}
	router := newCheckoutRouter(svc, cache)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, confirmRequest(t, bearerToken(t, "cust-1", "customer")))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "checkout:quote:cust-1:svc-1" {
		t.Fatalf("expected the preview cache entry to be invalidated, got %v", cache.invalidated)
	}
}

func TestConfirmReportsDegradedChat(t *testing.T) {
	svc := fakeCheckout{
		confirmFn: func(ctx context.Context, session checkout.Session, in checkout.ConfirmInput) (checkout.Result, error) {
			return checkout.Result{OrderID: "order-1", ChatReady: false, Message: "could not set up the chat room"}, nil
		},
	}
	router := newCheckoutRouter(svc, newFakeCache())
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, confirmRequest(t, bearerToken(t, "cust-1", "customer")))
	if resp.Code != http.StatusOK {
		t.Fatalf("degraded chat must still be a success, got %d", resp.Code)
	}
	var body struct {
		ChatReady bool   `json:"chat_ready"`
		Note      string `json:"note"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.ChatReady || body.Note == "" {
		t.Fatalf("expected degraded chat report, got %+v", body)
	}
}

func TestConfirmRejectsBadPayload(t *testing.T) {
	router := newCheckoutRouter(fakeCheckout{}, newFakeCache())
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte(`{"service_id":""}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "cust-1", "customer"))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
