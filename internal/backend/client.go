package backend

import (
	"bytes"                           // Request body buffers
	"context"                         // Request-scoped cancellation
	"encoding/json"                   // JSON encoding/decoding
	"fmt"                             // Error wrapping
	"fortune_gateway/internal/domain" // Domain models
	"io"                              // Response body reading
	"net/http"                        // HTTP client
	"net/url"                         // Query escaping
	"strings"                         // Base URL trimming
	"time"                            // Per-call timeouts
)

// Client talks to the remote marketplace/accounting backend. The backend owns
// every entity; this client only reads and submits on behalf of the session
// whose bearer token it is handed.
type Client struct {
	baseURL string        // Backend base URL, no trailing slash
	http    *http.Client  // Underlying HTTP client
	timeout time.Duration // Per-call timeout
}

// NewClient creates a backend client with the given base URL and call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second // Sensible default
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// WalletBalance fetches the wallet of the given owner.
func (c *Client) WalletBalance(ctx context.Context, token, ownerID string) (domain.Wallet, error) {
	var wallet domain.Wallet
	path := "/wallet-balance?owner=" + url.QueryEscape(ownerID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &wallet); err != nil {
		return domain.Wallet{}, fmt.Errorf("fetch wallet balance: %w", err)
	}
	return wallet, nil
}

// Service fetches the detail of a single marketplace service.
func (c *Client) Service(ctx context.Context, token, serviceID string) (domain.Service, error) {
	var svc domain.Service
	if err := c.do(ctx, http.MethodGet, "/service/"+url.PathEscape(serviceID), token, nil, &svc); err != nil {
		return domain.Service{}, fmt.Errorf("fetch service %s: %w", serviceID, err)
	}
	return svc, nil
}

// CreateOrder submits a booking. The backend assigns the authoritative order id.
func (c *Client) CreateOrder(ctx context.Context, token string, in domain.OrderInput) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/order", token, in, &order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// Conversations lists the conversations visible to the session.
func (c *Client) Conversations(ctx context.Context, token string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", token, nil, &conversations); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// CreateConversation opens a chat channel with the given participants.
// The backend adds the session's own user to the participant set.
func (c *Client) CreateConversation(ctx context.Context, token string, participantIDs []string) (domain.Conversation, error) {
	payload := struct {
		ParticipantIDs []string `json:"participantUserIds"`
	}{ParticipantIDs: participantIDs}
	var conversation domain.Conversation
	if err := c.do(ctx, http.MethodPost, "/conversation", token, payload, &conversation); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// do performs one backend call and decodes the JSON response into out.
// Status codes are mapped onto the package sentinels so callers can use errors.Is.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Status: resp.StatusCode, Body: string(snippet)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
