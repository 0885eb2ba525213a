package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
)

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

var ErrEmptyID = errors.New("id must not be empty")

// Client talks to the marketplace REST API. Every call is bounded by the
// configured abort timeout (10s by default); this engine never waits on a
// dead backend.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a REST client for the given base URL and bearer token.
func NewClient(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		http:    &http.Client{},
		log:     log,
	}
}

// GetBooking fetches the authoritative booking state.
func (c *Client) GetBooking(ctx context.Context, bookingID string) (contracts.BookingPayload, error) {
	if strings.TrimSpace(bookingID) == "" {
		return contracts.BookingPayload{}, ErrEmptyID
	}
	var booking contracts.BookingPayload
	err := c.do(ctx, http.MethodGet, "/api/bookings/"+bookingID, nil, &booking)
	return booking, err
}

// GetWorker fetches a worker record, used as the last fallback when the
// booking payload carries no usable worker info.
func (c *Client) GetWorker(ctx context.Context, workerID string) (contracts.WorkerBrief, error) {
	if strings.TrimSpace(workerID) == "" {
		return contracts.WorkerBrief{}, ErrEmptyID
	}
	var worker contracts.WorkerBrief
	err := c.do(ctx, http.MethodGet, "/api/workers/"+workerID, nil, &worker)
	return worker, err
}

// UpdateWorkerLocation mirrors the worker's position over REST for clients
// that missed the socket push.
func (c *Client) UpdateWorkerLocation(ctx context.Context, payload contracts.LocationUpdatePayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/workers/update-location", payload, nil)
}

// UpdateWorkerStatus reports worker availability over REST.
func (c *Client) UpdateWorkerStatus(ctx context.Context, status contracts.WorkerStatus) error {
	payload := contracts.WorkerStatusPayload{Status: status}
	if err := payload.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/workers/update-status", payload, nil)
}

// UpdateBookingPayment records the chosen payment method on a booking.
func (c *Client) UpdateBookingPayment(ctx context.Context, bookingID, method string) error {
	if strings.TrimSpace(bookingID) == "" {
		return ErrEmptyID
	}
	body := map[string]string{"paymentMethod": method}
	return c.do(ctx, http.MethodPatch, "/api/bookings/"+bookingID+"/payment", body, nil)
}

// ListNotifications returns the caller's notification list.
func (c *Client) ListNotifications(ctx context.Context) ([]contracts.NotificationPayload, error) {
	var list []contracts.NotificationPayload
	err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &list)
	return list, err
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if strings.TrimSpace(notificationID) == "" {
		return ErrEmptyID
	}
	return c.do(ctx, http.MethodPatch, "/api/notifications/"+notificationID+"/read", nil, nil)
}

// InitiatePayment starts a gateway redirect flow. The response is the
// gateway's opaque JSON; this engine does not interpret it.
func (c *Client) InitiatePayment(ctx context.Context, gateway, bookingID string, amount float64) (json.RawMessage, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, ErrEmptyID
	}
	body := map[string]any{"bookingId": bookingID, "amount": amount}
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/payments/"+gateway+"/initiate", body, &out)
	return out, err
}

// VerifyPayment confirms a completed gateway flow.
func (c *Client) VerifyPayment(ctx context.Context, gateway string, params map[string]string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/payments/"+gateway+"/verify", params, &out)
	return out, err
}

// do runs one bounded request/response cycle.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
