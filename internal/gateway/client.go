package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"
)

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.Status, e.Message)
}

// ErrNoSession is returned when the provider accepted the call but did not
// allocate a usable payment session.
var ErrNoSession = errors.New("gateway returned no usable session")

// Client manages communication with the payment provider's API. It is safe
// for concurrent use; the bearer token is cached until shortly before its
// expiry and refreshed on demand.
//
// No retries are performed here: callers own the retry policy, and the
// HTTP client's timeout bounds every call.
type Client struct {
	BaseURL    *url.URL
	Username   string
	Password   string
	Prefix     string // merchant prefix stamped on provider-side order ids
	ReturnURL  string
	CancelURL  string
	HTTPClient *http.Client

	mu       sync.Mutex
	token    string
	storeID  int
	tokenExp time.Time
}

// NewClient initializes a new payment gateway client. baseURL must point at
// the provider's API root (e.g. the sandbox or production host).
func NewClient(baseURL, username, password, prefix, returnURL, cancelURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    parsed,
		Username:   username,
		Password:   password,
		Prefix:     prefix,
		ReturnURL:  returnURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreatePayment creates a payment session for the given request. On success
// the returned session carries the provider's payment id, the transaction
// status, and the hosted checkout URL. ErrNoSession is returned when the
// provider's answer lacks either.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	token, storeID, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := createPayload{
		Token:          token,
		StoreID:        storeID,
		Prefix:         c.Prefix,
		ReturnURL:      c.ReturnURL,
		CancelURL:      c.CancelURL,
		PaymentRequest: req,
	}

	var session PaymentSession
	if err := c.post(ctx, "api/secret-pay", token, payload, &session); err != nil {
		return nil, err
	}
	if !session.Usable() {
		return nil, ErrNoSession
	}
	return &session, nil
}

// Verify queries the outcome of a payment session. The provider returns a
// list with zero or one records for the given payment id; an empty list
// means the provider knows nothing about it (yet).
func (c *Client) Verify(ctx context.Context, paymentID string) ([]VerifiedPayment, error) {
	token, _, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var records []VerifiedPayment
	if err := c.post(ctx, "api/verification", token, verifyPayload{PaymentID: paymentID}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// bearerToken returns a cached token, refreshing it when it is absent or
// within a minute of expiry.
func (c *Client) bearerToken(ctx context.Context) (string, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp.Add(-time.Minute)) {
		return c.token, c.storeID, nil
	}

	var tok tokenResponse
	grant := map[string]string{"username": c.Username, "password": c.Password}
	if err := c.post(ctx, "api/get_token", "", grant, &tok); err != nil {
		return "", 0, err
	}
	if tok.Token == "" {
		return "", 0, &APIError{Status: http.StatusOK, Message: "token grant returned no token: " + tok.Message}
	}

	c.token = tok.Token
	c.storeID = tok.StoreID
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, c.storeID, nil
}

// post builds, executes, and decodes one JSON API call.
func (c *Client) post(ctx context.Context, reqPath, token string, body, out any) error {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, reqPath)

	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
