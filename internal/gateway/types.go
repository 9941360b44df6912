// Package gateway implements the client for the external payment provider.
//
// The provider exposes three endpoints: a token grant, a payment-session
// creation call that yields a hosted checkout URL, and a verification call
// that reports the outcome of a payment in the provider's own vocabulary
// (bank status "Success"/"Failed"/"Cancel"). This file defines the typed
// request/response payloads exchanged at that boundary; the dynamic map
// building style of similar integrations is deliberately avoided so the
// boundary is validated by the compiler.
package gateway

import "time"

// PaymentRequest is the payload for creating a payment session. Amount and
// OrderID tie the session to one rental request; the customer fields come
// from the tenant's profile.
type PaymentRequest struct {
	Amount          float64 `json:"amount"`
	OrderID         string  `json:"order_id"`
	Currency        string  `json:"currency"`
	CustomerName    string  `json:"customer_name"`
	CustomerAddress string  `json:"customer_address"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerCity    string  `json:"customer_city"`
	ClientIP        string  `json:"client_ip"`
}

// PaymentSession is the provider's answer to a session creation call.
// PaymentID is the provider's identifier for this payment attempt and the
// key later passed to Verify.
type PaymentSession struct {
	PaymentID         string  `json:"sp_order_id"`
	TransactionStatus string  `json:"transaction_status"`
	CheckoutURL       string  `json:"checkout_url"`
	Amount            float64 `json:"amount,string,omitempty"`
	Currency          string  `json:"currency,omitempty"`
	Message           string  `json:"message,omitempty"`
}

// Usable reports whether the session can be handed to a customer: the
// provider must have allocated a payment id and a checkout URL.
func (s *PaymentSession) Usable() bool {
	return s != nil && s.PaymentID != "" && s.CheckoutURL != ""
}

// VerifiedPayment is one verification record. The provider returns a list of
// zero or one of these per payment id. BankStatus is the provider's outcome
// vocabulary; the caller maps it onto the request status enum.
type VerifiedPayment struct {
	PaymentID         string  `json:"order_id"`
	BankStatus        string  `json:"bank_status"`
	GatewayCode       string  `json:"sp_code"`
	GatewayMessage    string  `json:"sp_message"`
	Method            string  `json:"method"`
	DateTime          string  `json:"date_time"` // provider format: 2006-01-02 15:04:05
	TransactionStatus string  `json:"transaction_status"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

// DateTimeLayout is the timestamp layout used in verification records.
const DateTimeLayout = "2006-01-02 15:04:05"

// Time parses the record's timestamp. It returns nil when the provider sent
// no timestamp or one outside the documented layout.
func (v *VerifiedPayment) Time() *time.Time {
	if v.DateTime == "" {
		return nil
	}
	t, err := time.Parse(DateTimeLayout, v.DateTime)
	if err != nil {
		return nil
	}
	return &t
}

// tokenResponse is the provider's answer to the token grant call.
type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	StoreID   int    `json:"store_id"`
	ExpiresIn int    `json:"expires_in"` // seconds
	Code      string `json:"sp_code"`
	Message   string `json:"message"`
}

// createPayload is the wire form of a session creation call: the merchant
// credentials plus the PaymentRequest fields.
type createPayload struct {
	Token     string `json:"token"`
	StoreID   int    `json:"store_id"`
	Prefix    string `json:"prefix"`
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
	PaymentRequest
}

// verifyPayload is the wire form of a verification call.
type verifyPayload struct {
	PaymentID string `json:"order_id"`
}
