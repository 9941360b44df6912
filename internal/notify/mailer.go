// Package notify implements the outbound email side of the request
// lifecycle: status-change notices to the other party and payment
// confirmations to the tenant.
//
// Delivery is synchronous and failure is surfaced to the caller; the service
// layer deliberately runs these sends inside its business transaction so a
// lifecycle change that cannot be announced is rolled back. A non-2xx
// provider response counts as a delivery failure.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mailer sends lifecycle emails through SendGrid.
type Mailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	sandbox   bool

	// amounts are rendered with grouping separators ("5,000.00")
	printer *message.Printer
}

// NewMailer constructs a Mailer. sandbox enables SendGrid's sandbox mode so
// staging environments validate payloads without delivering mail.
func NewMailer(apiKey, fromName, fromEmail string, sandbox bool) *Mailer {
	return &Mailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		sandbox:   sandbox,
		printer:   message.NewPrinter(language.English),
	}
}

// SendStatusChangeEmail notifies a user that a request they participate in
// changed status.
func (m *Mailer) SendStatusChangeEmail(ctx context.Context, toEmail, requestID, newStatus, listingID, location string) error {
	subject := fmt.Sprintf("Request Status Update - %s", requestID)
	plain := fmt.Sprintf(
		"Your request for the listing %s, located at %s, has been updated.\nCurrent Status: %s\nRequest ID: %s",
		listingID, location, newStatus, requestID,
	)
	html := fmt.Sprintf(statusChangeHTML, listingID, location, newStatus, requestID)
	return m.send(ctx, toEmail, subject, plain, html)
}

// SendPaymentConfirmationEmail confirms a processed rent payment to the
// tenant.
func (m *Mailer) SendPaymentConfirmationEmail(ctx context.Context, toEmail, requestID, paymentID, listingID string, amount float64) error {
	subject := fmt.Sprintf("Payment Confirmation - %s", requestID)
	amountStr := m.printer.Sprintf("%.2f", amount)
	plain := fmt.Sprintf(
		"Your payment for the listing %s has been successfully processed.\nRequest ID: %s\nPayment ID: %s\nAmount Paid: %s",
		listingID, requestID, paymentID, amountStr,
	)
	html := fmt.Sprintf(paymentConfirmationHTML, listingID, requestID, paymentID, amountStr)
	return m.send(ctx, toEmail, subject, plain, html)
}

// send builds and submits one message; any outcome other than a 2xx
// provider response is a delivery failure.
func (m *Mailer) send(ctx context.Context, toEmail, subject, plain, html string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail("", toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send email to %s: provider responded %d", toEmail, resp.StatusCode)
	}
	return nil
}

const statusChangeHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Request Status Update</h2>
  <p>Dear User,</p>
  <p>Your request for the listing <strong>%s, located at %s</strong> has been updated.</p>
  <p>Current Status: <span style="color: blue;">%s</span></p>
  <p>Request ID: %s</p>
  <p>If you have any questions, please contact our support team.</p>
  <p>Best regards,<br>NestHunt Team</p>
</div>`

const paymentConfirmationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Payment Confirmation</h2>
  <p>Dear User,</p>
  <p>Your payment for the listing <strong>%s</strong> has been successfully processed.</p>
  <p>Payment Details:</p>
  <ul>
    <li>Request ID: %s</li>
    <li>Payment ID: %s</li>
    <li>Amount Paid: $%s</li>
  </ul>
  <p>Thank you for your payment. Enjoy your new home!</p>
  <p>Best regards,<br>NestHunt Team</p>
</div>`
