package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBookingReceipt(t *testing.T) {
	m := NewSMTPMailer("localhost", 2525, "", "", "Movie Booking <no-reply@example.com>")

	data := map[string]any{
		"bookingID":  "6f1c1d9e-0000-4000-8000-000000000001",
		"name":       "Jane",
		"movieTitle": "Heat",
		"date":       "2025-06-01",
		"slot":       "evening",
		"seats":      []string{"A1", "A2"},
		"totalPrice": "24.00",
		"status":     "pending",
	}

	msg, err := m.render("jane@example.com", "booking_receipt.tmpl", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"jane@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your booking for Heat"}, msg.GetHeader("Subject"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	m := NewSMTPMailer("localhost", 2525, "", "", "no-reply@example.com")

	_, err := m.render("jane@example.com", "missing.tmpl", nil)
	assert.Error(t, err)
}

func TestMockMailerRecordsEmails(t *testing.T) {
	m := NewMockMailer()

	require.NoError(t, m.Send("jane@example.com", "booking_receipt.tmpl", nil))
	assert.Len(t, m.GetSentEmails(), 1)

	m.Reset()
	assert.Empty(t, m.GetSentEmails())
}
