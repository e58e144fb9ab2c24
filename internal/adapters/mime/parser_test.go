package mime

import (
	"strings"
	"testing"

	"github.com/emersion/go-message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

func newTestParser() *Parser {
	logger := zap.NewNop()
	return NewParser(utils.NewTextProcessor(logger), logger)
}

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestParse_Plain(t *testing.T) {
	raw := crlf(`From: "FedEx Tracking" <tracking@fedex.com>
To: alice@example.com, Bob <bob@example.com>
Subject: Your package is out for delivery
Message-ID: <abc123@fedex.com>
X-Priority: 1 (Highest)
Content-Type: text/plain; charset=utf-8

Tracking number: 1234567890123
`)

	email, err := newTestParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Your package is out for delivery", email.Subject)
	assert.Equal(t, "FedEx Tracking", email.Sender)
	assert.Equal(t, "tracking@fedex.com", email.SenderEmail)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, email.To)
	assert.Equal(t, "abc123@fedex.com", email.MessageID)
	assert.Equal(t, core.PriorityHigh, email.Priority)
	assert.Equal(t, "Tracking number: 1234567890123", email.Body)
	assert.Equal(t, []string{"Your package is out for delivery"}, email.Headers["Subject"])
}

func TestParse_EncodedSubjectAndMultipart(t *testing.T) {
	raw := crlf(`From: manager@company.com
Subject: =?UTF-8?B?VGVhbSBTeW5jIE1lZXRpbmc=?=
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset=utf-8

Join us via Zoom at 3pm
--inner
Content-Type: text/html; charset=utf-8

<p>Join us via <b>Zoom</b> at 3pm</p>
--inner--
--outer
Content-Type: application/pdf
Content-Disposition: attachment; filename="agenda.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQK
--outer--
`)

	email, err := newTestParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Team Sync Meeting", email.Subject)
	assert.Equal(t, "manager@company.com", email.SenderEmail)
	assert.Equal(t, "Join us via Zoom at 3pm", email.Body)
	assert.Empty(t, email.Priority)
}

func TestParse_HTMLOnly(t *testing.T) {
	raw := crlf(`From: shop@example.com
Subject: Order update
Content-Type: text/html; charset=utf-8

<html><body><h1>Your order</h1><p>has   shipped</p></body></html>
`)

	email, err := newTestParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.NotContains(t, email.Body, "<")
	assert.Contains(t, email.Body, "Your order")
	assert.Contains(t, email.Body, "has shipped")
}

func TestParse_QuotedPrintable(t *testing.T) {
	raw := crlf(`From: a@example.com
Subject: qp
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Caf=C3=A9 meeting tomorrow
`)

	email, err := newTestParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Café meeting tomorrow", email.Body)
}

func TestParse_Empty(t *testing.T) {
	_, err := newTestParser().Parse(strings.NewReader("  \r\n"))
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestParse_UnparseableFrom(t *testing.T) {
	raw := crlf(`From: not an address
Subject: hi

body
`)

	email, err := newTestParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "not an address", email.SenderEmail)
	assert.Empty(t, email.Sender)
}

func TestPriorityFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		expect core.Priority
	}{
		{"x-priority highest", "X-Priority", "1 (Highest)", core.PriorityHigh},
		{"x-priority high", "X-Priority", "2", core.PriorityHigh},
		{"x-priority normal", "X-Priority", "3 (Normal)", ""},
		{"importance", "Importance", "High", core.PriorityHigh},
		{"importance low", "Importance", "low", ""},
		{"priority urgent", "Priority", "urgent", core.PriorityUrgent},
		{"none", "X-Other", "1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h message.Header
			h.Set(tt.key, tt.value)
			assert.Equal(t, tt.expect, PriorityFromHeader(h))
		})
	}
}
