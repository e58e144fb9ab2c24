package llmresponse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-triage/internal/core"
)

func TestParse(t *testing.T) {
	text := "Sure! Here is the result:\n```json\n" + `{
  "category": "Deliveries",
  "confidence": 0.92,
  "reasoning": "Shipping notification",
  "metadata": {"tracking_number": "1Z999AA10123456784", "carrier": "UPS", "meeting_time": "if applicable", "status": null}
}` + "\n```"

	res, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryDeliveries, res.Category)
	assert.Equal(t, 0.92, res.Confidence)
	assert.Equal(t, core.RiskLow, res.SecurityRisk)
	assert.Equal(t, "Shipping notification", res.Reasoning)
	assert.Equal(t, core.DeliveryMetadata{TrackingNumber: "1Z999AA10123456784", Carrier: "UPS"}, res.Metadata)
}

func TestParse_Defaults(t *testing.T) {
	res, err := Parse(`{"category": "Phishing/Spam/Scam"}`)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryPhishing, res.Category)
	assert.Equal(t, 0.7, res.Confidence)
	assert.Equal(t, "AI categorization", res.Reasoning)
	assert.Equal(t, core.NoMetadata{}, res.Metadata)
}

func TestParse_ClampsConfidence(t *testing.T) {
	res, err := Parse(`{"category": "meeting", "confidence": 3}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Confidence)

	res, err = Parse(`{"category": "meeting", "confidence": -1}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no json", "I think this is a meeting"},
		{"broken json", `{"category": "Meetings",`},
		{"reversed braces", "} nothing {"},
		{"unknown category", `{"category": "Newsletter", "confidence": 0.9}`},
		{"wrong type", `{"category": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, core.ErrMalformedResponse)
		})
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(&core.Email{
		Subject:     "Lunch",
		Sender:      "Jane",
		SenderEmail: "jane@example.com",
		To:          []string{"a@example.com", "b@example.com", "c@example.com"},
	}, "prepared body")

	assert.Contains(t, p, "From: Jane <jane@example.com>")
	assert.Contains(t, p, "To: a@example.com and 2 others")
	assert.Contains(t, p, "Subject: Lunch")
	assert.Contains(t, p, "prepared body")
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable("openai", cause)

	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "openai")
}
