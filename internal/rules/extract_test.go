package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/email-triage/internal/core"
)

func TestMeetingTime(t *testing.T) {
	rs := DefaultRuleset()

	tests := []struct {
		text string
		want string
	}{
		{"call at 2:30pm today", "2:30pm"},
		{"call at 2:30 pm today", "2:30 pm"},
		{"call at 3pm", "3pm"},
		{"call at 11 am", "11 am"},
		{"sync at 14:00", "14:00"},
		{"no time here", ""},
		{"the 3 amigos", ""},
		{"standup at 3pmest", ""},
		{"standup at 3pm est", "3pm"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.meetingTime(tt.text))
		})
	}
}

func TestMeetingDate(t *testing.T) {
	rs := DefaultRuleset()
	assert.Equal(t, "today", rs.meetingDate("today or tomorrow"))
	assert.Equal(t, "tomorrow", rs.meetingDate("monday or tomorrow"))
	assert.Equal(t, "friday", rs.meetingDate("see you friday"))
	assert.Empty(t, rs.meetingDate("see you on saturday"))
}

func TestMeetingPlatform(t *testing.T) {
	rs := DefaultRuleset()

	tests := []struct {
		text string
		want string
	}{
		{"join https://zoom.us/j/123", "zoom"},
		{"join via zoom", "zoom"},
		{"https://teams.microsoft.com/l/meetup", "teams"},
		{"a microsoft teams call", "teams"},
		{"https://meet.google.com/abc-defg", "meet"},
		{"join on google meet", "meet"},
		{"company.webex.com/meet", "webex"},
		{"zoomed in on the chart", ""},
		{"in the office", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.meetingPlatform(tt.text))
		})
	}
}

func TestTrackingNumber(t *testing.T) {
	rs := DefaultRuleset()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"international", "item rr123456789cn shipped", "RR123456789CN"},
		{"ups", "tracking 1z999aa10123456784", "1Z999AA10123456784"},
		{"generic long", "number 1234567890123", "1234567890123"},
		{"ten digits", "ref 1234567890", "1234567890"},
		{"specific before generic", "ref 1234567890 and rr123456789cn", "RR123456789CN"},
		{"too short", "order 12345", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.trackingNumber(tt.text))
		})
	}
}

func TestCarrier(t *testing.T) {
	rs := DefaultRuleset()
	assert.Equal(t, "FEDEX", rs.carrier("shipped via fedex ground"))
	assert.Equal(t, "USPS", rs.carrier("usps priority mail"))
	assert.Empty(t, rs.carrier("local courier"))
}

func TestDeliveryStatus(t *testing.T) {
	assert.Equal(t, "delivered", deliveryStatus("shipped on monday, delivered today"))
	assert.Equal(t, "out_for_delivery", deliveryStatus("shipped and now out for delivery"))
	assert.Equal(t, "shipped", deliveryStatus("your order has shipped"))
	assert.Empty(t, deliveryStatus("order received"))
}

func TestNormalize(t *testing.T) {
	in := Normalize(nil)
	assert.Empty(t, in.Sender)
	assert.Empty(t, in.Priority)

	in = Normalize(&core.Email{
		Subject:     "Hello",
		Body:        "WORLD",
		Sender:      "Jane DOE",
		SenderEmail: "Jane@Example.COM",
		Priority:    "HIGH",
	})
	assert.Equal(t, "hello world jane doe jane@example.com", in.Text)
	assert.Equal(t, "jane doe jane@example.com", in.Sender)
	assert.Equal(t, core.PriorityHigh, in.Priority)
}
