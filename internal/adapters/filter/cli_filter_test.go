package filter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/rules"
)

func TestCliFilter_ProcessEmail(t *testing.T) {
	logger := zap.NewNop()
	service := core.NewTriageService(rules.NewEngine(nil), nil, nil, nil, logger, false, 0, 1)

	var out bytes.Buffer
	f := NewCliFilter(service, logger, &out, false)

	result, err := f.ProcessEmail(context.Background(), &core.Email{
		Subject:     "Your package is out for delivery",
		Body:        "Tracking number: 1234567890123",
		Sender:      "FedEx",
		SenderEmail: "tracking@fedex.com",
	})
	require.NoError(t, err)
	assert.Equal(t, core.CategoryDeliveries, result.Result.Category)

	report := out.String()
	assert.Contains(t, report, "From: FedEx <tracking@fedex.com>")
	assert.Contains(t, report, "Category: Deliveries")
	assert.Contains(t, report, "  carrier: FEDEX")
	assert.Contains(t, report, "  tracking_number: 1234567890123")
	assert.Contains(t, report, "Source: rules")
	assert.NotContains(t, report, "Processing ID")
}

func TestCliFilter_CanceledContext(t *testing.T) {
	logger := zap.NewNop()
	service := core.NewTriageService(rules.NewEngine(nil), nil, nil, nil, logger, false, 0, 1)
	f := NewCliFilter(service, logger, &bytes.Buffer{}, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.ProcessEmail(ctx, &core.Email{})
	assert.ErrorIs(t, err, context.Canceled)
}
