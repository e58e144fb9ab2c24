// Package llmresponse builds the categorization prompt shared by every
// delegate and turns free-form model output into a ClassificationResult.
package llmresponse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

const (
	defaultConfidence = 0.7
	defaultReasoning  = "AI categorization"
)

// SystemPrompt is sent as the system role where the provider supports one
const SystemPrompt = "You are an email triage system. Respond only with JSON."

const promptFormat = `Categorize this email into one of these categories: Meetings, Deliveries, Important, Phishing/Spam/Scam

Email Details:
From: %s
To: %s
Subject: %s
Body:
%s

Provide response in JSON format:
{
  "category": "category_name",
  "confidence": 0.0-1.0,
  "reasoning": "why this category",
  "metadata": {
    "meeting_time": "if applicable",
    "meeting_date": "if applicable",
    "platform": "if applicable",
    "tracking_number": "if applicable",
    "carrier": "if applicable",
    "status": "if applicable",
    "urgency_level": "if applicable"
  }
}

Respond only with the JSON object and nothing else.`

// Prompt formats the user prompt. body must already be prepared for the model.
func Prompt(email *core.Email, body string) string {
	from := email.SenderEmail
	if email.Sender != "" {
		from = fmt.Sprintf("%s <%s>", email.Sender, email.SenderEmail)
	}

	to := ""
	if len(email.To) > 0 {
		to = email.To[0]
		if len(email.To) > 1 {
			to += fmt.Sprintf(" and %d others", len(email.To)-1)
		}
	}

	return fmt.Sprintf(promptFormat, from, to, email.Subject, body)
}

type response struct {
	Category   string         `json:"category"`
	Confidence *float64       `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Metadata   map[string]any `json:"metadata"`
}

// Parse extracts the outermost JSON object from text. Failures wrap
// core.ErrMalformedResponse.
func Parse(text string) (*core.ClassificationResult, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", core.ErrMalformedResponse)
	}

	var resp response
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedResponse, err)
	}

	category, ok := core.ParseCategory(resp.Category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", core.ErrMalformedResponse, resp.Category)
	}

	confidence := defaultConfidence
	if resp.Confidence != nil {
		confidence = min(max(*resp.Confidence, 0), 1)
	}

	reasoning := strings.TrimSpace(resp.Reasoning)
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	return &core.ClassificationResult{
		Category:     category,
		Confidence:   confidence,
		SecurityRisk: core.RiskLow,
		Metadata:     core.MetadataFromFields(category, metadataFields(resp.Metadata)),
		Reasoning:    reasoning,
	}, nil
}

// metadataFields keeps scalar values and drops the placeholders models echo back
func metadataFields(raw map[string]any) map[string]string {
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		switch val := v.(type) {
		case string:
			s = strings.TrimSpace(val)
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			continue
		}
		switch strings.ToLower(s) {
		case "", "if applicable", "n/a", "none", "null", "unknown":
			continue
		}
		fields[k] = s
	}
	return fields
}

// Unavailable wraps a transport or quota failure from provider
func Unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrServiceUnavailable, provider, err)
}
