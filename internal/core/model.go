package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is the operational bucket an email is routed to
type Category string

const (
	CategoryMeetings   Category = "Meetings"
	CategoryDeliveries Category = "Deliveries"
	CategoryImportant  Category = "Important"
	CategoryPhishing   Category = "Phishing"
)

// Categories lists every category in reporting order
var Categories = []Category{
	CategoryMeetings,
	CategoryDeliveries,
	CategoryImportant,
	CategoryPhishing,
}

// ParseCategory maps a free-form category label onto a Category.
// It accepts the labels used by the legacy categorizer and by LLM responses.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meetings", "meeting":
		return CategoryMeetings, true
	case "deliveries", "delivery":
		return CategoryDeliveries, true
	case "important", "importance":
		return CategoryImportant, true
	case "phishing", "phishing/spam/scam", "spam", "scam":
		return CategoryPhishing, true
	}
	return "", false
}

// RiskLevel is the security verdict attached to every result
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Priority is an optional hint supplied by the caller, usually from headers
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Elevated reports whether the hint marks the message as high or urgent
func (p Priority) Elevated() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Email represents an email message
type Email struct {
	MessageID   string
	Subject     string
	Body        string
	Sender      string
	SenderEmail string
	To          []string
	Priority    Priority
	Headers     map[string][]string
}

// ClassificationResult is the verdict produced by the rule engine or a delegate
type ClassificationResult struct {
	Category         Category
	Confidence       float64
	SecurityRisk     RiskLevel
	RiskScore        int
	Metadata         Metadata
	Reasoning        string
	ThreatIndicators []string
}

type resultJSON struct {
	Category         Category          `json:"category"`
	Confidence       float64           `json:"confidence"`
	SecurityRisk     RiskLevel         `json:"security_risk"`
	RiskScore        int               `json:"risk_score"`
	Metadata         map[string]string `json:"metadata"`
	Reasoning        string            `json:"reasoning"`
	ThreatIndicators []string          `json:"threat_indicators,omitempty"`
}

// MarshalJSON renders the metadata variant as its string-keyed view
func (r ClassificationResult) MarshalJSON() ([]byte, error) {
	md := r.Metadata
	if md == nil {
		md = NoMetadata{}
	}
	return json.Marshal(resultJSON{
		Category:         r.Category,
		Confidence:       r.Confidence,
		SecurityRisk:     r.SecurityRisk,
		RiskScore:        r.RiskScore,
		Metadata:         md.Fields(),
		Reasoning:        r.Reasoning,
		ThreatIndicators: r.ThreatIndicators,
	})
}

// UnmarshalJSON rebuilds the metadata variant from the category
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	category, ok := ParseCategory(string(raw.Category))
	if !ok {
		return fmt.Errorf("unknown category %q", raw.Category)
	}
	*r = ClassificationResult{
		Category:         category,
		Confidence:       raw.Confidence,
		SecurityRisk:     raw.SecurityRisk,
		RiskScore:        raw.RiskScore,
		Metadata:         MetadataFromFields(category, raw.Metadata),
		Reasoning:        raw.Reasoning,
		ThreatIndicators: raw.ThreatIndicators,
	}
	return nil
}

// TriageResult wraps a verdict with provenance for a single analysis run
type TriageResult struct {
	Result       *ClassificationResult `json:"result"`
	Source       string                `json:"source"`
	ProcessingID string                `json:"processing_id"`
	AnalyzedAt   time.Time             `json:"analyzed_at"`
}

// CacheEntry stores a delegate verdict keyed by message fingerprint
type CacheEntry struct {
	Key       string
	Result    *ClassificationResult
	ModelUsed string
	CreatedAt time.Time
	ExpiresAt time.Time
}
