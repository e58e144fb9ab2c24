// Package report renders triage results and batch statistics for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mikey/email-triage/internal/core"
)

// Format selects the output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Result is the serialized view of a triage result
type Result struct {
	MessageID        string            `json:"message_id,omitempty" yaml:"message_id,omitempty"`
	Subject          string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Category         core.Category     `json:"category" yaml:"category"`
	Confidence       float64           `json:"confidence" yaml:"confidence"`
	SecurityRisk     core.RiskLevel    `json:"security_risk" yaml:"security_risk"`
	RiskScore        int               `json:"risk_score" yaml:"risk_score"`
	Metadata         map[string]string `json:"metadata" yaml:"metadata"`
	Reasoning        string            `json:"reasoning" yaml:"reasoning"`
	ThreatIndicators []string          `json:"threat_indicators,omitempty" yaml:"threat_indicators,omitempty"`
	Source           string            `json:"source" yaml:"source"`
	ProcessingID     string            `json:"processing_id" yaml:"processing_id"`
	AnalyzedAt       time.Time         `json:"analyzed_at" yaml:"analyzed_at"`
}

// NewResult builds the view; email may be nil
func NewResult(email *core.Email, tr *core.TriageResult) Result {
	r := Result{
		Source:       tr.Source,
		ProcessingID: tr.ProcessingID,
		AnalyzedAt:   tr.AnalyzedAt,
	}
	if email != nil {
		r.MessageID = email.MessageID
		r.Subject = email.Subject
	}
	if res := tr.Result; res != nil {
		r.Category = res.Category
		r.Confidence = res.Confidence
		r.SecurityRisk = res.SecurityRisk
		r.RiskScore = res.RiskScore
		r.Reasoning = res.Reasoning
		r.ThreatIndicators = res.ThreatIndicators
		r.Metadata = map[string]string{}
		if res.Metadata != nil {
			r.Metadata = res.Metadata.Fields()
		}
	}
	return r
}

// Batch is the serialized view of an import run
type Batch struct {
	Stats    core.BatchStats       `json:"stats" yaml:"stats"`
	Filed    map[core.Category]int `json:"filed,omitempty" yaml:"filed,omitempty"`
	Skipped  int                   `json:"skipped" yaml:"skipped"`
	Messages []Result              `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Encode writes v as JSON or YAML
func Encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %s is not a structured encoding", format)
}

// WriteBatch renders an import run
func WriteBatch(w io.Writer, format Format, b Batch) error {
	if format != FormatText {
		return Encode(w, format, b)
	}

	for _, m := range b.Messages {
		fmt.Fprintf(w, "%-10s %.2f %-6s %s\n", m.Category, m.Confidence, m.SecurityRisk, m.Subject)
	}
	if len(b.Messages) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d\n", b.Stats.Total)
	fmt.Fprintf(w, "High confidence: %d\n", b.Stats.HighConfidenceCount)
	if b.Skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", b.Skipped)
	}
	for _, c := range core.Categories {
		fmt.Fprintf(w, "%-10s count=%d avg_confidence=%.2f\n", c, b.Stats.CountByCategory[c], b.Stats.AvgConfidenceByCategory[c])
	}

	if len(b.Filed) > 0 {
		categories := make([]string, 0, len(b.Filed))
		for c := range b.Filed {
			categories = append(categories, string(c))
		}
		sort.Strings(categories)
		fmt.Fprintln(w, "Filed:")
		for _, c := range categories {
			fmt.Fprintf(w, "  %s: %d\n", c, b.Filed[core.Category(c)])
		}
	}
	return nil
}
