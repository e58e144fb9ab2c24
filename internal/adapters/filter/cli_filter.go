package filter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

// CliFilter triages a single message and prints a human readable report
type CliFilter struct {
	service *core.TriageService
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.TriageService, logger *zap.Logger, out io.Writer, verbose bool) *CliFilter {
	return &CliFilter{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// ProcessEmail processes an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.TriageResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.SenderEmail))

	fmt.Fprintf(f.out, "=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", formatSender(email))
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to triage email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Category: %s\n", result.Result.Category)
	fmt.Fprintf(f.out, "Confidence: %.2f\n", result.Result.Confidence)
	fmt.Fprintf(f.out, "Reasoning: %s\n", result.Result.Reasoning)
	fmt.Fprintf(f.out, "Security risk: %s (score %d)\n", result.Result.SecurityRisk, result.Result.RiskScore)
	if len(result.Result.ThreatIndicators) > 0 {
		fmt.Fprintf(f.out, "Threats: %s\n", strings.Join(result.Result.ThreatIndicators, ", "))
	}

	fields := result.Result.Metadata.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(f.out, "  %s: %s\n", k, fields[k])
	}

	fmt.Fprintf(f.out, "Source: %s\n", result.Source)
	if f.verbose {
		fmt.Fprintf(f.out, "Processing ID: %s\n", result.ProcessingID)
		fmt.Fprintf(f.out, "Processing time: %v\n", duration)
	}

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

func formatSender(email *core.Email) string {
	if email.Sender == "" {
		return email.SenderEmail
	}
	return fmt.Sprintf("%s <%s>", email.Sender, email.SenderEmail)
}
