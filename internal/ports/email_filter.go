package ports

import (
	"context"

	"github.com/mikey/email-triage/internal/core"
)

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail triages an email and returns the verdict with provenance
	ProcessEmail(ctx context.Context, email *core.Email) (*core.TriageResult, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
