package ports

import (
	"context"

	"github.com/mikey/email-triage/internal/core"
)

// MessageSource yields raw RFC 5322 messages one at a time.
// Next returns io.EOF once the source is exhausted.
type MessageSource interface {
	Next() ([]byte, error)
}

// Filer stores a raw message under its triage category
type Filer interface {
	File(ctx context.Context, category core.Category, raw []byte) error
	Close() error
}
