package rules

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikey/email-triage/internal/core"
)

// Input is the normalized view of an email shared by every rule
type Input struct {
	// Text is subject, body and sender fields lower-cased and space-joined
	Text string
	// Sender is the lower-cased display name and address
	Sender string
	// Priority is the caller supplied hint
	Priority core.Priority
}

// Normalize builds the analysis input. A nil email is treated as empty.
func Normalize(email *core.Email) Input {
	if email == nil {
		email = &core.Email{}
	}
	// A Caser carries state between calls and must not be shared
	lower := cases.Lower(language.Und)
	return Input{
		Text:     lower.String(strings.Join([]string{email.Subject, email.Body, email.Sender, email.SenderEmail}, " ")),
		Sender:   lower.String(strings.TrimSpace(email.Sender + " " + email.SenderEmail)),
		Priority: core.Priority(strings.ToLower(string(email.Priority))),
	}
}
