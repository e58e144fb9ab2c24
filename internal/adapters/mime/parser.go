// Package mime turns raw RFC 5322 messages into core.Email values and
// rewrites their headers for delivery.
package mime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// ErrEmptyMessage is returned for input without any content
var ErrEmptyMessage = errors.New("empty message")

// Parser extracts triage fields from raw messages
type Parser struct {
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewParser creates a new Parser
func NewParser(textProcessor *utils.TextProcessor, logger *zap.Logger) *Parser {
	return &Parser{
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Parse reads a complete message. Missing fields are left empty; an unknown
// charset is logged and the undecoded text is used.
func (p *Parser) Parse(r io.Reader) (*core.Email, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return p.ParseBytes(raw)
}

// ParseBytes is Parse over an in-memory message
func (p *Parser) ParseBytes(raw []byte) (*core.Email, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyMessage
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		if !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		p.logger.Warn("Unknown charset in message", zap.Error(err))
	}
	defer mr.Close()

	email := &core.Email{Headers: make(map[string][]string)}
	p.readHeader(&mr.Header, email)

	email.Body, err = p.readBody(mr)
	if err != nil {
		return nil, err
	}

	return email, nil
}

func (p *Parser) readHeader(h *mail.Header, email *core.Email) {
	fields := h.Fields()
	for fields.Next() {
		key := fields.Key()
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		email.Headers[key] = append(email.Headers[key], value)
	}

	if subject, err := h.Subject(); err == nil {
		email.Subject = subject
	} else {
		email.Subject = h.Get("Subject")
	}

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		email.Sender = from[0].Name
		email.SenderEmail = from[0].Address
	} else {
		email.SenderEmail = strings.TrimSpace(h.Get("From"))
	}

	if to, err := h.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}

	if id, err := h.MessageID(); err == nil {
		email.MessageID = id
	}

	email.Priority = PriorityFromHeader(h.Header)
}

// readBody concatenates text/plain parts, falling back to stripped text/html
func (p *Parser) readBody(mr *mail.Reader) (string, error) {
	var plain, html strings.Builder

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				p.logger.Debug("Skipping undecodable part", zap.Error(err))
				continue
			}
			// Keep what was read before a malformed part
			if plain.Len() > 0 || html.Len() > 0 {
				p.logger.Debug("Stopped reading message parts", zap.Error(err))
				break
			}
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := h.ContentType()
		if err != nil {
			contentType = "text/plain"
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			if _, err := io.Copy(&plain, part.Body); err != nil {
				continue
			}
			plain.WriteString("\n")
		case strings.HasPrefix(contentType, "text/html"):
			if _, err := io.Copy(&html, part.Body); err != nil {
				continue
			}
			html.WriteString("\n")
		}
	}

	if plain.Len() > 0 {
		return strings.TrimSpace(plain.String()), nil
	}
	return p.textProcessor.CollapseWhitespace(p.textProcessor.StripHTML(html.String())), nil
}

// PriorityFromHeader maps X-Priority, Importance and Priority to a hint
func PriorityFromHeader(h message.Header) core.Priority {
	if v := strings.TrimSpace(h.Get("X-Priority")); v != "" {
		switch v[0] {
		case '1', '2':
			return core.PriorityHigh
		}
	}
	if strings.EqualFold(strings.TrimSpace(h.Get("Importance")), "high") {
		return core.PriorityHigh
	}
	switch strings.ToLower(strings.TrimSpace(h.Get("Priority"))) {
	case "urgent":
		return core.PriorityUrgent
	}
	return ""
}
