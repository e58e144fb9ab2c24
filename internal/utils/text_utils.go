package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	tagPattern        = regexp.MustCompile(`<[^<]+?>`)
	blockPattern      = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	whitespacePattern = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLinesPattern = regexp.MustCompile(`\n\s*\n+`)
)

const truncationMarker = "\n[... Content truncated due to size limits ...]"

// TextProcessor provides utilities for preparing message text for a categorization prompt
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// StripHTML removes tags, script and style blocks and decodes entities
func (tp *TextProcessor) StripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return html.UnescapeString(text)
	}
	text = blockPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	return html.UnescapeString(text)
}

// CollapseWhitespace squeezes runs of blanks and empty lines
func (tp *TextProcessor) CollapseWhitespace(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]

	// Drop a partial trailing rune
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText sanitizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}

// PrepareBody turns a raw message body into prompt text
func (tp *TextProcessor) PrepareBody(body string, maxSize int) string {
	return tp.ProcessText(tp.CollapseWhitespace(tp.StripHTML(body)), maxSize)
}
