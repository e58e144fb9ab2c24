package mime

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// Field is a header to add to a message
type Field struct {
	Key   string
	Value string
}

// Rewrite prepends fields to the header and, when subjectPrefix is set and not
// already present, prefixes the subject. The body is copied unchanged.
func Rewrite(raw []byte, fields []Field, subjectPrefix string) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	th, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	h := mail.Header{Header: message.Header{Header: th}}

	// Add prepends, so walk backwards to keep the given order on top
	for i := len(fields) - 1; i >= 0; i-- {
		h.Del(fields[i].Key)
		h.Add(fields[i].Key, sanitizeHeaderValue(fields[i].Value))
	}

	if subjectPrefix != "" {
		subject, err := h.Subject()
		if err != nil {
			subject = h.Get("Subject")
		}
		if !strings.HasPrefix(subject, subjectPrefix) {
			h.SetSubject(subjectPrefix + subject)
		}
	}

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, h.Header.Header); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	if _, err := io.Copy(&out, br); err != nil {
		return nil, fmt.Errorf("failed to copy message body: %w", err)
	}
	return out.Bytes(), nil
}

// sanitizeHeaderValue keeps a value on a single header line
func sanitizeHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
