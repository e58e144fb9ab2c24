// Package mbox streams raw messages out of mbox archives.
package mbox

import (
	"errors"
	"fmt"
	"io"
	"os"

	mboxlib "github.com/emersion/go-mbox"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/ports"
)

// Reader yields the raw messages of one mbox archive in order
type Reader struct {
	mr     *mboxlib.Reader
	closer io.Closer
	logger *zap.Logger
	index  int
}

var _ ports.MessageSource = (*Reader)(nil)

// NewReader reads an archive from r
func NewReader(r io.Reader, logger *zap.Logger) *Reader {
	return &Reader{
		mr:     mboxlib.NewReader(r),
		logger: logger,
	}
}

// Open reads the archive at path; the caller must Close it
func Open(path string, logger *zap.Logger) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}
	r := NewReader(file, logger)
	r.closer = file
	return r, nil
}

// Next returns the next raw message, or io.EOF at the end of the archive
func (r *Reader) Next() ([]byte, error) {
	msg, err := r.mr.NextMessage()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("message %d: %w", r.index, err)
	}

	raw, err := io.ReadAll(msg)
	if err != nil {
		return nil, fmt.Errorf("message %d read: %w", r.index, err)
	}
	r.logger.Debug("Read mbox message", zap.Int("index", r.index), zap.Int("size", len(raw)))
	r.index++
	return raw, nil
}

// Close releases the archive file opened by Open
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
