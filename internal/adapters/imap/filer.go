// Package imap files triaged messages into per-category IMAP folders.
package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
)

// Options configures the IMAP connection and target folders
type Options struct {
	Address      string
	Username     string
	Password     string
	Insecure     bool
	FolderPrefix string
	DryRun       bool
}

// Filer appends raw messages to "<prefix>/<Category>". The connection is
// opened on first use; in dry-run mode nothing is sent.
type Filer struct {
	opts   Options
	logger *zap.Logger

	mu      sync.Mutex
	client  *imapclient.Client
	ensured map[string]bool
	counts  map[core.Category]int
}

var _ ports.Filer = (*Filer)(nil)

// NewFiler creates a new Filer
func NewFiler(opts Options, logger *zap.Logger) (*Filer, error) {
	if !opts.DryRun && opts.Address == "" {
		return nil, fmt.Errorf("imap address is empty")
	}
	return &Filer{
		opts:    opts,
		logger:  logger,
		ensured: make(map[string]bool),
		counts:  make(map[core.Category]int),
	}, nil
}

// Folder returns the mailbox a category is filed into
func (f *Filer) Folder(category core.Category) string {
	if f.opts.FolderPrefix == "" {
		return string(category)
	}
	return f.opts.FolderPrefix + "/" + string(category)
}

// File appends raw to the category folder
func (f *Filer) File(ctx context.Context, category core.Category, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := f.Folder(category)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.opts.DryRun {
		f.counts[category]++
		f.logger.Debug("Dry-run filing", zap.String("mailbox", target), zap.Int("size", len(raw)))
		return nil
	}

	if f.client == nil {
		client, err := f.dial()
		if err != nil {
			return err
		}
		f.client = client
	}

	if !f.ensured[target] {
		if err := f.ensureMailbox(target); err != nil {
			return err
		}
		f.ensured[target] = true
	}

	if err := f.appendMessage(target, raw); err != nil {
		return fmt.Errorf("file into %s: %w", target, err)
	}
	f.counts[category]++
	return nil
}

// Counts returns the number of messages filed per category
func (f *Filer) Counts() map[core.Category]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[core.Category]int, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out
}

// Close logs out and closes the connection if one was opened
func (f *Filer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	if err := f.client.Logout().Wait(); err != nil {
		f.logger.Warn("IMAP logout failed", zap.Error(err))
	}
	err := f.client.Close()
	f.client = nil
	return err
}

func (f *Filer) dial() (*imapclient.Client, error) {
	options := &imapclient.Options{}

	var (
		client *imapclient.Client
		err    error
	)
	if f.opts.Insecure {
		client, err = imapclient.DialInsecure(f.opts.Address, options)
	} else {
		host, _, splitErr := net.SplitHostPort(f.opts.Address)
		if splitErr != nil {
			host = f.opts.Address
		}
		options.TLSConfig = &tls.Config{ServerName: host}
		client, err = imapclient.DialTLS(f.opts.Address, options)
	}
	if err != nil {
		return nil, fmt.Errorf("dial imap %s: %w", f.opts.Address, err)
	}

	if err := client.Login(f.opts.Username, f.opts.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}

	f.logger.Debug("IMAP connection established",
		zap.String("address", f.opts.Address),
		zap.String("user", f.opts.Username))
	return client, nil
}

func (f *Filer) ensureMailbox(target string) error {
	if err := f.client.Create(target, nil).Wait(); err != nil {
		var respErr *imapv2.Error
		if errors.As(err, &respErr) && respErr.Code == imapv2.ResponseCodeAlreadyExists {
			return nil
		}
		return fmt.Errorf("ensure mailbox %s: %w", target, err)
	}
	f.logger.Info("IMAP mailbox created", zap.String("mailbox", target))
	return nil
}

func (f *Filer) appendMessage(target string, raw []byte) error {
	cmd := f.client.Append(target, int64(len(raw)), nil)

	remaining := raw
	for len(remaining) > 0 {
		n, err := cmd.Write(remaining)
		if err != nil {
			_ = cmd.Close()
			return fmt.Errorf("append write: %w", err)
		}
		if n == 0 {
			_ = cmd.Close()
			return fmt.Errorf("append write: wrote 0 bytes")
		}
		remaining = remaining[n:]
	}

	if err := cmd.Close(); err != nil {
		return fmt.Errorf("append close: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("append wait: %w", err)
	}
	return nil
}
