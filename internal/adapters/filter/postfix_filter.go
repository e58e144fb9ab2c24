package filter

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/core"
)

// ErrorHeader is added when a message could not be triaged
const ErrorHeader = "X-Triage-Error"

// HeaderNames are the header keys written onto triaged messages
type HeaderNames struct {
	Category     string
	Confidence   string
	SecurityRisk string
	Reason       string
	Threats      string
}

// ForwardFunc re-injects a message into the mail system
type ForwardFunc func(sender string, recipients []string, data []byte) error

// PostfixFilter implements a Postfix content filter. Every accepted message is
// tagged with its triage verdict and handed back to Postfix.
type PostfixFilter struct {
	service       *core.TriageService
	parser        *mime.Parser
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	blockPhishing bool
	headers       HeaderNames
	postfixAddr   string
	subjectPrefix string
	timeout       time.Duration
	forward       ForwardFunc
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.TriageService,
	parser *mime.Parser,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	headers HeaderNames,
	postfixAddr string,
	subjectPrefix string,
	timeout time.Duration,
) *PostfixFilter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &PostfixFilter{
		service:       service,
		parser:        parser,
		logger:        logger,
		listenAddr:    listenAddr,
		blockPhishing: blockPhishing,
		headers:       headers,
		postfixAddr:   postfixAddr,
		subjectPrefix: subjectPrefix,
		timeout:       timeout,
	}
	f.forward = f.sendToPostfix
	return f
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.listenAddr, err)
	}
	return f.serve(ln)
}

func (f *PostfixFilter) serve(ln net.Listener) error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = ln.Addr().String()
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.server.Addr))

	go func() {
		if err := f.server.Serve(ln); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail triages an already parsed email
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.TriageResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// handle triages one raw message and forwards the tagged copy. A non-nil
// SMTPError means the message is refused.
func (f *PostfixFilter) handle(sender string, recipients []string, raw []byte) error {
	email, err := f.parser.ParseBytes(raw)
	if err != nil {
		f.logger.Warn("Failed to parse message, forwarding untagged",
			zap.String("sender", sender),
			zap.Error(err))
		return f.deliver(sender, recipients, raw, []mime.Field{{Key: ErrorHeader, Value: err.Error()}}, "")
	}
	if len(email.To) == 0 {
		email.To = recipients
	}
	if email.SenderEmail == "" {
		email.SenderEmail = sender
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to triage message",
			zap.String("sender", sender),
			zap.Error(err))
		return f.deliver(sender, recipients, raw, []mime.Field{{Key: ErrorHeader, Value: err.Error()}}, "")
	}

	phishing := result.Result.Category == core.CategoryPhishing
	if phishing && f.blockPhishing {
		f.logger.Info("Rejecting phishing message",
			zap.String("sender", sender),
			zap.String("processing_id", result.ProcessingID),
			zap.Int("risk_score", result.Result.RiskScore),
			zap.Strings("threats", result.Result.ThreatIndicators))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (risk score: %d)", result.Result.RiskScore),
		}
	}

	prefix := ""
	if phishing {
		prefix = f.subjectPrefix
	}
	if err := f.deliver(sender, recipients, raw, f.verdictFields(result), prefix); err != nil {
		return err
	}

	f.logger.Info("Processed message",
		zap.String("sender", sender),
		zap.String("processing_id", result.ProcessingID),
		zap.String("category", string(result.Result.Category)),
		zap.Float64("confidence", result.Result.Confidence),
		zap.String("security_risk", string(result.Result.SecurityRisk)),
		zap.String("source", result.Source))

	return nil
}

func (f *PostfixFilter) verdictFields(result *core.TriageResult) []mime.Field {
	fields := []mime.Field{
		{Key: f.headers.Category, Value: string(result.Result.Category)},
		{Key: f.headers.Confidence, Value: fmt.Sprintf("%.2f", result.Result.Confidence)},
		{Key: f.headers.SecurityRisk, Value: string(result.Result.SecurityRisk)},
		{Key: f.headers.Reason, Value: result.Result.Reasoning},
	}
	if len(result.Result.ThreatIndicators) > 0 {
		fields = append(fields, mime.Field{Key: f.headers.Threats, Value: strings.Join(result.Result.ThreatIndicators, ", ")})
	}

	out := fields[:0]
	for _, fl := range fields {
		if fl.Key != "" {
			out = append(out, fl)
		}
	}
	return out
}

// deliver rewrites the header and forwards. A header that cannot be
// rewritten is forwarded as received.
func (f *PostfixFilter) deliver(sender string, recipients []string, raw []byte, fields []mime.Field, subjectPrefix string) error {
	data, err := mime.Rewrite(raw, fields, subjectPrefix)
	if err != nil {
		f.logger.Warn("Failed to rewrite message header", zap.Error(err))
		data = raw
	}

	if err := f.forward(sender, recipients, data); err != nil {
		f.logger.Error("Failed to send message back to Postfix",
			zap.String("sender", sender),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary failure forwarding message",
		}
	}
	return nil
}

// sendToPostfix sends the processed message back to Postfix using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", f.postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	return s.filter.handle(s.sender, s.recipients, raw)
}

func (s *smtpSession) Logout() error {
	return nil
}
