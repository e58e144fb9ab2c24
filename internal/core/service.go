package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result sources recorded on TriageResult
const (
	SourceRules = "rules"
	SourceCache = "cache"
)

// VIPChecker reports whether a sender address belongs to a VIP domain
type VIPChecker interface {
	IsVIP(address string) bool
}

// TriageService runs the rule engine and, when configured, an external
// categorization delegate behind a verdict cache
type TriageService struct {
	classifier   Classifier
	delegate     Categorizer
	cache        CacheRepository
	vip          VIPChecker
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	concurrency  int
}

// NewTriageService creates a new triage service
func NewTriageService(
	classifier Classifier,
	delegate Categorizer,
	cache CacheRepository,
	vip VIPChecker,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	concurrency int,
) *TriageService {
	if delegate == nil {
		delegate = NoopCategorizer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &TriageService{
		classifier:   classifier,
		delegate:     delegate,
		cache:        cache,
		vip:          vip,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		concurrency:  concurrency,
	}
}

// AnalyzeEmail classifies a single email. The engine verdict is computed
// first; a Phishing verdict is final and the delegate is never asked to
// overrule it. The only error returned is context cancellation.
func (s *TriageService) AnalyzeEmail(ctx context.Context, email *Email) (*TriageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = s.withVIPPriority(email)

	verdict := s.classifier.Classify(email)
	source := SourceRules

	if verdict.Category != CategoryPhishing {
		if res, src, ok := s.consultDelegate(ctx, email, verdict); ok {
			verdict, source = res, src
		}
	}

	result := &TriageResult{
		Result:       verdict,
		Source:       source,
		ProcessingID: uuid.NewString(),
		AnalyzedAt:   time.Now(),
	}

	s.logger.Debug("Email triaged",
		zap.String("processing_id", result.ProcessingID),
		zap.String("message_id", email.MessageID),
		zap.String("category", string(verdict.Category)),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("security_risk", string(verdict.SecurityRisk)),
		zap.String("source", source))

	return result, nil
}

// ClassifyBatch analyzes emails in parallel and returns results in input order
func (s *TriageService) ClassifyBatch(ctx context.Context, emails []*Email) ([]*TriageResult, error) {
	results := make([]*TriageResult, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, email := range emails {
		i, email := i, email
		g.Go(func() error {
			res, err := s.AnalyzeEmail(gctx, email)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// consultDelegate returns the cached or freshly computed delegate verdict.
// ok is false when the engine verdict must be kept.
func (s *TriageService) consultDelegate(ctx context.Context, email *Email, ruled *ClassificationResult) (*ClassificationResult, string, bool) {
	if _, disabled := s.delegate.(NoopCategorizer); disabled {
		return nil, "", false
	}

	key := Fingerprint(email)
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil && entry.Result != nil {
			s.logger.Debug("Cache hit for message", zap.String("fingerprint", key))
			return inheritSecurity(entry.Result, ruled), SourceCache, true
		}
	}

	res, err := s.delegate.Categorize(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrDelegateDisabled):
		return nil, "", false
	case errors.Is(err, ErrServiceUnavailable):
		s.logger.Warn("Categorization service unavailable, using rule verdict",
			zap.String("model", s.delegate.Model()),
			zap.Error(err))
		return nil, "", false
	case errors.Is(err, ErrMalformedResponse):
		s.logger.Warn("Malformed categorization response, using rule verdict",
			zap.String("model", s.delegate.Model()),
			zap.Error(err))
		return nil, "", false
	default:
		s.logger.Error("Categorization failed, using rule verdict",
			zap.String("model", s.delegate.Model()),
			zap.Error(err))
		return nil, "", false
	}
	if res == nil {
		return nil, "", false
	}

	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Result:    res,
			ModelUsed: s.delegate.Model(),
			CreatedAt: now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return inheritSecurity(res, ruled), s.delegate.Model(), true
}

func (s *TriageService) withVIPPriority(email *Email) *Email {
	if email == nil {
		return &Email{}
	}
	if s.vip == nil || email.Priority != "" || !s.vip.IsVIP(email.SenderEmail) {
		return email
	}
	promoted := *email
	promoted.Priority = PriorityHigh
	s.logger.Debug("VIP sender, raising priority", zap.String("sender", email.SenderEmail))
	return &promoted
}

// inheritSecurity copies the engine's security assessment onto a delegate verdict
func inheritSecurity(res, ruled *ClassificationResult) *ClassificationResult {
	out := *res
	if out.Metadata == nil {
		out.Metadata = NoMetadata{}
	}
	out.SecurityRisk = ruled.SecurityRisk
	out.RiskScore = ruled.RiskScore
	out.ThreatIndicators = append([]string(nil), ruled.ThreatIndicators...)
	if len(out.ThreatIndicators) == 0 {
		out.ThreatIndicators = nil
	}
	return &out
}

// Fingerprint is a stable digest of the fields that drive classification
func Fingerprint(email *Email) string {
	if email == nil {
		email = &Email{}
	}
	h := sha256.New()
	for _, f := range []string{email.Subject, email.Body, email.Sender, email.SenderEmail, string(email.Priority)} {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(f))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
