package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/rules"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/mikey/email-triage/internal/vip"
)

// TriageFactory creates the rule engine, message parsing and the triage service
type TriageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTriageFactory creates a new TriageFactory
func NewTriageFactory(cfg *config.Config, logger *zap.Logger) *TriageFactory {
	return &TriageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TriageFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateParser creates a MIME parser
func (f *TriageFactory) CreateParser(textProcessor *utils.TextProcessor) *mime.Parser {
	return mime.NewParser(textProcessor, f.logger)
}

// CreateEngine builds the rule engine with configured keyword overrides
func (f *TriageFactory) CreateEngine() *rules.Engine {
	rulesConfig := f.cfg.GetRules()
	return rules.NewEngine(rules.NewRuleset(rules.Overrides{
		MeetingKeywords:    rulesConfig.MeetingKeywords,
		DeliveryKeywords:   rulesConfig.DeliveryKeywords,
		CarrierSenders:     rulesConfig.CarrierSenders,
		ImportanceKeywords: rulesConfig.ImportanceKeywords,
		ShortenerHosts:     rulesConfig.ShortenerHosts,
		InfoRequestTerms:   rulesConfig.InfoRequestTerms,
	}))
}

// CreateVIPChecker creates the VIP sender checker
func (f *TriageFactory) CreateVIPChecker() *vip.Checker {
	domains := f.cfg.GetTriage().VIPDomains
	if len(domains) > 0 {
		f.logger.Info("Loaded VIP domains", zap.Strings("domains", domains))
	}
	return vip.NewChecker(domains, f.logger)
}

// CreateService assembles the triage service
func (f *TriageFactory) CreateService(
	engine *rules.Engine,
	delegate core.Categorizer,
	cache core.CacheRepository,
	vipChecker *vip.Checker,
	cacheEnabled bool,
) *core.TriageService {
	return core.NewTriageService(
		engine,
		delegate,
		cache,
		vipChecker,
		f.logger,
		cacheEnabled,
		f.cfg.GetCache().TTL,
		f.cfg.GetTriage().BatchConcurrency,
	)
}
