package factory

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.TriageService
	parser  *mime.Parser
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.TriageService, parser *mime.Parser) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		parser:  parser,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverConfig := f.cfg.GetServer()

	switch serverConfig.FilterType {
	case "postfix":
		return filter.NewPostfixFilter(
			f.service,
			f.parser,
			f.logger,
			serverConfig.ListenAddress,
			serverConfig.BlockPhishing,
			filter.HeaderNames{
				Category:     serverConfig.Headers.Category,
				Confidence:   serverConfig.Headers.Confidence,
				SecurityRisk: serverConfig.Headers.SecurityRisk,
				Reason:       serverConfig.Headers.Reason,
				Threats:      serverConfig.Headers.Threats,
			},
			serverConfig.PostfixAddr,
			serverConfig.SubjectPrefix,
			serverConfig.Timeout,
		), nil
	case "cli":
		return filter.NewCliFilter(f.service, f.logger, os.Stdout, f.cfg.GetBool("cli.verbose")), nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverConfig.FilterType)
	}
}
