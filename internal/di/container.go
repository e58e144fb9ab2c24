package di

import (
	"go.uber.org/dig"

	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/rules"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/mikey/email-triage/internal/vip"
)

// BuildContainer creates and configures the daemon's dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideTriage registers everything needed to build a *core.TriageService.
// It expects *config.Config and *zap.Logger to be provided already.
func provideTriage(container *dig.Container) error {
	// Register factories
	for _, constructor := range []interface{}{
		factory.NewTriageFactory,
		factory.NewLLMFactory,
		factory.NewCacheFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register text processing and parsing
	if err := container.Provide(func(f *factory.TriageFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TriageFactory, tp *utils.TextProcessor) *mime.Parser {
		return f.CreateParser(tp)
	}); err != nil {
		return err
	}

	// Register rule engine and VIP checker
	if err := container.Provide(func(f *factory.TriageFactory) *rules.Engine {
		return f.CreateEngine()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TriageFactory) *vip.Checker {
		return f.CreateVIPChecker()
	}); err != nil {
		return err
	}

	// Register delegate
	if err := container.Provide(func(f *factory.LLMFactory) (core.Categorizer, error) {
		return f.CreateCategorizer()
	}); err != nil {
		return err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}

	// Register triage service
	return container.Provide(func(
		f *factory.TriageFactory,
		cf *factory.CacheFactory,
		engine *rules.Engine,
		delegate core.Categorizer,
		cache core.CacheRepository,
		vipChecker *vip.Checker,
	) *core.TriageService {
		return f.CreateService(engine, delegate, cache, vipChecker, cf.IsCacheEnabled())
	})
}
