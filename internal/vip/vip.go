package vip

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a sender belongs to a VIP domain
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new VIP checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
		if domain != "" {
			normalizedDomains = append(normalizedDomains, domain)
		}
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized VIP checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsVIP checks the sender's domain, or any parent domain, against the list.
// The address may be bare or in "Name <user@host>" form.
func (c *Checker) IsVIP(address string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	domain := domainOf(address)
	if domain == "" {
		return false
	}

	for _, vip := range c.domains {
		if domain == vip || strings.HasSuffix(domain, "."+vip) {
			if c.logger != nil {
				c.logger.Debug("Sender is VIP",
					zap.String("domain", domain),
					zap.String("email", address))
			}
			return true
		}
	}

	return false
}

func domainOf(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.LastIndexByte(address, '<'); i >= 0 {
		address = strings.TrimSuffix(address[i+1:], ">")
	}
	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(address[at+1:]))
}
