// Package rules implements the deterministic email classifier: a weighted
// security assessment followed by a first-match category cascade.
package rules

import "github.com/mikey/email-triage/internal/core"

// Engine classifies emails against a read-only Ruleset. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	rules *Ruleset
}

// NewEngine creates an engine; a nil ruleset selects DefaultRuleset
func NewEngine(rs *Ruleset) *Engine {
	if rs == nil {
		rs = DefaultRuleset()
	}
	return &Engine{rules: rs}
}

// Classify always returns a complete result
func (e *Engine) Classify(email *core.Email) *core.ClassificationResult {
	in := Normalize(email)

	assessment := e.rules.Assess(in)
	if assessment.IsThreat() {
		return &core.ClassificationResult{
			Category:         core.CategoryPhishing,
			Confidence:       assessment.Confidence(),
			SecurityRisk:     core.RiskHigh,
			RiskScore:        assessment.Score,
			Metadata:         core.NoMetadata{},
			Reasoning:        assessment.Reasoning(),
			ThreatIndicators: assessment.Indicators,
		}
	}

	res := e.cascade(in)
	assessment.annotate(res)
	return res
}

func (e *Engine) cascade(in Input) *core.ClassificationResult {
	for _, detect := range cascade {
		if res := detect(e.rules, in); res != nil {
			return res
		}
	}
	return defaultResult()
}

var _ core.Classifier = (*Engine)(nil)
