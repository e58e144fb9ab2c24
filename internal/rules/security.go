package rules

import (
	"math"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

const noThreatsReasoning = "No threats detected"

// Assessment is the outcome of scoring an input against the signature table
type Assessment struct {
	Score      int
	Level      core.RiskLevel
	Indicators []string
}

// Assess sums the weight of every matching signature in table order
func (rs *Ruleset) Assess(in Input) Assessment {
	var a Assessment
	for _, sig := range rs.Signatures {
		if sig.matches(in.Text, in.Sender) {
			a.Score += sig.Weight
			a.Indicators = append(a.Indicators, sig.Indicator)
		}
	}

	switch {
	case a.Score >= rs.HighRiskThreshold:
		a.Level = core.RiskHigh
	case a.Score >= rs.MediumRiskThreshold:
		a.Level = core.RiskMedium
	default:
		a.Level = core.RiskLow
	}
	return a
}

// IsThreat reports whether the cascade must be skipped
func (a Assessment) IsThreat() bool {
	return a.Level == core.RiskHigh
}

// Confidence is the continuous threat confidence, capped at maxThreatConfidence
func (a Assessment) Confidence() float64 {
	return math.Min(maxThreatConfidence, threatBaseConfidence+float64(a.Score)/100)
}

func (a Assessment) Reasoning() string {
	if len(a.Indicators) == 0 {
		return noThreatsReasoning
	}
	return "Security risk detected: " + strings.Join(a.Indicators, ", ")
}

// annotate copies a non-LOW assessment onto a cascade result
func (a Assessment) annotate(res *core.ClassificationResult) {
	res.SecurityRisk = a.Level
	res.RiskScore = a.Score
	if a.Level != core.RiskLow {
		res.ThreatIndicators = append([]string(nil), a.Indicators...)
	}
}
