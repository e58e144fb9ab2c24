package rules

import (
	"regexp"
	"strings"
)

// Signature is a weighted scam/phishing pattern. A signature matches when its
// Pattern matches the text, or when it has no Pattern and any of Terms occurs
// in the text. If SenderTerms is set, the sender must also contain one of them.
// Each signature contributes its weight at most once.
type Signature struct {
	Indicator   string
	Weight      int
	Pattern     *regexp.Regexp
	Terms       []string
	SenderTerms []string
}

func (s Signature) matches(text, sender string) bool {
	if len(s.SenderTerms) > 0 && !containsAny(sender, s.SenderTerms) {
		return false
	}
	if s.Pattern != nil {
		return s.Pattern.MatchString(text)
	}
	return containsAny(text, s.Terms)
}

// Platform maps a video-conferencing pattern to the reported platform name
type Platform struct {
	Name    string
	Pattern *regexp.Regexp
}

// Ruleset holds every table the engine evaluates. It is built once and only
// read afterwards, so a single value can be shared by concurrent callers.
type Ruleset struct {
	Signatures          []Signature
	HighRiskThreshold   int
	MediumRiskThreshold int

	MeetingKeywords    []string
	DeliveryKeywords   []string
	CarrierSenders     []string
	ImportanceKeywords []string

	TimePatterns     []*regexp.Regexp
	DateKeywords     []string
	Platforms        []Platform
	TrackingPatterns []*regexp.Regexp
	Carriers         []string
}

var (
	defaultShortenerHosts = []string{"bit.ly", "tinyurl", "short.link", "click.here"}
	defaultInfoRequests   = []string{"ssn", "social security", "password", "credit card", "bank account", "bank details"}
)

// DefaultRuleset returns the production tables
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Signatures:          buildSignatures(defaultShortenerHosts, defaultInfoRequests),
		HighRiskThreshold:   70,
		MediumRiskThreshold: 50,

		MeetingKeywords: []string{
			"meeting", "calendar", "invite", "schedule", "appointment",
			"zoom", "teams", "meet", "call", "sync", "standup", "conference",
		},
		DeliveryKeywords: []string{
			"tracking", "package", "delivery", "shipment", "shipping",
			"order", "dispatch", "courier", "parcel", "arrived",
		},
		CarrierSenders: []string{"fedex", "ups", "amazon", "dhl", "usps"},
		ImportanceKeywords: []string{
			"urgent", "important", "deadline", "asap", "critical",
			"priority", "immediate", "action required", "time sensitive", "time-sensitive",
		},

		TimePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,2}:\d{2}\s*[ap]m`),
			regexp.MustCompile(`\d{1,2}\s*[ap]m\b`),
			regexp.MustCompile(`\d{1,2}:\d{2}`),
		},
		DateKeywords: []string{"today", "tomorrow", "monday", "tuesday", "wednesday", "thursday", "friday"},
		Platforms: []Platform{
			{Name: "zoom", Pattern: regexp.MustCompile(`zoom\.us/|\bzoom\b`)},
			{Name: "teams", Pattern: regexp.MustCompile(`teams\.microsoft\.com|microsoft teams`)},
			{Name: "meet", Pattern: regexp.MustCompile(`meet\.google\.com|google meet`)},
			{Name: "webex", Pattern: regexp.MustCompile(`webex\.com|\bwebex\b`)},
		},
		TrackingPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b([A-Z]{2}\d{9}[A-Z]{2})\b`),
			regexp.MustCompile(`\b(1Z[A-Z0-9]{16})\b`),
			regexp.MustCompile(`\b(\d{12,22})\b`),
			regexp.MustCompile(`\b(\d{10})\b`),
		},
		Carriers: []string{"fedex", "ups", "usps", "dhl", "amazon"},
	}
}

func buildSignatures(shorteners, infoRequests []string) []Signature {
	return []Signature{
		{Indicator: "prize_scam", Weight: 40, Pattern: regexp.MustCompile(`you\s+won\s+\$\d+`)},
		{Indicator: "urgent_click", Weight: 30, Pattern: regexp.MustCompile(`click\s+here`)},
		{Indicator: "account_verification", Weight: 35, Pattern: regexp.MustCompile(`verify\s+your\s+account`)},
		{Indicator: "account_threat", Weight: 35, Pattern: regexp.MustCompile(`suspended\s+account`)},
		{Indicator: "money_mention", Weight: 20, Pattern: regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?`)},
		{Indicator: "large_amount", Weight: 15, Pattern: regexp.MustCompile(`million|thousand`)},
		{Indicator: "suspicious_url", Weight: 25, Terms: shorteners},
		{Indicator: "personal_info_request", Weight: 35, Terms: infoRequests},
		{Indicator: "prize_claim", Weight: 25, Terms: []string{"prize", "claim"}},
		{Indicator: "suspicious_sender", Weight: 20, Terms: []string{"$", "money"}, SenderTerms: []string{"noreply", "no-reply"}},
	}
}

// Overrides replaces keyword tables of the default ruleset. Empty lists keep
// the defaults.
type Overrides struct {
	MeetingKeywords    []string
	DeliveryKeywords   []string
	CarrierSenders     []string
	ImportanceKeywords []string
	ShortenerHosts     []string
	InfoRequestTerms   []string
}

// NewRuleset builds the default ruleset with overrides applied
func NewRuleset(o Overrides) *Ruleset {
	rs := DefaultRuleset()
	rs.MeetingKeywords = pick(o.MeetingKeywords, rs.MeetingKeywords)
	rs.DeliveryKeywords = pick(o.DeliveryKeywords, rs.DeliveryKeywords)
	rs.CarrierSenders = pick(o.CarrierSenders, rs.CarrierSenders)
	rs.ImportanceKeywords = pick(o.ImportanceKeywords, rs.ImportanceKeywords)
	rs.Signatures = buildSignatures(
		pick(o.ShortenerHosts, defaultShortenerHosts),
		pick(o.InfoRequestTerms, defaultInfoRequests),
	)
	return rs
}

func pick(override, fallback []string) []string {
	out := make([]string, 0, len(override))
	for _, s := range override {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func containsAny(text string, terms []string) bool {
	_, ok := firstContained(text, terms)
	return ok
}

// firstContained returns the first term, in table order, found in text
func firstContained(text string, terms []string) (string, bool) {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}
