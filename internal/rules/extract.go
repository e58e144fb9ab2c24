package rules

import "strings"

var deliveryStatuses = []struct {
	phrase string
	status string
}{
	{"delivered", "delivered"},
	{"out for delivery", "out_for_delivery"},
	{"shipped", "shipped"},
}

// meetingTime returns the literal text of the first time pattern that matches
func (rs *Ruleset) meetingTime(text string) string {
	for _, re := range rs.TimePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func (rs *Ruleset) meetingDate(text string) string {
	d, _ := firstContained(text, rs.DateKeywords)
	return d
}

func (rs *Ruleset) meetingPlatform(text string) string {
	for _, p := range rs.Platforms {
		if p.Pattern.MatchString(text) {
			return p.Name
		}
	}
	return ""
}

// trackingNumber matches against the upper-cased text so letter formats are
// case-insensitive
func (rs *Ruleset) trackingNumber(text string) string {
	upper := strings.ToUpper(text)
	for _, re := range rs.TrackingPatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[len(m)-1]
		}
	}
	return ""
}

func (rs *Ruleset) carrier(text string) string {
	c, _ := firstContained(text, rs.Carriers)
	return strings.ToUpper(c)
}

func deliveryStatus(text string) string {
	for _, s := range deliveryStatuses {
		if strings.Contains(text, s.phrase) {
			return s.status
		}
	}
	return ""
}
