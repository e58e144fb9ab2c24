package rules

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

const (
	meetingReasoning    = "Contains meeting keywords and patterns"
	deliveryReasoning   = "Delivery/shipping patterns detected"
	importanceReasoning = "Contains importance indicators"
	defaultReasoning    = "Default categorization"
)

// detector returns a result when it claims the input, nil otherwise
type detector func(rs *Ruleset, in Input) *core.ClassificationResult

// cascade is evaluated in order; the first detector to match wins
var cascade = []detector{
	detectMeeting,
	detectDelivery,
	detectImportance,
}

func detectMeeting(rs *Ruleset, in Input) *core.ClassificationResult {
	if !containsAny(in.Text, rs.MeetingKeywords) {
		return nil
	}
	md := core.MeetingMetadata{
		Time:     rs.meetingTime(in.Text),
		Date:     rs.meetingDate(in.Text),
		Platform: rs.meetingPlatform(in.Text),
	}
	return &core.ClassificationResult{
		Category:   core.CategoryMeetings,
		Confidence: meetingConfidence(md.Time != ""),
		Metadata:   md,
		Reasoning:  meetingReasoning,
	}
}

func detectDelivery(rs *Ruleset, in Input) *core.ClassificationResult {
	if !containsAny(in.Text, rs.DeliveryKeywords) && !containsAny(in.Sender, rs.CarrierSenders) {
		return nil
	}
	md := core.DeliveryMetadata{
		TrackingNumber: rs.trackingNumber(in.Text),
		Carrier:        rs.carrier(in.Text),
		Status:         deliveryStatus(in.Text),
	}
	return &core.ClassificationResult{
		Category:   core.CategoryDeliveries,
		Confidence: deliveryConfidence(md.TrackingNumber != ""),
		Metadata:   md,
		Reasoning:  deliveryReasoning,
	}
}

func detectImportance(rs *Ruleset, in Input) *core.ClassificationResult {
	if !containsAny(in.Text, rs.ImportanceKeywords) && !in.Priority.Elevated() {
		return nil
	}
	level := "normal"
	if strings.Contains(in.Text, "urgent") {
		level = "high"
	}
	return &core.ClassificationResult{
		Category:   core.CategoryImportant,
		Confidence: importanceConfidence,
		Metadata:   core.ImportanceMetadata{UrgencyLevel: level},
		Reasoning:  importanceReasoning,
	}
}

func defaultResult() *core.ClassificationResult {
	return &core.ClassificationResult{
		Category:   core.CategoryImportant,
		Confidence: defaultConfidence,
		Metadata:   core.NoMetadata{},
		Reasoning:  defaultReasoning,
	}
}
