package rules

// Per-detector confidences. These are product tuning values, not derived.
const (
	meetingWithTimeConfidence      = 0.85
	meetingConfidenceBase          = 0.75
	deliveryWithTrackingConfidence = 0.90
	deliveryConfidenceBase         = 0.80
	importanceConfidence           = 0.75
	defaultConfidence              = 0.60

	threatBaseConfidence = 0.5
	maxThreatConfidence  = 0.95
)

func meetingConfidence(hasTime bool) float64 {
	if hasTime {
		return meetingWithTimeConfidence
	}
	return meetingConfidenceBase
}

func deliveryConfidence(hasTracking bool) float64 {
	if hasTracking {
		return deliveryWithTrackingConfidence
	}
	return deliveryConfidenceBase
}
