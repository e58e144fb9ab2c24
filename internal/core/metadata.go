package core

// Metadata keys used in the string-keyed view
const (
	KeyMeetingTime    = "meeting_time"
	KeyMeetingDate    = "meeting_date"
	KeyPlatform       = "platform"
	KeyTrackingNumber = "tracking_number"
	KeyCarrier        = "carrier"
	KeyStatus         = "status"
	KeyUrgencyLevel   = "urgency_level"
)

// Metadata is the category-specific payload of a result. The set of variants
// is closed: MeetingMetadata, DeliveryMetadata, ImportanceMetadata, NoMetadata.
type Metadata interface {
	// Fields returns the populated fields; empty values are never present.
	Fields() map[string]string
	isMetadata()
}

// MeetingMetadata is attached to Meetings results
type MeetingMetadata struct {
	Time     string
	Date     string
	Platform string
}

// DeliveryMetadata is attached to Deliveries results
type DeliveryMetadata struct {
	TrackingNumber string
	Carrier        string
	Status         string
}

// ImportanceMetadata is attached to Important results produced by the importance detector
type ImportanceMetadata struct {
	UrgencyLevel string
}

// NoMetadata is attached to default and threat results
type NoMetadata struct{}

func (MeetingMetadata) isMetadata()    {}
func (DeliveryMetadata) isMetadata()   {}
func (ImportanceMetadata) isMetadata() {}
func (NoMetadata) isMetadata()         {}

func (m MeetingMetadata) Fields() map[string]string {
	f := make(map[string]string, 3)
	put(f, KeyMeetingTime, m.Time)
	put(f, KeyMeetingDate, m.Date)
	put(f, KeyPlatform, m.Platform)
	return f
}

func (m DeliveryMetadata) Fields() map[string]string {
	f := make(map[string]string, 3)
	put(f, KeyTrackingNumber, m.TrackingNumber)
	put(f, KeyCarrier, m.Carrier)
	put(f, KeyStatus, m.Status)
	return f
}

func (m ImportanceMetadata) Fields() map[string]string {
	f := make(map[string]string, 1)
	put(f, KeyUrgencyLevel, m.UrgencyLevel)
	return f
}

func (NoMetadata) Fields() map[string]string {
	return map[string]string{}
}

func put(f map[string]string, key, value string) {
	if value != "" {
		f[key] = value
	}
}

// MetadataFromFields builds the variant matching category from a string map.
// Keys that do not belong to the category are dropped.
func MetadataFromFields(category Category, fields map[string]string) Metadata {
	switch category {
	case CategoryMeetings:
		return MeetingMetadata{
			Time:     fields[KeyMeetingTime],
			Date:     fields[KeyMeetingDate],
			Platform: fields[KeyPlatform],
		}
	case CategoryDeliveries:
		return DeliveryMetadata{
			TrackingNumber: fields[KeyTrackingNumber],
			Carrier:        fields[KeyCarrier],
			Status:         fields[KeyStatus],
		}
	case CategoryImportant:
		if level := fields[KeyUrgencyLevel]; level != "" {
			return ImportanceMetadata{UrgencyLevel: level}
		}
	}
	return NoMetadata{}
}
