package model

// Patch holds optional fields to merge into a SavedItem.
// Nil fields are left unchanged. ID, platform, URL and save time are never patched.
type Patch struct {
	EventName       *string  `json:"event_name,omitempty"`
	VenueName       *string  `json:"venue_name,omitempty"`
	Address         *string  `json:"address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	EventDate       *string  `json:"event_date,omitempty"`
	StartTime       *string  `json:"start_time,omitempty"`
	EndTime         *string  `json:"end_time,omitempty"`
	EventType       *string  `json:"event_type,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Description     *string  `json:"description,omitempty"`
	AIProcessed     *bool    `json:"ai_processed,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	RemoteID        *string  `json:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.EventName == nil && p.VenueName == nil && p.Address == nil &&
		p.Latitude == nil && p.Longitude == nil && p.EventDate == nil &&
		p.StartTime == nil && p.EndTime == nil && p.EventType == nil &&
		p.Category == nil && p.Tags == nil && p.Description == nil &&
		p.AIProcessed == nil && p.ConfidenceScore == nil && p.RemoteID == nil
}

// Apply returns a copy of item with the patch fields merged in.
func (p Patch) Apply(item SavedItem) SavedItem {
	if p.EventName != nil {
		item.EventName = emptyToNil(p.EventName)
	}
	if p.VenueName != nil {
		item.VenueName = emptyToNil(p.VenueName)
	}
	if p.Address != nil {
		item.Address = emptyToNil(p.Address)
	}
	if p.Latitude != nil {
		item.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		item.Longitude = p.Longitude
	}
	if p.EventDate != nil {
		item.EventDate = emptyToNil(p.EventDate)
	}
	if p.StartTime != nil {
		item.StartTime = emptyToNil(p.StartTime)
	}
	if p.EndTime != nil {
		item.EndTime = emptyToNil(p.EndTime)
	}
	if p.EventType != nil {
		item.EventType = emptyToNil(p.EventType)
	}
	if p.Category != nil {
		item.Category = emptyToNil(p.Category)
	}
	if p.Tags != nil {
		item.Tags = append([]string{}, p.Tags...)
	}
	if p.Description != nil {
		item.Description = emptyToNil(p.Description)
	}
	if p.AIProcessed != nil {
		item.AIProcessed = *p.AIProcessed
	}
	if p.ConfidenceScore != nil {
		item.ConfidenceScore = p.ConfidenceScore
	}
	if p.RemoteID != nil {
		item.RemoteID = *p.RemoteID
	}
	return item
}

// emptyToNil clears a field when the patch sets it to "".
func emptyToNil(s *string) *string {
	if *s == "" {
		return nil
	}
	v := *s
	return &v
}
