package ai

// Enrichment is the structured data the model extracts from a post.
// Empty strings mean the model found nothing for that field.
type Enrichment struct {
	EventName   string   `json:"eventName"`
	VenueName   string   `json:"venueName"`
	Address     string   `json:"address"`
	EventDate   string   `json:"eventDate"` // YYYY-MM-DD
	StartTime   string   `json:"startTime"` // HH:MM
	EndTime     string   `json:"endTime"`
	EventType   string   `json:"eventType"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"` // 0..1
}

// apiRequest represents the Anthropic API request body.
type apiRequest struct {
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	Messages     []apiMessage  `json:"messages"`
	OutputFormat *outputFormat `json:"output_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type outputFormat struct {
	Type   string     `json:"type"`
	Schema jsonSchema `json:"schema"`
}

type jsonSchema struct {
	Type                 string                `json:"type"`
	Properties           map[string]schemaProp `json:"properties"`
	Required             []string              `json:"required"`
	AdditionalProperties bool                  `json:"additionalProperties"`
}

type schemaProp struct {
	Type  string      `json:"type"`
	Items *schemaProp `json:"items,omitempty"`
}

// apiResponse represents the Anthropic API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
