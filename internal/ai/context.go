package ai

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/spots/internal/model"
)

const maxContentRunes = 2000

// buildPrompt renders the post and the user's categories for the model.
func buildPrompt(post model.CapturedPost, categories []string) string {
	content := post.Content
	if runes := []rune(content); len(runes) > maxContentRunes {
		content = string(runes[:maxContentRunes])
	}

	tags := model.Hashtags(post.Content)
	tagsStr := ""
	if len(tags) > 0 {
		tagsStr = fmt.Sprintf("\nHashtags: %s", strings.Join(tags, ", "))
	}

	catStr := "none yet"
	if len(categories) > 0 {
		catStr = strings.Join(categories, ", ")
	}

	return fmt.Sprintf(`Extract place and event details from this %s post.

Author: %s
URL: %s
Caption:
%s%s

User categories: %s

Instructions:
- eventName: short title for the place or event
- venueName and address only if the post names them
- eventDate as YYYY-MM-DD, startTime and endTime as HH:MM, or empty
- eventType: one word such as restaurant, bar, concert, market
- category: pick one of the user categories when one fits, else empty
- tags: 1-5 lowercase tags, prefer the hashtags
- confidence between 0 and 1
- Use empty strings for anything the post does not say`,
		post.Platform, post.Author, post.URL, content, tagsStr, catStr)
}

// Patch converts the enrichment into a patch for a stored item.
// Empty fields are left out of the patch.
func (e *Enrichment) Patch() model.Patch {
	processed := true
	confidence := e.Confidence
	p := model.Patch{
		EventName:       model.StringPtr(e.EventName),
		VenueName:       model.StringPtr(e.VenueName),
		Address:         model.StringPtr(e.Address),
		EventDate:       model.StringPtr(e.EventDate),
		StartTime:       model.StringPtr(e.StartTime),
		EndTime:         model.StringPtr(e.EndTime),
		EventType:       model.StringPtr(e.EventType),
		Description:     model.StringPtr(e.Description),
		AIProcessed:     &processed,
		ConfidenceScore: &confidence,
	}
	if len(e.Tags) > 0 {
		p.Tags = e.Tags
	}
	return p
}
