// Package intent extracts structured trip details from user
// utterances. Extraction is a collaborator contract: the default
// implementation is rule-based and deterministic, and a Gemini-backed
// implementation is wired in when an API key is configured.
package intent

import (
	"context"

	"travelagent/models"
)

// Extractor derives a TripIntent from the conversation so far. history
// is the full thread transcript (the last user message is the turn
// being interpreted); st is the accumulated workflow state, which lets
// an implementation interpret answers in the context of what was asked.
// Empty intent fields mean the utterance said nothing about them.
type Extractor interface {
	Extract(ctx context.Context, history []models.Message, st models.WorkflowState) (models.TripIntent, error)
}
