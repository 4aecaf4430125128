package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"travelagent/models"
)

const extractionPrompt = `You extract travel-booking details from a conversation.
Reply with ONLY a JSON object, no prose and no code fences, with any of these keys
that the latest user message supplies (omit keys it does not mention):
trip_type ("flight_only"|"hotel_only"|"complete_trip"), origin, destination,
departure_date, return_date, check_in, check_out (all dates as YYYY-MM-DD),
guests (int), rooms (int), budget_usd (number), cabin_class.

Conversation:
%s`

// GeminiExtractor implements Extractor against the Gemini API.
type GeminiExtractor struct {
	model *genai.GenerativeModel
}

func NewGeminiExtractor(apiKey string) *GeminiExtractor {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiExtractor{model: model}
}

func (g *GeminiExtractor) Extract(ctx context.Context, history []models.Message, _ models.WorkflowState) (models.TripIntent, error) {
	var intent models.TripIntent

	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, renderTranscript(history))))
	if err != nil {
		return intent, fmt.Errorf("gemini generate error: %w", err)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	raw := stripCodeFences(sb.String())
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return intent, fmt.Errorf("gemini returned unparseable intent: %w", err)
	}
	return intent, nil
}

func renderTranscript(history []models.Message) string {
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
