// File: tripbot/services/intent/gemini.go
package intent

import (
	"context"
	"fmt"
	"strings"

	"tripbot/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const classifyPrompt = `You classify one chat message from a trip booking conversation.
The user is currently at step %q. Reply with exactly one word from:
bus, flight, confirm, cancel, history, other.
Message: %q`

// GeminiResolver layers a Gemini classification over the keyword resolver.
// The keyword result wins whenever it is recognized; Gemini only gets the
// free-form leftovers, and any API failure falls back silently to the
// keyword result.
type GeminiResolver struct {
	model    *genai.GenerativeModel
	fallback Resolver
}

func NewGeminiResolver(apiKey string, fallback Resolver) *GeminiResolver {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}
	model := client.GenerativeModel("models/gemini-1.5-flash")
	return &GeminiResolver{model: model, fallback: fallback}
}

func (r *GeminiResolver) Resolve(ctx context.Context, text string, stage models.Stage) Action {
	act := r.fallback.Resolve(ctx, text, stage)
	if act.Kind != KindUnrecognized {
		return act
	}

	label, err := r.classify(ctx, text, stage)
	if err != nil {
		return act
	}
	switch label {
	case "bus":
		if stage == models.StageAwaitingTripType {
			return Action{Kind: KindSelectTripType, TripType: models.TripTypeBus}
		}
	case "flight":
		if stage == models.StageAwaitingTripType {
			return Action{Kind: KindSelectTripType, TripType: models.TripTypeFlight}
		}
	case "confirm":
		return Action{Kind: KindConfirm}
	case "cancel":
		return Action{Kind: KindCancel}
	case "history":
		return Action{Kind: KindShowHistory}
	}
	return act
}

func (r *GeminiResolver) classify(ctx context.Context, text string, stage models.Stage) (string, error) {
	prompt := fmt.Sprintf(classifyPrompt, string(stage), text)
	resp, err := r.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.ToLower(strings.TrimSpace(sb.String())), nil
}
