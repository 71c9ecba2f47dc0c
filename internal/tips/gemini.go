package tips

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// DefaultModelName is the Gemini model used for tip generation.
const DefaultModelName = "gemini-2.0-flash"

// Gemini generates tips with a Gemini model and silently degrades to the
// static provider when the model is unreachable or returns nothing usable. A
// tip is decoration on the dashboard; it must never surface a model outage.
type Gemini struct {
	model    string
	fallback Static
	log      zerolog.Logger
}

// NewGemini creates a model-backed provider. model may be empty to use
// DefaultModelName. Credentials come from the environment, same as every
// other GenAI client in this codebase.
func NewGemini(model string, log zerolog.Logger) *Gemini {
	if model == "" {
		model = DefaultModelName
	}
	return &Gemini{model: model, log: log}
}

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, snap *domain.DashboardSnapshot) (Tip, error) {
	if snap == nil {
		return g.fallback.Generate(ctx, snap)
	}

	text, err := g.generateText(ctx, snap)
	if err != nil {
		g.log.Warn().Err(err).Msg("Tip generation fell back to static advice")
		return g.fallback.Generate(ctx, snap)
	}
	return Tip{Text: text, IsAI: true}, nil
}

func (g *Gemini) generateText(ctx context.Context, snap *domain.DashboardSnapshot) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("generateText: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(snap)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generateText: generate content: %w", err)
	}

	text := cleanModelText(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generateText: empty response from model")
	}
	return text, nil
}

// cleanModelText strips code fences and surrounding whitespace in case the
// model ignores the plain-text instruction.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
