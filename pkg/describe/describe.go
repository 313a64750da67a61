package describe

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// DefaultModel is a fast, cheap model; the offer text is short and formulaic.
const DefaultModel = "claude-haiku-4-5-20251001"

const systemPrompt = `Du er tilbudsskriver hos en dansk el-installatør. Du får et
struktureret overslag og skriver en kort, professionel tilbudstekst på dansk
til kunden: hvad arbejdet omfatter, pris inkl. moms, og eventuelle forbehold.
Brug et venligt, nøgternt sprog. Nævn aldrig dækningsgrad, kostpriser eller
interne risikovurderinger. Maks 200 ord.`

// Describer generates offer texts from estimation results.
type Describer struct {
	client    Client
	model     string
	maxTokens int64
}

// Option configures the Describer.
type Option func(*Describer)

// WithModel overrides the default model.
func WithModel(m string) Option {
	return func(d *Describer) {
		if m != "" {
			d.model = m
		}
	}
}

// New creates a Describer.
func New(client Client, opts ...Option) *Describer {
	d := &Describer{client: client, model: DefaultModel, maxTokens: 1024}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Describe writes an offer text for the given result. The model only sees
// the customer-safe fields: rooms, hours, the final price and any reservations.
func (d *Describer) Describe(ctx context.Context, result *model.ProjectEstimationResult) (string, error) {
	if result == nil {
		return "", eris.New("describe: nil result")
	}

	temp := 0.3
	resp, err := d.client.CreateMessage(ctx, MessageRequest{
		Model:       d.model,
		MaxTokens:   d.maxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []Message{
			{Role: "user", Content: buildPrompt(result)},
		},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", eris.New("describe: empty response")
	}
	zap.L().Debug("describe: offer text generated",
		zap.String("model", resp.Model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return text, nil
}

// buildPrompt renders the customer-safe parts of the result.
func buildPrompt(result *model.ProjectEstimationResult) string {
	var b strings.Builder
	s := result.Summary

	fmt.Fprintf(&b, "Projekt: %s\n", result.Estimate.Name)
	fmt.Fprintf(&b, "Rum:\n")
	for _, room := range result.Estimate.Rooms {
		fmt.Fprintf(&b, "- %s (%d installationspunkter)\n", room.RoomName, room.ComponentCount)
	}
	fmt.Fprintf(&b, "Arbejdstimer i alt: %.1f\n", s.TotalLaborHours)
	fmt.Fprintf(&b, "Tilbudspris inkl. moms: %.2f kr.\n", s.FinalAmount)
	if !s.Compliant {
		b.WriteString("Forbehold: installationen kræver ændringer for at overholde gældende regler.\n")
	}
	for _, w := range result.AllWarnings {
		fmt.Fprintf(&b, "Forbehold: %s\n", w)
	}
	b.WriteString("\nSkriv tilbudsteksten.")
	return b.String()
}
