package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/brand-audit-cli/internal/resilience"
)

const narratorSystemPrompt = "You are a brand strategist writing the narrative sections of a " +
	"website brand audit. Write plainly and concretely for an executive reader. " +
	"Base every claim on the metrics supplied in the prompt; do not invent data."

// Narrator generates report prose through the Anthropic API, rate-limited so
// a full report bundle stays inside the account's request budget.
type Narrator struct {
	client    Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// NewNarrator wraps a Client for report narration. rps caps request rate;
// zero or negative means one request per second.
func NewNarrator(client Client, model string, maxTokens int64, rps float64) *Narrator {
	if rps <= 0 {
		rps = 1
	}
	return &Narrator{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		retry:     resilience.DefaultRetryConfig(),
	}
}

// Narrate produces prose for one report section.
func (n *Narrator) Narrate(ctx context.Context, section, prompt string) (string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return "", eris.Wrapf(err, "anthropic: narrate %s", section)
	}

	resp, err := resilience.DoVal(ctx, n.retry, "narrate "+section, func(ctx context.Context) (*MessageResponse, error) {
		return n.client.CreateMessage(ctx, MessageRequest{
			Model:     n.model,
			MaxTokens: n.maxTokens,
			System: []SystemBlock{{
				Text:         narratorSystemPrompt,
				CacheControl: &CacheControl{TTL: "5m"},
			}},
			Messages: []Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return "", eris.Wrapf(err, "anthropic: narrate %s", section)
	}
	resp.Usage.LogCost(n.model, section)

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("anthropic: narrate %s: empty response", section)
	}
	return text, nil
}
