package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trendsniper/trendsniper/shared/llm"
)

// ProductInsight is one entry of an /analyze-multi answer.
type ProductInsight struct {
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	Category       string  `json:"category"`
	Confidence     float64 `json:"confidence"`
	AdPlatform     string  `json:"adPlatform"`
	AdAngle        string  `json:"adAngle"`
	TargetAudience string  `json:"targetAudience"`
	AdScript       string  `json:"adScript"`
	Summary        string  `json:"summary"`
	Verdict        string  `json:"verdict"`
	Advice         string  `json:"advice"`
}

// MultiResult is the outcome of AnalyzeMulti. Exactly one of Items, Err or
// Invalid describes it: Err when the provider failed, Invalid when it answered
// with something that is not a JSON array.
type MultiResult struct {
	Items   []ProductInsight
	Raw     string
	Err     *llm.UpstreamError
	Invalid error
}

// Analyzer builds prompts and calls the completion provider. It holds no
// per-request state and is shared by all handlers.
type Analyzer struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

func NewAnalyzer(provider llm.Provider, model string, timeout time.Duration) *Analyzer {
	return &Analyzer{provider: provider, model: model, timeout: timeout}
}

func (a *Analyzer) Provider() string { return a.provider.Name() }

func (a *Analyzer) Model() string { return a.model }

// Analyze classifies text and returns the model's trimmed answer.
func (a *Analyzer) Analyze(ctx context.Context, text string) llm.Result {
	res := a.complete(ctx, BuildAnalyzePrompt(text), AnalyzeTemperature)
	if !res.OK() {
		return res
	}
	return llm.Result{Text: strings.TrimSpace(res.Text)}
}

// AnalyzeMulti extracts up to 3 (or 10 for pro) insights from content.
func (a *Analyzer) AnalyzeMulti(ctx context.Context, content string, pro bool) MultiResult {
	res := a.complete(ctx, BuildMultiPrompt(content, pro), MultiTemperature)
	if !res.OK() {
		return MultiResult{Err: res.Err}
	}

	raw := strings.TrimSpace(res.Text)
	var items []ProductInsight
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &items); err != nil {
		return MultiResult{Raw: raw, Invalid: fmt.Errorf("not a JSON array: %w", err)}
	}
	if items == nil {
		return MultiResult{Raw: raw, Invalid: fmt.Errorf("not a JSON array: null")}
	}
	if limit := insightLimit(pro); len(items) > limit {
		items = items[:limit]
	}
	return MultiResult{Items: items, Raw: raw}
}

func (a *Analyzer) complete(ctx context.Context, prompt string, temperature float64) llm.Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	log.Debug().
		Str("provider", a.provider.Name()).
		Str("model", a.model).
		Int("prompt_chars", len(prompt)).
		Msg("requesting completion")

	return a.provider.Complete(ctx, llm.Request{
		Model:       a.model,
		Prompt:      prompt,
		Temperature: temperature,
	})
}
