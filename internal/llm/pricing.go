package llm

import "strings"

// Price is USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// prices covers the default and alias models of each provider. Dated
// snapshots and OpenRouter vendor prefixes are matched by EstimateCost.
var prices = map[string]Price{
	"gemini-2.5-flash-lite": {0.10, 0.40},
	"gemini-2.5-flash":      {0.30, 2.50},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-2.0-flash":      {0.10, 0.40},
	"gemini-2.0-flash-lite": {0.075, 0.30},
	"gemma-3n-e4b-it":       {0, 0},

	"gpt-4o-mini":  {0.15, 0.60},
	"gpt-4o":       {2.50, 10},
	"gpt-4.1-mini": {0.40, 1.60},
	"gpt-4.1-nano": {0.10, 0.40},

	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-3-5-haiku":  {0.80, 4},
}

// EstimateCost prices a call. ok is false when the model is not in the
// table.
func EstimateCost(model string, u Usage) (usd float64, ok bool) {
	p, ok := lookupPrice(model)
	if !ok {
		return 0, false
	}
	return (float64(u.InputTokens)*p.Input + float64(u.OutputTokens)*p.Output) / 1e6, true
}

func lookupPrice(model string) (Price, bool) {
	// "google/gemini-2.0-flash-001" and "models/gemini-2.0-flash"
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	for model != "" {
		if p, ok := prices[model]; ok {
			return p, true
		}
		// Drop a trailing snapshot segment: "-20251001", "-001", "-latest".
		i := strings.LastIndex(model, "-")
		if i < 0 {
			break
		}
		tail := model[i+1:]
		if tail != "latest" && strings.Trim(tail, "0123456789") != "" {
			break
		}
		model = model[:i]
	}
	return Price{}, false
}
