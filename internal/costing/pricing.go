// Package costing tracks per-attempt token spend and aggregates
// provider performance for cost/latency comparison.
package costing

import "strings"

// modelPrice is USD per 1K tokens, split by direction.
type modelPrice struct {
	InputPer1K  float64
	OutputPer1K float64
}

// pricing holds known model rates. Prefix matching lets dated model
// snapshots ("gpt-4o-2024-08-06") resolve to their family rate.
var pricing = map[string]modelPrice{
	"gpt-4o":                  {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":             {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"claude-3-5-sonnet":       {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-5-haiku":        {InputPer1K: 0.0008, OutputPer1K: 0.004},
	"gemini-1.5-pro":          {InputPer1K: 0.00125, OutputPer1K: 0.005},
	"gemini-1.5-flash":        {InputPer1K: 0.000075, OutputPer1K: 0.0003},
	"llama-3.3-70b":           {InputPer1K: 0.0007, OutputPer1K: 0.0028},
	"qwen-2.5-72b":            {InputPer1K: 0.0007, OutputPer1K: 0.0028},
	"deepseek-r1-distill-70b": {InputPer1K: 0.0007, OutputPer1K: 0.0028},
}

// EstimateCost returns the estimated USD cost for a call, or nil when
// the model's pricing is unknown. Matching is longest-prefix so model
// snapshot suffixes do not defeat the lookup.
func EstimateCost(model string, inputTokens, outputTokens int) *float64 {
	best := ""
	for name := range pricing {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return nil
	}
	p := pricing[best]
	cost := float64(inputTokens)/1000*p.InputPer1K + float64(outputTokens)/1000*p.OutputPer1K
	return &cost
}
