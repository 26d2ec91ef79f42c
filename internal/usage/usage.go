package usage

// Usage accumulates token accounting across one or more model calls.
type Usage struct {
	Requests          int64 `json:"requests" yaml:"requests"`
	InputTokens       int64 `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens      int64 `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens       int64 `json:"total_tokens" yaml:"total_tokens"`
	CachedInputTokens int64 `json:"cached_input_tokens" yaml:"cached_input_tokens"`
	ReasoningTokens   int64 `json:"reasoning_tokens" yaml:"reasoning_tokens"`
}

// Add returns the field-wise sum of u and other. The zero Usage is the identity.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		Requests:          u.Requests + other.Requests,
		InputTokens:       u.InputTokens + other.InputTokens,
		OutputTokens:      u.OutputTokens + other.OutputTokens,
		TotalTokens:       u.TotalTokens + other.TotalTokens,
		CachedInputTokens: u.CachedInputTokens + other.CachedInputTokens,
		ReasoningTokens:   u.ReasoningTokens + other.ReasoningTokens,
	}
}

// Sum folds all values into a single Usage.
func Sum(values ...Usage) Usage {
	var total Usage
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Valid reports whether every counter is non-negative.
func (u Usage) Valid() bool {
	return u.Requests >= 0 && u.InputTokens >= 0 && u.OutputTokens >= 0 &&
		u.TotalTokens >= 0 && u.CachedInputTokens >= 0 && u.ReasoningTokens >= 0
}

// IsZero reports whether no usage has been recorded.
func (u Usage) IsZero() bool {
	return u == Usage{}
}
