package llm

import (
	"context"
)

// LLMClient is the single capability the fusion engine needs from a
// language model: one prompt in, raw completion text out. Interpreting
// the completion is the caller's problem.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
