// Package generator wraps the external reply generator behind a single
// one-shot interface. The core never inspects or transforms the prompt
// and never retries a failed generation.
package generator

import "context"

// Generator produces one assistant reply for one user prompt. Failures
// surface as *errs.ProviderError; callers decide whether to retry by
// re-issuing the whole turn.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
