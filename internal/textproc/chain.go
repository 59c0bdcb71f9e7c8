package textproc

import "context"

// Chain runs the replacement rules first, then AI correction over the
// replaced text. The order matters: rules fix known dictation quirks
// before the model sees the transcript.
type Chain struct {
	replacer  *Replacer
	corrector *Corrector
}

func NewChain(replacer *Replacer, corrector *Corrector) *Chain {
	return &Chain{replacer: replacer, corrector: corrector}
}

func (c *Chain) Apply(ctx context.Context, text string) string {
	text = c.replacer.Apply(text)
	return c.corrector.Correct(ctx, text)
}
