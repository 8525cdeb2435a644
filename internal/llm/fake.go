package llm

import (
	"context"
	"sync/atomic"
)

// Fake returns canned replies for offline runs and tests.
type Fake struct {
	Reply string
	Err   error
	calls int64
}

func NewFake(reply string) *Fake {
	return &Fake{Reply: reply}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Calls() int {
	return int(atomic.LoadInt64(&f.calls))
}

func (f *Fake) Complete(ctx context.Context, req Request) (Response, error) {
	atomic.AddInt64(&f.calls, 1)
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if f.Err != nil {
		return Response{}, f.Err
	}
	text := f.Reply
	if text == "" {
		text = "{}"
	}
	tokens := len(text) / 4
	return Response{
		Text: text,
		Usage: Usage{
			PromptTokens:     promptTokens(req.Messages),
			CompletionTokens: tokens,
			TotalTokens:      promptTokens(req.Messages) + tokens,
		},
	}, nil
}

func promptTokens(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += len(msg.Content) / 4
	}
	return total
}
