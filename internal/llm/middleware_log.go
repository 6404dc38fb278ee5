package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"costwise/internal/llmclient"
	"costwise/internal/logging"
)

// WithLogging records every completion call with its stage tag and latency.
func WithLogging() Middleware {
	return func(next llmclient.ReasoningClient) llmclient.ReasoningClient {
		return &logged{next: next}
	}
}

type logged struct {
	next llmclient.ReasoningClient
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) Complete(ctx context.Context, prompt string, opts llmclient.CompleteOptions) (string, error) {
	start := time.Now()
	resp, err := l.next.Complete(ctx, prompt, opts)
	fields := []zap.Field{
		zap.String("client", l.next.Name()),
		zap.String("stage", StageFrom(ctx)),
		zap.Int("promptLen", len(prompt)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		logging.Warn("reasoning call failed", append(fields, zap.Error(err))...)
		return "", err
	}
	logging.Debug("reasoning call ok", append(fields, zap.Int("responseLen", len(resp)))...)
	return resp, nil
}
