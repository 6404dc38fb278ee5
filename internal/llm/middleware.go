// Package llm layers cross-cutting behavior over a ReasoningClient and
// carries the stage marker used for logging and the offline fake client.
package llm

import (
	"context"

	"costwise/internal/llmclient"
)

// Middleware decorates a ReasoningClient.
type Middleware func(next llmclient.ReasoningClient) llmclient.ReasoningClient

// Chain applies middlewares so the first listed is outermost.
func Chain(client llmclient.ReasoningClient, mws ...Middleware) llmclient.ReasoningClient {
	for i := len(mws) - 1; i >= 0; i-- {
		client = mws[i](client)
	}
	return client
}

type stageKey struct{}

// WithStage tags the context with the pipeline stage issuing the call.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFrom returns the stage tag, or "" when untagged.
func StageFrom(ctx context.Context) string {
	if v, ok := ctx.Value(stageKey{}).(string); ok {
		return v
	}
	return ""
}
