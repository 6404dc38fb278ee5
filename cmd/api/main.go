package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"costwise/internal/artifact"
	"costwise/internal/category"
	"costwise/internal/config"
	"costwise/internal/handler"
	"costwise/internal/history"
	"costwise/internal/llm"
	"costwise/internal/llmclient"
	"costwise/internal/logging"
	"costwise/internal/material"
	"costwise/internal/pipeline"
	"costwise/internal/server"
	"costwise/internal/similarity"
	"costwise/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}
	if err := logging.Initialize(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	}); err != nil {
		os.Exit(1)
	}
	defer logging.Sync()

	ctx := context.Background()

	client, err := buildReasoningClient(ctx, cfg)
	if err != nil {
		logging.Error("failed to init reasoning client", zap.Error(err))
		os.Exit(1)
	}
	defer client.Close()

	st := store.New(cfg.PostgresDSN)
	defer st.Close()

	embedder, materialIndex := buildSimilarity(ctx, cfg, st)

	finder := history.NewFinder(st, embedder, similarity.NewMemoryIndex())
	warmHistoryIndex(ctx, st, finder)

	materials := &material.Resolver{Store: st, Client: client}
	if embedder != nil && materialIndex != nil {
		materials.Embedder = embedder
		materials.Index = materialIndex
	}

	p := &pipeline.Pipeline{
		Client:     client,
		Categories: category.NewResolver(client),
		Store:      st,
		Materials:  materials,
		Finder:     finder,
		Artifacts:  buildArtifactStore(cfg),
	}

	srv := server.New(cfg.Port, server.NewMux(handler.NewEstimateHandler(p)))

	go func() {
		if err := srv.Start(); err != nil {
			logging.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("forced shutdown", zap.Error(err))
	}
}

func buildReasoningClient(ctx context.Context, cfg *config.Config) (llmclient.ReasoningClient, error) {
	var base llmclient.ReasoningClient
	if cfg.UseFakeLLM || cfg.GeminiAPIKey == "" {
		logging.Info("using offline fake reasoning client")
		base = llm.NewFakeClient()
	} else {
		gemini, err := llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, 0)
		if err != nil {
			return nil, err
		}
		base = gemini
	}
	return llm.Chain(base,
		llm.WithLogging(),
		llm.Retry(3, 500*time.Millisecond),
	), nil
}

// buildSimilarity initializes the embedding engine and indexes the material
// catalog. Both are optional: without an API key the similarity tier is
// simply skipped.
func buildSimilarity(ctx context.Context, cfg *config.Config, st store.Store) (similarity.Embedder, *similarity.MemoryIndex) {
	if cfg.GeminiAPIKey == "" || cfg.UseFakeLLM {
		return nil, nil
	}
	embedder, err := similarity.NewGenAIEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		logging.Warn("embedding engine unavailable, similarity tier disabled", zap.Error(err))
		return nil, nil
	}

	index := similarity.NewMemoryIndex()
	prices, err := st.ListMaterialPrices(ctx)
	if err != nil {
		logging.Warn("catalog listing failed, similarity tier disabled", zap.Error(err))
		return embedder, nil
	}
	for _, price := range prices {
		vector, err := embedder.Embed(ctx, price.Name)
		if err != nil {
			logging.Warn("failed to embed catalog entry", zap.String("material", price.Name), zap.Error(err))
			continue
		}
		index.Add(price.Name, price.Name, vector, price)
	}
	logging.Info("material similarity index ready", zap.Int("entries", index.Len()))
	return embedder, index
}

func warmHistoryIndex(ctx context.Context, st store.Store, finder *history.Finder) {
	records, err := st.ListHistoricalCosts(ctx, 200)
	if err != nil {
		logging.Warn("could not warm history index", zap.Error(err))
		return
	}
	for _, rec := range records {
		finder.IndexRecord(ctx, rec)
	}
}

func buildArtifactStore(cfg *config.Config) artifact.Store {
	if !cfg.Artifact.Enabled {
		return artifact.NewMemoryStore()
	}
	s3, err := artifact.NewS3Store(artifact.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
	})
	if err != nil {
		logging.Warn("report artifact store unavailable, using memory store", zap.Error(err))
		return artifact.NewMemoryStore()
	}
	return s3
}
