package category

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"costwise/internal/llm"
	"costwise/internal/llmclient"
	"costwise/internal/logging"
	"costwise/internal/types"
	"costwise/internal/util/jsonutil"
)

// Resolved is the fully merged prompt set and config for one
// category/subcategory pair.
type Resolved struct {
	Prompts PromptModule
	Config  CategoryConfig
}

// Resolver classifies product descriptions and resolves the layered prompt
// modules for the chosen category. The module cache is process-wide and
// read-mostly; entries are only dropped by an explicit Reset.
type Resolver struct {
	client llmclient.ReasoningClient

	mu    sync.RWMutex
	cache map[string]Resolved
}

func NewResolver(client llmclient.ReasoningClient) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[string]Resolved),
	}
}

// NormalizeID lowercases id and collapses runs of non-alphanumerics into a
// single hyphen. Used for cache keys and module table lookups.
func NormalizeID(id string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(id)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Resolve merges the base module, the category module, and the subcategory
// module field by field, most specific wins per field. Results are cached by
// normalized key; concurrent population of the same key is idempotent.
func (r *Resolver) Resolve(category, subcategory string) Resolved {
	catID := NormalizeID(category)
	subID := NormalizeID(subcategory)

	key := catID
	if subID != "" {
		key = catID + "/" + subID
	}

	r.mu.RLock()
	if cached, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	resolved := Resolved{Prompts: baseModule.Prompts, Config: baseModule.Config}
	if mod, ok := moduleTable[catID]; ok {
		mergeModule(&resolved, mod)
	}
	if subID != "" {
		if mod, ok := moduleTable[catID+"/"+subID]; ok {
			mergeModule(&resolved, mod)
		}
	}

	r.mu.Lock()
	r.cache[key] = resolved
	r.mu.Unlock()
	return resolved
}

// Reset clears the module cache. The cache is never invalidated
// automatically.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]Resolved)
	r.mu.Unlock()
}

// mergeModule overlays the non-empty fields of mod onto dst.
func mergeModule(dst *Resolved, mod Module) {
	if mod.Prompts.Analysis != "" {
		dst.Prompts.Analysis = mod.Prompts.Analysis
	}
	if mod.Prompts.MaterialEstimate != "" {
		dst.Prompts.MaterialEstimate = mod.Prompts.MaterialEstimate
	}
	if mod.Prompts.LaborEstimate != "" {
		dst.Prompts.LaborEstimate = mod.Prompts.LaborEstimate
	}
	if mod.Prompts.OverheadEstimate != "" {
		dst.Prompts.OverheadEstimate = mod.Prompts.OverheadEstimate
	}
	if mod.Prompts.Report != "" {
		dst.Prompts.Report = mod.Prompts.Report
	}
	if len(mod.Config.LaborCategories) > 0 {
		dst.Config.LaborCategories = mod.Config.LaborCategories
	}
	if mod.Config.OverheadLow > 0 {
		dst.Config.OverheadLow = mod.Config.OverheadLow
	}
	if mod.Config.OverheadHigh > 0 {
		dst.Config.OverheadHigh = mod.Config.OverheadHigh
	}
	if mod.Config.DefaultUnit != "" {
		dst.Config.DefaultUnit = mod.Config.DefaultUnit
	}
	if mod.Config.DefaultQuantity > 0 {
		dst.Config.DefaultQuantity = mod.Config.DefaultQuantity
	}
}

// Classify asks the reasoning service to pick a category/subcategory for the
// description. Classification is never fatal: any parse or validation failure
// falls back to DefaultCategory with confidence 0.5.
func (r *Resolver) Classify(ctx context.Context, description string) types.ClassificationResult {
	fallback := types.ClassificationResult{
		Category:   DefaultCategory,
		Confidence: 0.5,
		Reasoning:  "classification unavailable, default category substituted",
	}

	ctx = llm.WithStage(ctx, "classify")
	text, err := r.client.Complete(ctx, classificationPrompt(description), llmclient.CompleteOptions{MaxTokens: 512})
	if err != nil {
		logging.Warn("classification call failed", zap.Error(err))
		return fallback
	}

	var result types.ClassificationResult
	if !jsonutil.Extract(text, jsonutil.ShapeObject, &result) {
		logging.Warn("classification response not parseable", zap.Int("responseLen", len(text)))
		return fallback
	}

	result.Category = NormalizeID(result.Category)
	result.SubCategory = NormalizeID(result.SubCategory)
	if _, ok := Lookup(result.Category); !ok {
		logging.Warn("classifier returned unknown category", zap.String("category", result.Category))
		return fallback
	}
	if result.SubCategory != "" && !LookupSub(result.Category, result.SubCategory) {
		result.SubCategory = ""
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		result.Confidence = 0.5
	}
	return result
}

func classificationPrompt(description string) string {
	var b strings.Builder
	b.WriteString(`Classify the product below into exactly one category and, when applicable,
one subcategory from this list.

Categories:
`)
	for _, def := range Registry {
		fmt.Fprintf(&b, "- %s: %s", def.ID, def.Description)
		if len(def.ExampleTerms) > 0 {
			fmt.Fprintf(&b, " (e.g. %s)", strings.Join(def.ExampleTerms, ", "))
		}
		b.WriteString("\n")
		for _, sub := range def.Subcategories {
			fmt.Fprintf(&b, "  - %s/%s: %s", def.ID, sub.ID, sub.Description)
			if len(sub.ExampleTerms) > 0 {
				fmt.Fprintf(&b, " (e.g. %s)", strings.Join(sub.ExampleTerms, ", "))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString(`
Return STRICT JSON ONLY:
{"category":"string","subCategory":"string","confidence":0.0,"reasoning":"string"}

Product description:
`)
	b.WriteString(description)
	return b.String()
}
