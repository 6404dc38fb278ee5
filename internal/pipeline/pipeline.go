// Package pipeline orchestrates the category-aware cost decomposition:
// classify, resolve prompts, analyse, extract, price materials, reconcile the
// breakdown, and on approval find comparables, generate the report, and save
// the historical record. Stages run sequentially; each stage's input depends
// on the prior stage's output.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"costwise/internal/artifact"
	"costwise/internal/breakdown"
	"costwise/internal/category"
	"costwise/internal/extract"
	"costwise/internal/history"
	"costwise/internal/llm"
	"costwise/internal/llmclient"
	"costwise/internal/logging"
	"costwise/internal/material"
	"costwise/internal/store"
	"costwise/internal/types"
	"costwise/internal/util/jsonutil"
)

// Currency is the fixed currency of all estimates.
const Currency = "USD"

// Request is the pipeline input. Action "approve" together with CurrentState
// runs only the report stage on an already computed breakdown.
type Request struct {
	ProductDescription string    `json:"productDescription"`
	Action             string    `json:"action,omitempty"`
	CurrentState       *Response `json:"currentState,omitempty"`
	AUM                float64   `json:"aum,omitempty"`
}

// Response is the pipeline output.
type Response struct {
	RunID                string                       `json:"runId,omitempty"`
	ProductName          string                       `json:"productName,omitempty"`
	ProductDescription   string                       `json:"productDescription"`
	Category             string                       `json:"category"`
	SubCategory          string                       `json:"subCategory,omitempty"`
	Confidence           float64                      `json:"confidence"`
	Components           []types.ProductComponent     `json:"components"`
	MaterialCosts        []types.MaterialCostItem     `json:"materialCosts"`
	MaterialsTotal       float64                      `json:"materialsTotal"`
	ExWorksCostBreakdown types.ExWorksCostBreakdown   `json:"exWorksCostBreakdown"`
	CostPercentages      types.CostPercentages        `json:"costPercentages"`
	UnitCost             float64                      `json:"unitCost"`
	Currency             string                       `json:"currency"`
	ApprovalStatus       string                       `json:"approvalStatus"`
	Report               string                       `json:"report,omitempty"`
	Comparables          []types.HistoricalCostRecord `json:"comparables,omitempty"`
}

// Pipeline wires the collaborators for one deployment. Safe for concurrent
// use; all request state lives in the invocation.
type Pipeline struct {
	Client     llmclient.ReasoningClient
	Categories *category.Resolver
	Store      store.Store
	Materials  *material.Resolver
	Finder     *history.Finder
	Artifacts  artifact.Store
}

// Run executes the pipeline for req. emit may be nil for synchronous
// callers; when set, one progress event is pushed per completed stage. The
// terminal complete/error event is emitted by Run's caller wrappers, not
// here.
func (p *Pipeline) Run(ctx context.Context, req Request, emit func(Event)) (*Response, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	if strings.TrimSpace(req.ProductDescription) == "" && req.CurrentState == nil {
		return nil, fmt.Errorf("productDescription is required")
	}

	if req.Action == "approve" && req.CurrentState != nil {
		return p.approve(ctx, req, emit)
	}

	runID := uuid.NewString()

	classification := p.Categories.Classify(ctx, req.ProductDescription)
	emit(Event{Type: EventProgress, Step: "classify", Percent: 15,
		Details: classification.Category + "/" + classification.SubCategory})

	resolved := p.Categories.Resolve(classification.Category, classification.SubCategory)
	emit(Event{Type: EventProgress, Step: "resolve-modules", Percent: 25})

	analysisText, err := p.Client.Complete(llm.WithStage(ctx, "analysis"),
		analysisPrompt(resolved.Prompts.Analysis, req), llmclient.CompleteOptions{MaxTokens: 4096})
	if err != nil {
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}
	emit(Event{Type: EventProgress, Step: "analysis", Percent: 45})

	defaults := extract.DefaultsFor(resolved.Config.DefaultUnit, resolved.Config.DefaultQuantity)
	analysis, err := extract.Analysis(analysisText, defaults)
	if err != nil {
		// The one fatal extraction failure: with no components there is
		// nothing to decompose.
		return nil, err
	}
	emit(Event{Type: EventProgress, Step: "extract", Percent: 55,
		Details: fmt.Sprintf("%d components", len(analysis.Components))})

	materials, err := p.Materials.Resolve(ctx, analysis.Components, resolved.Prompts.MaterialEstimate)
	if err != nil {
		return nil, fmt.Errorf("material resolution failed: %w", err)
	}
	emit(Event{Type: EventProgress, Step: "materials", Percent: 75,
		Details: fmt.Sprintf("total %.4f", materials.MaterialsTotal)})

	p.enrichLabourDetail(ctx, analysis.Details)

	bd, err := breakdown.Compute(analysis.RawEstimatedUnitCost, analysis.CostPercentages,
		materials.MaterialsTotal, analysis.Details)
	if err != nil {
		return nil, fmt.Errorf("breakdown computation failed: %w", err)
	}
	emit(Event{Type: EventProgress, Step: "breakdown", Percent: 90})

	return &Response{
		RunID:                runID,
		ProductName:          analysis.ProductName,
		ProductDescription:   req.ProductDescription,
		Category:             classification.Category,
		SubCategory:          classification.SubCategory,
		Confidence:           classification.Confidence,
		Components:           analysis.Components,
		MaterialCosts:        materials.MaterialCosts,
		MaterialsTotal:       materials.MaterialsTotal,
		ExWorksCostBreakdown: bd,
		CostPercentages:      analysis.CostPercentages,
		UnitCost:             bd.TotalExWorks,
		Currency:             Currency,
		ApprovalStatus:       "pending",
	}, nil
}

// approve runs only the report stage on an already computed breakdown:
// comparables, report text, historical record, report artifact.
func (p *Pipeline) approve(ctx context.Context, req Request, emit func(Event)) (*Response, error) {
	state := *req.CurrentState
	if state.RunID == "" {
		state.RunID = uuid.NewString()
	}
	if state.ProductDescription == "" {
		state.ProductDescription = req.ProductDescription
	}

	comparables := p.Finder.FindSimilar(ctx, state.ProductDescription, history.DefaultLimit)
	state.Comparables = comparables
	emit(Event{Type: EventProgress, Step: "comparables", Percent: 40,
		Details: fmt.Sprintf("%d records", len(comparables))})

	resolved := p.Categories.Resolve(state.Category, state.SubCategory)
	report, err := p.generateReport(ctx, resolved.Prompts.Report, state)
	if err != nil {
		logging.Warn("report generation failed", zap.Error(err))
		report = ""
	}
	state.Report = report
	emit(Event{Type: EventProgress, Step: "report", Percent: 75})

	record := types.HistoricalCostRecord{
		ProductName:        nonEmpty(state.ProductName, state.ProductDescription),
		ProductDescription: state.ProductDescription,
		TotalCost:          state.ExWorksCostBreakdown.TotalExWorks,
		Breakdown:          state.ExWorksCostBreakdown,
	}
	saved, err := p.Store.SaveHistoricalCost(ctx, record)
	if err != nil {
		// Non-fatal: the report is still returned.
		logging.Warn("historical record save failed", zap.Error(err))
	} else {
		p.Finder.IndexRecord(ctx, saved)
	}

	if p.Artifacts != nil && report != "" {
		if err := p.Artifacts.Put(ctx, state.RunID, "report.md", []byte(report)); err != nil {
			logging.Warn("report artifact save failed", zap.String("runId", state.RunID), zap.Error(err))
		}
	}
	emit(Event{Type: EventProgress, Step: "save", Percent: 95})

	state.ApprovalStatus = "approved"
	return &state, nil
}

func (p *Pipeline) generateReport(ctx context.Context, prompt string, state Response) (string, error) {
	payload := map[string]any{
		"productName":          state.ProductName,
		"productDescription":   state.ProductDescription,
		"category":             state.Category,
		"exWorksCostBreakdown": state.ExWorksCostBreakdown,
		"materialCosts":        state.MaterialCosts,
		"currency":             state.Currency,
		"comparables":          state.Comparables,
	}
	// No HTML escaping: the payload goes into a prompt, not a browser.
	raw, err := jsonutil.MarshalNoEscape(payload)
	if err != nil {
		return "", err
	}
	full := prompt + "\n\n[ESTIMATE JSON]\n" + string(raw)
	return p.Client.Complete(llm.WithStage(ctx, "report"), full, llmclient.CompleteOptions{MaxTokens: 2048})
}

// enrichLabourDetail re-prices labour sub-components from the catalog rate
// when the analysis names a process and hours. The detail total and
// percentages are recomputed from the updated costs; the breakdown engine
// rescales afterwards.
func (p *Pipeline) enrichLabourDetail(ctx context.Context, details map[string]types.DetailBreakdown) {
	detail, ok := details["labour"]
	if !ok || len(detail.SubComponents) == 0 {
		return
	}

	changed := false
	total := 0.0
	for i, sub := range detail.SubComponents {
		if sub.ProcessType != "" && sub.Hours > 0 {
			if rate, found, err := p.Store.FindLaborRate(ctx, sub.ProcessType, sub.SkillLevel, ""); err == nil && found {
				detail.SubComponents[i].Cost = sub.Hours * rate.HourlyRate
				changed = true
			}
		}
		total += detail.SubComponents[i].Cost
	}
	if !changed || total <= 0 {
		return
	}

	detail.Total = total
	for i := range detail.SubComponents {
		detail.SubComponents[i].Percentage = detail.SubComponents[i].Cost / total
	}
	details["labour"] = detail
}

func analysisPrompt(prompt string, req Request) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nProduct description:\n")
	b.WriteString(req.ProductDescription)
	if req.AUM > 0 {
		fmt.Fprintf(&b, "\n\nAnnual unit movement: %.0f units", req.AUM)
	}
	return b.String()
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
