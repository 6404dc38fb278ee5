package llm

import (
	"context"

	"costwise/internal/llmclient"
)

// FakeClient returns deterministic, minimal payloads per stage for
// offline/testing. Responses include surrounding prose on purpose so the
// extraction path is exercised end to end.
type FakeClient struct {
	// Responses overrides the canned text for a stage when set.
	Responses map[string]string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, prompt string, opts llmclient.CompleteOptions) (string, error) {
	stage := StageFrom(ctx)
	if f.Responses != nil {
		if resp, ok := f.Responses[stage]; ok {
			return resp, nil
		}
	}
	switch stage {
	case "classify":
		return `Here is the classification:
{"category":"food","subCategory":"biscuits-cookies","confidence":0.9,"reasoning":"fake classification"}`, nil
	case "analysis":
		return `{
  "productName": "Sample Product",
  "components": [
    {"name": "Wheat Flour", "material": "wheat flour", "quantity": 0.06, "unit": "kg"},
    {"name": "Sugar", "material": "sugar", "quantity": 0.03, "unit": "kg"},
    {"name": "Wrapper", "material": "bopp film", "quantity": 0.002, "unit": "kg"}
  ],
  "rawEstimatedUnitCost": 0.5,
  "costPercentages": {"rawMaterial": 0.45, "conversion": 0.15, "labour": 0.1, "packing": 0.1, "overhead": 0.1, "margin": 0.1},
  "details": {
    "conversion": {
      "total": 0.15,
      "subComponents": [
        {"name": "Equipment depreciation", "cost": 0.09, "percentage": 0.6},
        {"name": "Utilities", "cost": 0.06, "percentage": 0.4}
      ]
    }
  }
}`, nil
	case "material_estimate":
		return `[
  {"name": "Wheat Flour", "material": "wheat flour", "pricePerUnit": 0.55, "unit": "kg"},
  {"name": "Sugar", "material": "sugar", "pricePerUnit": 0.7, "unit": "kg"},
  {"name": "Wrapper", "material": "bopp film", "pricePerUnit": 2.1, "unit": "kg"}
]`, nil
	case "report":
		return "Cost estimate report (offline mode): totals reconcile with the computed breakdown.", nil
	default:
		return "{}", nil
	}
}
