package category

// PromptModule is the per-category template set. Empty fields inherit from
// the next less specific module during resolution.
type PromptModule struct {
	Analysis         string
	MaterialEstimate string
	LaborEstimate    string
	OverheadEstimate string
	Report           string
}

// CategoryConfig carries numeric defaults resolved alongside prompts.
// Zero values inherit from the less specific module.
type CategoryConfig struct {
	LaborCategories []string
	OverheadLow     float64
	OverheadHigh    float64
	DefaultUnit     string
	DefaultQuantity float64
}

// Module is one provider in the layered resolution chain: it may supply any
// subset of prompt and config fields.
type Module struct {
	Prompts PromptModule
	Config  CategoryConfig
}

// baseModule supplies every field; it is the final fallback so a category
// with no dedicated module still resolves a full prompt set.
var baseModule = Module{
	Prompts: PromptModule{
		Analysis: `You are a manufacturing cost analyst. Analyse the product described below and
decompose its per-unit ex-works cost.

Return STRICT JSON ONLY:
{
  "productName": "string",
  "components": [{"name":"string","material":"string","quantity":0.0,"unit":"string"}],
  "rawEstimatedUnitCost": 0.0,
  "costPercentages": {"rawMaterial":0.0,"conversion":0.0,"labour":0.0,"packing":0.0,"overhead":0.0,"margin":0.0},
  "details": {
    "conversion": {"total":0.0,"subComponents":[{"name":"string","cost":0.0,"percentage":0.0}]},
    "labour": {"total":0.0,"subComponents":[{"name":"string","cost":0.0,"percentage":0.0,"processType":"string","skillLevel":"string","hours":0.0}]}
  }
}

Constraints:
- costPercentages must sum to 1.0.
- components lists per-unit quantities in consistent units.
- Scale conversion assumptions to the annual unit movement if provided.`,
		MaterialEstimate: `You are a procurement pricing assistant. For each item below, estimate a
realistic bulk price per unit in USD.

Return STRICT JSON ONLY as an array:
[{"name":"string","material":"string","pricePerUnit":0.0,"unit":"string"}]

Include one entry per input item, keyed by the same name and material.`,
		LaborEstimate: `Estimate the direct labour processes required to manufacture the product
below. Return STRICT JSON ONLY:
[{"processType":"string","skillLevel":"low|medium|high","hours":0.0}]`,
		OverheadEstimate: `Estimate factory overhead drivers for the product below as fractions of the
overhead bucket. Return STRICT JSON ONLY:
[{"name":"string","percentage":0.0}]`,
		Report: `Write a concise procurement negotiation brief for the cost estimate below.
Reference the six-bucket breakdown and the comparable historical products.
Use plain prose, no JSON.`,
	},
	Config: CategoryConfig{
		LaborCategories: []string{"machine operation", "assembly", "quality control", "packing"},
		OverheadLow:     0.05,
		OverheadHigh:    0.15,
		DefaultUnit:     "piece",
		DefaultQuantity: 1,
	},
}

// moduleTable maps normalized category and subcategory ids to their partial
// overrides. Keys follow NormalizeID; subcategory keys are "category/sub".
var moduleTable = map[string]Module{
	"food": {
		Prompts: PromptModule{
			Analysis: `You are a food manufacturing cost analyst. Decompose the per-unit ex-works
cost of the packaged food product described below. Account for recipe
ingredients, processing (mixing, baking/frying, forming), primary and
secondary packaging.

Return STRICT JSON ONLY:
{
  "productName": "string",
  "components": [{"name":"string","material":"string","quantity":0.0,"unit":"kg"}],
  "rawEstimatedUnitCost": 0.0,
  "costPercentages": {"rawMaterial":0.0,"conversion":0.0,"labour":0.0,"packing":0.0,"overhead":0.0,"margin":0.0},
  "details": {
    "conversion": {"total":0.0,"subComponents":[{"name":"string","cost":0.0,"percentage":0.0}]}
  }
}

Constraints:
- costPercentages must sum to 1.0.
- Quantities are per single retail unit, in kg.
- Scale line-speed and energy assumptions to the annual unit movement if provided.`,
		},
		Config: CategoryConfig{
			LaborCategories: []string{"line operation", "quality control", "packing"},
			DefaultUnit:     "kg",
			DefaultQuantity: 0.001,
		},
	},
	"food/biscuits-cookies": {
		Prompts: PromptModule{
			MaterialEstimate: `You are a bakery ingredients buyer. For each ingredient or packaging item
below, estimate a realistic bulk commodity price per kg in USD.

Return STRICT JSON ONLY as an array:
[{"name":"string","material":"string","pricePerUnit":0.0,"unit":"kg"}]

Include one entry per input item, keyed by the same name and material.`,
		},
	},
	"beverages": {
		Config: CategoryConfig{
			DefaultUnit:     "litre",
			DefaultQuantity: 0.001,
		},
	},
	"electronics": {
		Prompts: PromptModule{
			Analysis: `You are an electronics manufacturing cost analyst. Decompose the per-unit
ex-works cost of the device described below. Account for the bill of
materials, PCB assembly, enclosure, testing, and packaging.

Return STRICT JSON ONLY:
{
  "productName": "string",
  "components": [{"name":"string","material":"string","quantity":0.0,"unit":"piece"}],
  "rawEstimatedUnitCost": 0.0,
  "costPercentages": {"rawMaterial":0.0,"conversion":0.0,"labour":0.0,"packing":0.0,"overhead":0.0,"margin":0.0},
  "details": {
    "conversion": {"total":0.0,"subComponents":[{"name":"string","cost":0.0,"percentage":0.0}]},
    "labour": {"total":0.0,"subComponents":[{"name":"string","cost":0.0,"percentage":0.0,"processType":"string","skillLevel":"string","hours":0.0}]}
  }
}

Constraints:
- costPercentages must sum to 1.0.
- components list discrete parts with per-unit counts.`,
		},
		Config: CategoryConfig{
			LaborCategories: []string{"smt operation", "assembly", "testing", "packing"},
			OverheadLow:     0.08,
			OverheadHigh:    0.18,
			DefaultUnit:     "piece",
			DefaultQuantity: 1,
		},
	},
	"apparel": {
		Config: CategoryConfig{
			LaborCategories: []string{"cutting", "stitching", "finishing", "packing"},
			DefaultUnit:     "piece",
			DefaultQuantity: 1,
		},
	},
}
