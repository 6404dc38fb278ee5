// Package types holds the request-scoped records exchanged between pipeline
// stages. All of these are created by one pipeline invocation and discarded
// at request end; none are shared across requests.
package types

import "time"

// ProductComponent is one physical part of the product, as extracted from the
// analysis response and normalized.
type ProductComponent struct {
	Name     string  `json:"name"`
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MaterialCostItem is a priced component line item.
// TotalCost is always round4(Quantity * PricePerUnit).
type MaterialCostItem struct {
	Component    string  `json:"component"`
	Material     string  `json:"material"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalCost    float64 `json:"totalCost"`
	Source       string  `json:"source,omitempty"` // catalog | similarity | estimate | fallback
}

// CostPercentages are the six cost-bucket fractions. They must sum to 1.0
// within a tolerance of 0.001.
type CostPercentages struct {
	RawMaterial float64 `json:"rawMaterial"`
	Conversion  float64 `json:"conversion"`
	Labour      float64 `json:"labour"`
	Packing     float64 `json:"packing"`
	Overhead    float64 `json:"overhead"`
	Margin      float64 `json:"margin"`
}

// Sum returns the total of the six fractions.
func (p CostPercentages) Sum() float64 {
	return p.RawMaterial + p.Conversion + p.Labour + p.Packing + p.Overhead + p.Margin
}

// CostSubComponent is one line in a bucket's detail breakdown.
type CostSubComponent struct {
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	Percentage  float64 `json:"percentage"`
	Description string  `json:"description,omitempty"`
	ProcessType string  `json:"processType,omitempty"`
	SkillLevel  string  `json:"skillLevel,omitempty"`
	Hours       float64 `json:"hours,omitempty"`
}

// DetailBreakdown decomposes a single bucket into sub-drivers.
// Within one detail, percentages sum to 1.0 and sum(Cost) equals Total.
type DetailBreakdown struct {
	Total         float64            `json:"total"`
	SubComponents []CostSubComponent `json:"subComponents"`
}

// ExWorksCostBreakdown is the reconciled six-bucket unit cost.
// TotalExWorks is always recomputed as the sum of the six buckets.
type ExWorksCostBreakdown struct {
	RawMaterial  float64 `json:"rawMaterial"`
	Conversion   float64 `json:"conversion"`
	Labour       float64 `json:"labour"`
	Packing      float64 `json:"packing"`
	Overhead     float64 `json:"overhead"`
	Margin       float64 `json:"margin"`
	TotalExWorks float64 `json:"totalExWorks"`

	Details map[string]DetailBreakdown `json:"details,omitempty"`
}

// ClassificationResult is the outcome of the category classification call.
// Ephemeral, never persisted.
type ClassificationResult struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// HistoricalCostRecord is an append-only record of an approved estimate.
type HistoricalCostRecord struct {
	ProductName        string               `json:"productName"`
	ProductDescription string               `json:"productDescription"`
	TotalCost          float64              `json:"totalCost"`
	Breakdown          ExWorksCostBreakdown `json:"breakdown"`
	CreatedAt          time.Time            `json:"createdAt"`
}

// MaterialPrice is a catalog entry for a priced material.
type MaterialPrice struct {
	Name         string  `json:"name"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Unit         string  `json:"unit"`
}

// LaborRate is a catalog entry for an hourly labor rate.
type LaborRate struct {
	ProcessType string  `json:"processType"`
	SkillLevel  string  `json:"skillLevel"`
	Region      string  `json:"region"`
	HourlyRate  float64 `json:"hourlyRate"`
}
