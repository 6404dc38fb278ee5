// Package breakdown converts category percentages and the authoritative
// materials total into a reconciled six-bucket ex-works cost, rescaling any
// upstream sub-component detail so the shape survives while the anchor
// numbers move.
package breakdown

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"costwise/internal/logging"
	"costwise/internal/types"
)

const (
	// PercentSumTolerance is how far the six fractions may drift from 1.0
	// before renormalization kicks in.
	PercentSumTolerance = 0.001

	// MinRawMaterialShare floors the raw-material fraction before it is
	// used as a divisor. A near-zero anchor percentage would otherwise
	// blow every bucket up to infinity.
	MinRawMaterialShare = 0.01
)

// ErrDegeneratePercentages indicates the fractions cannot anchor a
// breakdown at all (non-positive or vanishing sum).
var ErrDegeneratePercentages = errors.New("cost percentages are degenerate")

// Compute anchors the whole breakdown to materialsTotal, the one number the
// system can verify. rawEstimatedUnitCost is advisory only and never trusted
// directly; it is logged when it diverges from the implied unit cost.
func Compute(rawEstimatedUnitCost float64, pct types.CostPercentages, materialsTotal float64, details map[string]types.DetailBreakdown) (types.ExWorksCostBreakdown, error) {
	normalized, err := normalizePercentages(pct)
	if err != nil {
		return types.ExWorksCostBreakdown{}, err
	}
	if materialsTotal < 0 {
		return types.ExWorksCostBreakdown{}, fmt.Errorf("materials total is negative: %f", materialsTotal)
	}

	rawShare := normalized.RawMaterial
	if rawShare < MinRawMaterialShare {
		logging.Warn("raw material share clamped",
			zap.Float64("share", rawShare),
			zap.Float64("floor", MinRawMaterialShare))
		rawShare = MinRawMaterialShare
	}

	materials := decimal.NewFromFloat(materialsTotal)
	implied := materials.Div(decimal.NewFromFloat(rawShare))

	if rawEstimatedUnitCost > 0 {
		drift := math.Abs(implied.InexactFloat64()-rawEstimatedUnitCost) / rawEstimatedUnitCost
		if drift > 0.25 {
			logging.Debug("implied unit cost diverges from upstream estimate",
				zap.Float64("implied", implied.InexactFloat64()),
				zap.Float64("upstream", rawEstimatedUnitCost))
		}
	}

	out := types.ExWorksCostBreakdown{
		RawMaterial: materials.Round(4).InexactFloat64(),
		Conversion:  bucket(implied, normalized.Conversion),
		Labour:      bucket(implied, normalized.Labour),
		Packing:     bucket(implied, normalized.Packing),
		Overhead:    bucket(implied, normalized.Overhead),
		Margin:      bucket(implied, normalized.Margin),
	}

	// Recomputed fresh, never copied from upstream.
	out.TotalExWorks = decimal.NewFromFloat(out.RawMaterial).
		Add(decimal.NewFromFloat(out.Conversion)).
		Add(decimal.NewFromFloat(out.Labour)).
		Add(decimal.NewFromFloat(out.Packing)).
		Add(decimal.NewFromFloat(out.Overhead)).
		Add(decimal.NewFromFloat(out.Margin)).
		InexactFloat64()

	if len(details) > 0 {
		out.Details = make(map[string]types.DetailBreakdown, len(details))
		for name, detail := range details {
			total, ok := bucketByName(out, name)
			if !ok {
				continue
			}
			rescaled, ok := Rescale(detail, total)
			if !ok {
				continue
			}
			out.Details[name] = rescaled
		}
		if len(out.Details) == 0 {
			out.Details = nil
		}
	}
	return out, nil
}

// Rescale multiplies every sub-component cost by
// authoritativeTotal / detailTotal, leaving percentages untouched, and sets
// the detail total to the authoritative bucket value. Rounding residue is
// pushed into the largest sub-component so sum(cost) equals the total
// exactly. Reports false for a detail that has nothing to scale.
func Rescale(detail types.DetailBreakdown, authoritativeTotal float64) (types.DetailBreakdown, bool) {
	if len(detail.SubComponents) == 0 {
		return types.DetailBreakdown{}, false
	}

	upstream := decimal.NewFromFloat(detail.Total)
	if upstream.IsZero() {
		sum := decimal.Zero
		for _, sub := range detail.SubComponents {
			sum = sum.Add(decimal.NewFromFloat(sub.Cost))
		}
		upstream = sum
	}
	if upstream.LessThanOrEqual(decimal.Zero) {
		return types.DetailBreakdown{}, false
	}

	target := decimal.NewFromFloat(authoritativeTotal).Round(4)
	scale := target.Div(upstream)

	out := types.DetailBreakdown{
		Total:         target.InexactFloat64(),
		SubComponents: make([]types.CostSubComponent, len(detail.SubComponents)),
	}

	sum := decimal.Zero
	largest := 0
	for i, sub := range detail.SubComponents {
		scaled := decimal.NewFromFloat(sub.Cost).Mul(scale).Round(4)
		sub.Cost = scaled.InexactFloat64()
		out.SubComponents[i] = sub
		sum = sum.Add(scaled)
		if sub.Cost > out.SubComponents[largest].Cost {
			largest = i
		}
	}

	if residue := target.Sub(sum); !residue.IsZero() {
		adjusted := decimal.NewFromFloat(out.SubComponents[largest].Cost).Add(residue)
		out.SubComponents[largest].Cost = adjusted.InexactFloat64()
	}
	return out, true
}

// normalizePercentages validates the six fractions and renormalizes them by
// their sum when it drifts beyond the tolerance.
func normalizePercentages(pct types.CostPercentages) (types.CostPercentages, error) {
	for _, v := range []float64{pct.RawMaterial, pct.Conversion, pct.Labour, pct.Packing, pct.Overhead, pct.Margin} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return types.CostPercentages{}, fmt.Errorf("%w: invalid fraction %f", ErrDegeneratePercentages, v)
		}
	}
	sum := pct.Sum()
	if sum < 1e-9 {
		return types.CostPercentages{}, ErrDegeneratePercentages
	}
	if math.Abs(sum-1) <= PercentSumTolerance {
		return pct, nil
	}
	logging.Warn("cost percentages renormalized", zap.Float64("sum", sum))
	return types.CostPercentages{
		RawMaterial: pct.RawMaterial / sum,
		Conversion:  pct.Conversion / sum,
		Labour:      pct.Labour / sum,
		Packing:     pct.Packing / sum,
		Overhead:    pct.Overhead / sum,
		Margin:      pct.Margin / sum,
	}, nil
}

func bucket(implied decimal.Decimal, share float64) float64 {
	return implied.Mul(decimal.NewFromFloat(share)).Round(4).InexactFloat64()
}

func bucketByName(b types.ExWorksCostBreakdown, name string) (float64, bool) {
	switch name {
	case "rawMaterial":
		return b.RawMaterial, true
	case "conversion":
		return b.Conversion, true
	case "labour":
		return b.Labour, true
	case "packing":
		return b.Packing, true
	case "overhead":
		return b.Overhead, true
	case "margin":
		return b.Margin, true
	default:
		return 0, false
	}
}
