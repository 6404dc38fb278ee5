package store

import (
	"context"
	"testing"

	"costwise/internal/types"
)

func TestFindMaterialPriceExactAndSubstring(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	price, ok, err := s.FindMaterialPrice(ctx, "Wheat Flour")
	if err != nil || !ok {
		t.Fatalf("expected exact match: ok=%v err=%v", ok, err)
	}
	if price.PricePerUnit != 0.55 {
		t.Fatalf("unexpected price: %f", price.PricePerUnit)
	}

	// "refined wheat flour" contains the catalog name as a substring.
	price, ok, err = s.FindMaterialPrice(ctx, "refined wheat flour")
	if err != nil || !ok {
		t.Fatalf("expected substring match: ok=%v err=%v", ok, err)
	}
	if price.Name != "wheat flour" {
		t.Fatalf("unexpected catalog entry: %q", price.Name)
	}

	_, ok, err = s.FindMaterialPrice(ctx, "unobtainium")
	if err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}

	_, ok, _ = s.FindMaterialPrice(ctx, "   ")
	if ok {
		t.Fatalf("blank name must miss")
	}
}

func TestFindLaborRate(t *testing.T) {
	s := NewMemoryStore()
	rate, ok, err := s.FindLaborRate(context.Background(), "Assembly", "medium", "")
	if err != nil || !ok {
		t.Fatalf("expected rate: ok=%v err=%v", ok, err)
	}
	if rate.HourlyRate != 2.9 {
		t.Fatalf("unexpected rate: %f", rate.HourlyRate)
	}

	_, ok, _ = s.FindLaborRate(context.Background(), "levitation", "high", "")
	if ok {
		t.Fatalf("expected miss for unknown process")
	}
}

func TestHistoricalCostsAppendOnlyNewestFirst(t *testing.T) {
	s := NewEmptyMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		rec := types.HistoricalCostRecord{ProductName: name, ProductDescription: name + " product", TotalCost: 1}
		saved, err := s.SaveHistoricalCost(ctx, rec)
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if saved.CreatedAt.IsZero() {
			t.Fatalf("expected CreatedAt to be stamped")
		}
	}

	records, err := s.ListHistoricalCosts(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected limit applied, got %d", len(records))
	}
	if records[0].ProductName != "third" || records[1].ProductName != "second" {
		t.Fatalf("expected newest first: %+v", records)
	}
}
