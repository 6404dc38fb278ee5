package jsonutil

import "testing"

func TestExtractObjectFromNoise(t *testing.T) {
	var out map[string]int
	if !Extract(`noise {"a":1} trailing`, ShapeObject, &out) {
		t.Fatalf("expected extraction to succeed")
	}
	if out["a"] != 1 {
		t.Fatalf("unexpected value: %v", out)
	}
}

func TestExtractObjectUnbalanced(t *testing.T) {
	if raw := ExtractRaw(`noise {"a":1 trailing`, ShapeObject); raw != nil {
		t.Fatalf("expected nil for unbalanced brackets, got %s", raw)
	}
	if raw := ExtractRaw(`no brackets at all`, ShapeObject); raw != nil {
		t.Fatalf("expected nil for absent brackets, got %s", raw)
	}
}

func TestExtractArray(t *testing.T) {
	var out []float64
	if !Extract("prefix [1, 2, 3] suffix", ShapeArray, &out) {
		t.Fatalf("expected extraction to succeed")
	}
	if len(out) != 3 || out[2] != 3 {
		t.Fatalf("unexpected array: %v", out)
	}
}

func TestExtractWholeTextVerbatim(t *testing.T) {
	var out map[string]string
	if !Extract(`{"k":"v"}`, ShapeObject, &out) {
		t.Fatalf("expected verbatim parse")
	}
	if out["k"] != "v" {
		t.Fatalf("unexpected value: %v", out)
	}
}

func TestExtractShapeMismatch(t *testing.T) {
	// A bare object must not satisfy an array request.
	if raw := ExtractRaw(`{"a":1}`, ShapeArray); raw != nil {
		t.Fatalf("expected nil for shape mismatch, got %s", raw)
	}
}

func TestExtractGreedySpanCoversNestedBraces(t *testing.T) {
	var out map[string]any
	if !Extract(`x {"outer":{"inner":2}} y`, ShapeObject, &out) {
		t.Fatalf("expected extraction to succeed")
	}
	if _, ok := out["outer"]; !ok {
		t.Fatalf("missing nested object: %v", out)
	}
}

func TestNumberCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{"2.25", 2.25, true},
		{"not a number", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := Number(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Number(%v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
