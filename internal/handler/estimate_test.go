package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"costwise/internal/artifact"
	"costwise/internal/category"
	"costwise/internal/history"
	"costwise/internal/llm"
	"costwise/internal/material"
	"costwise/internal/pipeline"
	"costwise/internal/store"
)

func newTestHandler(client *llm.FakeClient) *EstimateHandler {
	st := store.NewMemoryStore()
	return NewEstimateHandler(&pipeline.Pipeline{
		Client:     client,
		Categories: category.NewResolver(client),
		Store:      st,
		Materials:  &material.Resolver{Store: st, Client: client},
		Finder:     history.NewFinder(st, nil, nil),
		Artifacts:  artifact.NewMemoryStore(),
	})
}

func TestHandleEstimate(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())

	body := `{"productDescription":"Chocolate sandwich cookie, 100g pack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleEstimate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp pipeline.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Category != "food" || resp.ApprovalStatus != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.UnitCost != resp.ExWorksCostBreakdown.TotalExWorks {
		t.Fatalf("unit cost must mirror the breakdown total")
	}
}

func TestHandleEstimateMethodNotAllowed(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())
	req := httptest.NewRequest(http.MethodGet, "/api/estimate", nil)
	rec := httptest.NewRecorder()
	h.HandleEstimate(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandleEstimateBadBody(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.HandleEstimate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleEstimateUnprocessableAnalysis(t *testing.T) {
	client := llm.NewFakeClient()
	client.Responses = map[string]string{"analysis": "the model produced no structure"}
	h := newTestHandler(client)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate",
		strings.NewReader(`{"productDescription":"mystery"}`))
	rec := httptest.NewRecorder()
	h.HandleEstimate(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleEstimateStream(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodPost, "/api/estimate/stream",
		strings.NewReader(`{"productDescription":"Chocolate sandwich cookie"}`))
	rec := httptest.NewRecorder()
	h.HandleEstimateStream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"type":"progress"`) {
		t.Fatalf("expected progress events, got: %s", body)
	}
	if !strings.Contains(body, `"type":"complete"`) {
		t.Fatalf("expected terminal complete event, got: %s", body)
	}
}

func TestHandleStartRunAndWatch(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"productDescription":"Chocolate sandwich cookie"}`))
	rec := httptest.NewRecorder()
	h.HandleStartRun(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	runID := accepted["runId"]
	if runID == "" {
		t.Fatalf("expected runId in response")
	}

	watchReq := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/events", nil)
	watchRec := httptest.NewRecorder()
	h.HandleWatch(watchRec, watchReq)

	body := watchRec.Body.String()
	if !strings.Contains(body, `"type":"complete"`) && !strings.Contains(body, "event: close") {
		t.Fatalf("expected stream to terminate, got: %s", body)
	}
	if !strings.Contains(body, `"runId":"`+runID+`"`) {
		t.Fatalf("expected completed run to carry the run id, got: %s", body)
	}
}

func TestHandleStartRunRequiresDescription(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandleStartRun(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleWatchUnknownRun(t *testing.T) {
	h := newTestHandler(llm.NewFakeClient())
	req := httptest.NewRequest(http.MethodGet, "/api/runs/nope/events", nil)
	rec := httptest.NewRecorder()
	h.HandleWatch(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
