package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scorecore/internal/domain"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHandleSubmitErrorWrappedInvalidChart(t *testing.T) {
	h := newTestHandler(t)

	// An out-of-domain tier reaches the handler wrapped, never as the bare
	// sentinel. It must still classify as a client error.
	_, err := domain.ChartKey{SongID: 10000001, Tier: 9, Mode: domain.ModeNormal}.Storage()
	if err == nil {
		t.Fatal("expected an error for tier 9")
	}
	if !errors.Is(err, domain.ErrInvalidChart) {
		t.Fatalf("storage error %v does not wrap the invalid-chart sentinel", err)
	}

	rec := httptest.NewRecorder()
	h.handleSubmitError(rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); resp.Success {
		t.Error("response must not report success")
	}
}

func TestHandleSubmitErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", domain.ErrInvalidRequest, http.StatusBadRequest},
		{"wrapped invalid request", fmt.Errorf("parsing submission: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{"wrapped invalid chart", fmt.Errorf("mode 5: %w", domain.ErrInvalidChart), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("merging attempt: %w", domain.ErrScoreNotFound), http.StatusNotFound},
		{"wrapped unknown course", fmt.Errorf("updating course progress: %w", domain.ErrUnknownCourse), http.StatusNotFound},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handleSubmitError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
