package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/learnstreak/internal/app"
)

// ProgressHandler serves progress summaries.
type ProgressHandler struct {
	deps         Dependencies
	maxEvents    int
	maxBatchSize int
	maxBodyBytes int64
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps Dependencies, maxEvents, maxBatchSize int, maxBodyBytes int64) *ProgressHandler {
	return &ProgressHandler{
		deps:         deps,
		maxEvents:    maxEvents,
		maxBatchSize: maxBatchSize,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleSummary handles POST /v1/progress requests.
func (h *ProgressHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var body progressRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.checkEvents(body); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := body.toService()
	if err != nil {
		writeError(w, r, err)
		return
	}

	sum, err := h.deps.Summarize(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

// HandleBatch handles POST /v1/progress/batch requests.
func (h *ProgressHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if len(body.Requests) > h.maxBatchSize {
		writeError(w, r, fmt.Errorf("%w: %d requests exceed the limit of %d", ErrPayloadTooLarge, len(body.Requests), h.maxBatchSize))
		return
	}

	reqs := make([]service.Request, 0, len(body.Requests))
	for i, p := range body.Requests {
		if err := h.checkEvents(p); err != nil {
			writeError(w, r, fmt.Errorf("requests[%d]: %w", i, err))
			return
		}
		req, err := p.toService()
		if err != nil {
			writeError(w, r, fmt.Errorf("requests[%d]: %w", i, err))
			return
		}
		reqs = append(reqs, req)
	}

	sums, err := h.deps.SummarizeBatch(r.Context(), reqs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := batchResponse{Summaries: make([]summaryResponse, len(sums))}
	for i, s := range sums {
		out.Summaries[i] = newSummaryResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProgressHandler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrPayloadTooLarge, maxBytes.Limit)
		}
		return fmt.Errorf("%w: malformed json: %w", ErrBadRequest, err)
	}
	return validateStruct(v)
}

func (h *ProgressHandler) checkEvents(p progressRequest) error {
	if len(p.Events) > h.maxEvents {
		return fmt.Errorf("%w: %d events exceed the limit of %d", ErrPayloadTooLarge, len(p.Events), h.maxEvents)
	}
	return nil
}
