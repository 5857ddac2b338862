package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/RiceStickChicken/receipt-tracker/internal/analytics"
	"github.com/RiceStickChicken/receipt-tracker/internal/money"
	"github.com/RiceStickChicken/receipt-tracker/internal/receipt"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSON encodes v as the JSON response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeStoreError maps store failures onto HTTP status codes. Validation
// failures name the offending field; unknown ids are 404s.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *receipt.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, receipt.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "receipt not found",
		})
	default:
		slog.Error("Store error", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// intQuery reads a positive integer query parameter, falling back to def
// when absent or unusable.
func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListReceipts returns receipts ranked most recent first. The
// optional limit parameter caps the result for "recent N" views.
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", -1)
	receipts := analytics.Recent(s.store.List(), limit)
	writeJSON(w, http.StatusOK, receipts)
}

// handleGetReceipt returns a single receipt by id
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, rec := range s.store.List() {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeStoreError(w, receipt.ErrNotFound)
}

// createRequest is NewReceiptFields plus an optional decimal "total"
// string. Clients send the amount as typed ("12.50", "12,50") and the
// conversion to cents happens here, never in client-side float math.
type createRequest struct {
	receipt.NewReceiptFields
	Total string `json:"total,omitempty"`
}

// updateRequest is Patch plus the same optional decimal total.
type updateRequest struct {
	receipt.Patch
	Total *string `json:"total,omitempty"`
}

func invalidTotal(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": "invalid total: must be a non-negative decimal amount",
		"field": "total",
	})
}

// handleCreateReceipt records a new receipt. A decimal "total" takes
// precedence over "totalCents" when both are present.
func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Total != "" {
		cents, err := money.ParseDecimal(req.Total)
		if err != nil {
			invalidTotal(w)
			return
		}
		req.TotalCents = cents
	}

	created, err := s.store.Create(req.NewReceiptFields)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateReceipt applies a partial update to a receipt
func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Total != nil {
		cents, err := money.ParseDecimal(*req.Total)
		if err != nil {
			invalidTotal(w)
			return
		}
		req.TotalCents = &cents
	}

	updated, err := s.store.Update(r.PathValue("id"), req.Patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteReceipt removes a receipt. Deleting twice is fine.
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// statsResponse is the 30-day spending overview
type statsResponse struct {
	WindowDays         int    `json:"windowDays"`
	TotalCents         int64  `json:"totalCents"`
	Total              string `json:"total"`
	ReceiptCount       int    `json:"receiptCount"`
	AverageCents       int64  `json:"averageCents"`
	AveragePerDayCents int64  `json:"averagePerDayCents"`
	TopCategory        string `json:"topCategory,omitempty"`
	MonthTotalCents    int64  `json:"monthTotalCents"`
}

// handleStats returns the trailing 30-day overview plus the current
// calendar month total
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	snapshot := s.store.List()
	window := analytics.LastNDays(now, 30)

	total := analytics.Total(snapshot, window)
	resp := statsResponse{
		WindowDays:         30,
		TotalCents:         total,
		Total:              money.Format(total),
		ReceiptCount:       analytics.Count(snapshot, window),
		AverageCents:       analytics.Average(snapshot, window),
		AveragePerDayCents: analytics.AveragePerDay(snapshot, window),
		MonthTotalCents:    analytics.Total(snapshot, analytics.MonthOf(now)),
	}
	if top, ok := analytics.LeadingCategory(snapshot, window); ok {
		resp.TopCategory = top
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWeeklyStats returns the trailing weekly spend buckets
func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	weeks := intQuery(r, "weeks", 8)
	if weeks > 52 {
		weeks = 52
	}
	buckets := analytics.WeeklyBuckets(s.store.List(), s.now(), weeks)
	writeJSON(w, http.StatusOK, buckets)
}

// handleCategoryStats returns the category split over a trailing window
func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	window := analytics.LastNDays(s.now(), days)
	split := analytics.CategorySplit(s.store.List(), window)
	writeJSON(w, http.StatusOK, split)
}

// handleMonthlyStats returns per-month totals over the whole collection
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	totals := analytics.MonthlyTotals(s.store.List())
	writeJSON(w, http.StatusOK, totals)
}
