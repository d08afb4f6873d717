/*
handlers.go - HTTP handlers for the interactive session

PURPOSE:
  The HTTP face of the interactive variant. One session at a time: an
  operator uploads the shift sheet and the transaction export, then edits
  grid cells; every edit triggers one full synchronous recomputation and
  the fresh report comes back in the same response.

CONCURRENCY:
  A single mutex serializes everything. Edits never overlap a
  recomputation and clients never see partial results. This is deliberate:
  the computation is bounded and in-memory, and the session has exactly
  one operator.

ERROR HANDLING:
  - 400: malformed input, missing columns, invalid edits
  - 404: no session loaded / unknown person
  - 409: edit on a slot the person has no shift in
  - 500: storage failures

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router wiring
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/attribution"
	"github.com/atlas/coverage-engine/export"
	"github.com/atlas/coverage-engine/ingest"
	"github.com/atlas/coverage-engine/schedule"
	"github.com/atlas/coverage-engine/store/sqlite"
)

// maxUploadBytes bounds one multipart upload.
const maxUploadBytes = 32 << 20

// session is the in-memory working state rebuilt from the store.
type session struct {
	id           string
	window       schedule.DateRange
	calendar     *schedule.Calendar
	grid         *attribution.Grid
	transactions []attribution.Transaction
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          *sqlite.Store
	CommissionRate decimal.Decimal

	mu      sync.Mutex
	session *session
}

func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, CommissionRate: attribution.DefaultCommissionRate}
}

// Restore rebuilds the in-memory session from the store, replaying the
// override log over a freshly seeded grid. No stored session is not an
// error; the server just starts empty.
func (h *Handler) Restore(ctx context.Context) error {
	rec, err := h.Store.CurrentSession(ctx)
	if errors.Is(err, sqlite.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	table, err := h.Store.LoadShiftTable(ctx, rec.ID)
	if err != nil {
		return err
	}
	txs, err := h.Store.LoadTransactions(ctx, rec.ID)
	if err != nil {
		return err
	}

	s, err := buildSession(rec.ID, rec.Window, table, txs)
	if err != nil {
		return err
	}

	overrides, err := h.Store.ListOverrides(ctx, rec.ID)
	if err != nil {
		return err
	}
	for _, ov := range overrides {
		if ov.Ordinal < 0 || ov.Ordinal >= len(s.calendar.People()) {
			continue
		}
		p := s.calendar.People()[ov.Ordinal]
		if err := s.grid.SetCell(ov.Date, ov.Hour, p, ov.State); err != nil {
			// A logged edit that no longer applies is skipped, not fatal.
			continue
		}
	}

	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
	return nil
}

func buildSession(id string, window schedule.DateRange, table schedule.RawShiftTable, txs []attribution.Transaction) (*session, error) {
	cal, err := schedule.LoadCalendar(table)
	if err != nil {
		return nil, err
	}
	resolver := schedule.NewResolver(cal, schedule.DefaultBreakPolicy())
	grid, err := attribution.SeedGrid(resolver, window)
	if err != nil {
		return nil, err
	}
	return &session{id: id, window: window, calendar: cal, grid: grid, transactions: txs}, nil
}

// compute runs one full allocation + aggregation over the current grid.
// Callers hold h.mu.
func (h *Handler) compute() (*attribution.Report, error) {
	s := h.session
	engine := attribution.NewEngine(s.grid)
	alloc, err := engine.Allocate(s.transactions, s.window)
	if err != nil {
		return nil, err
	}
	agg := attribution.NewAggregator(s.calendar, s.grid)
	agg.CommissionRate = h.CommissionRate
	return agg.Aggregate(alloc), nil
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession loads a new session from uploaded files.
// POST /api/session (multipart: shifts, transactions; form: from, to)
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart upload", err)
		return
	}

	window, err := parseWindow(r.FormValue("from"), r.FormValue("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	shiftTable, err := readUploadedTable(r, "shifts")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cannot read shifts file", err)
		return
	}
	txTable, err := readUploadedTable(r, "transactions")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cannot read transactions file", err)
		return
	}

	rawShifts, err := ingest.ShiftTable(shiftTable)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift table", err)
		return
	}
	txs, err := ingest.Transactions(txTable)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction table", err)
		return
	}

	id := uuid.NewString()
	s, err := buildSession(id, window, rawShifts, txs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cannot build session", err)
		return
	}

	rec := sqlite.SessionRecord{ID: id, CreatedAt: time.Now(), Window: window}
	if err := h.Store.CreateSession(r.Context(), rec, rawShifts, txs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist session", err)
		return
	}

	h.mu.Lock()
	h.session = s
	dto := h.sessionDTO()
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, dto)
}

// GetSession describes the loaded session.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		writeError(w, http.StatusNotFound, "No session loaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionDTO())
}

// sessionDTO builds the session summary. Callers hold h.mu.
func (h *Handler) sessionDTO() SessionDTO {
	s := h.session
	dto := SessionDTO{
		ID:           s.id,
		From:         s.window.From.String(),
		To:           s.window.To.String(),
		Transactions: len(s.transactions),
	}
	for _, p := range s.calendar.People() {
		dto.People = append(dto.People, p.Name)
	}
	return dto
}

// =============================================================================
// GRID HANDLERS
// =============================================================================

// GetGrid returns the full grid state.
// GET /api/grid
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		writeError(w, http.StatusNotFound, "No session loaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, toGridRowDTOs(h.session.grid.Snapshot()))
}

// EditCell applies one operator edit, persists it, recomputes, and returns
// the fresh report.
// PUT /api/grid/cell
func (h *Handler) EditCell(w http.ResponseWriter, r *http.Request) {
	var req EditCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := schedule.ParseDayDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	state, ok := parseSlotState(req.State)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid state", fmt.Errorf("state must be eligible or on_break, got %q", req.State))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		writeError(w, http.StatusNotFound, "No session loaded", nil)
		return
	}

	person, ok := h.session.calendar.Lookup(req.Person)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown person", fmt.Errorf("%q is not in the shift sheet", req.Person))
		return
	}

	if err := h.session.grid.SetCell(date, req.Hour, person, state); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, attribution.ErrPersonAbsent) {
			status = http.StatusConflict
		}
		writeError(w, status, "Edit rejected", err)
		return
	}

	ov := sqlite.Override{
		ID:        uuid.NewString(),
		Date:      date,
		Hour:      req.Hour,
		Ordinal:   person.Ordinal,
		State:     state,
		CreatedAt: time.Now(),
	}
	if err := h.Store.AppendOverride(r.Context(), h.session.id, ov); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist edit", err)
		return
	}

	report, err := h.compute()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recompute failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport recomputes from the current grid and returns the report set.
// GET /api/report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		writeError(w, http.StatusNotFound, "No session loaded", nil)
		return
	}

	report, err := h.compute()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recompute failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// ExportWorkbook streams the styled xlsx for the current grid state.
// GET /api/export
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		writeError(w, http.StatusNotFound, "No session loaded", nil)
		return
	}

	report, err := h.compute()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recompute failed", err)
		return
	}
	data, err := export.WriteWorkbook(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Workbook generation failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="simulacion_airport.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWindow(from, to string) (schedule.DateRange, error) {
	fromDate, err := schedule.ParseDayDate(from)
	if err != nil {
		return schedule.DateRange{}, fmt.Errorf("from: %w", err)
	}
	toDate, err := schedule.ParseDayDate(to)
	if err != nil {
		return schedule.DateRange{}, fmt.Errorf("to: %w", err)
	}
	r := schedule.DateRange{From: fromDate, To: toDate}
	if !r.Valid() {
		return schedule.DateRange{}, schedule.ErrInvalidDateRange
	}
	return r, nil
}

func readUploadedTable(r *http.Request, field string) (*ingest.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file: %w", field, err)
	}
	defer file.Close()
	return readNamedTable(header, file)
}

func readNamedTable(header *multipart.FileHeader, file multipart.File) (*ingest.Table, error) {
	return ingest.ReadFile(header.Filename, file)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
