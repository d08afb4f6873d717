package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/coverage-engine/api"
	"github.com/atlas/coverage-engine/store/sqlite"
)

const shiftsCSV = `Coordinador,2025-12-01,2025-12-02
Ana,10:00-18:00,10:00-18:00
Bruno,21:00-06:00 nocturno,libre
`

const transactionsCSV = `date,qt_price_local,category
2025-12-01 12:30:00,500,tour
2025-12-01 02:00:00,75,transfer
`

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv, store
}

// sessionUpload builds the multipart body CreateSession expects.
func sessionUpload(t *testing.T, shifts, transactions, from, to string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("shifts", "turnos.csv")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(shifts))
	require.NoError(t, err)

	part, err = w.CreateFormFile("transactions", "ventas.csv")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(transactions))
	require.NoError(t, err)

	require.NoError(t, w.WriteField("from", from))
	require.NoError(t, w.WriteField("to", to))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func createSession(t *testing.T, srv *httptest.Server) api.SessionDTO {
	t.Helper()
	body, contentType := sessionUpload(t, shiftsCSV, transactionsCSV, "2025-12-01", "2025-12-02")
	resp, err := http.Post(srv.URL+"/api/session", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dto api.SessionDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	return dto
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func putCell(t *testing.T, srv *httptest.Server, req api.EditCellRequest) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq, err := http.NewRequest(http.MethodPut, srv.URL+"/api/grid/cell", bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

func TestAPI_NoSessionLoaded(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/session", "/api/grid", "/api/report", "/api/export"} {
		resp := getJSON(t, srv, path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestAPI_CreateSession(t *testing.T) {
	srv, _ := newTestServer(t)

	dto := createSession(t, srv)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "2025-12-01", dto.From)
	assert.Equal(t, "2025-12-02", dto.To)
	assert.Equal(t, []string{"Ana", "Bruno"}, dto.People)
	assert.Equal(t, 2, dto.Transactions)
}

func TestAPI_CreateSessionRejectsBadInputs(t *testing.T) {
	srv, _ := newTestServer(t)

	// Inverted window.
	body, contentType := sessionUpload(t, shiftsCSV, transactionsCSV, "2025-12-02", "2025-12-01")
	resp, err := http.Post(srv.URL+"/api/session", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Transaction sheet without a recognized timestamp column.
	body, contentType = sessionUpload(t, shiftsCSV, "id,amount\n1,100\n", "2025-12-01", "2025-12-02")
	resp, err = http.Post(srv.URL+"/api/session", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Invalid transaction table", errResp.Error)
}

// =============================================================================
// GRID AND REPORT
// =============================================================================

func TestAPI_GridAndReport(t *testing.T) {
	srv, _ := newTestServer(t)
	createSession(t, srv)

	var grid []api.GridRowDTO
	resp := getJSON(t, srv, "/api/grid", &grid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, grid, 48)
	assert.Len(t, grid[0].States, 2)

	var report api.ReportDTO
	resp = getJSON(t, srv, "/api/report", &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "575", report.GrandTotal)
	// The 02:00 sale lands before Bruno's shift starts; no one covers it.
	assert.Equal(t, "75", report.Unassigned)
	require.Len(t, report.Totals, 2)
	assert.Equal(t, "500", report.Totals[0].Total)
	assert.Equal(t, "10", report.Totals[0].Commission)
}

func TestAPI_EditCellRecomputes(t *testing.T) {
	// GIVEN: A session where the 12:30 sale is Ana's alone
	// WHEN: The operator marks her on break for that hour
	// THEN: The same response carries the recomputed report with the sale
	//       rerouted to the unassigned bucket

	srv, _ := newTestServer(t)
	createSession(t, srv)

	resp, raw := putCell(t, srv, api.EditCellRequest{
		Date: "2025-12-01", Hour: 12, Person: "Ana", State: "on_break",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var report api.ReportDTO
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "575", report.Unassigned)
	assert.Equal(t, "0", report.Totals[0].Total)
}

func TestAPI_EditCellRejections(t *testing.T) {
	srv, _ := newTestServer(t)
	createSession(t, srv)

	// Absent cell: Ana has no shift covering 03:00.
	resp, _ := putCell(t, srv, api.EditCellRequest{
		Date: "2025-12-01", Hour: 3, Person: "Ana", State: "eligible",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown person.
	resp, _ = putCell(t, srv, api.EditCellRequest{
		Date: "2025-12-01", Hour: 12, Person: "Zoe", State: "eligible",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Absent is not an operator-settable state.
	resp, _ = putCell(t, srv, api.EditCellRequest{
		Date: "2025-12-01", Hour: 12, Person: "Ana", State: "absent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ExportStreamsWorkbook(t *testing.T) {
	srv, _ := newTestServer(t)
	createSession(t, srv)

	resp, err := http.Get(srv.URL + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "simulacion_airport.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// xlsx files are zip archives.
	require.True(t, len(data) > 4)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

// =============================================================================
// RESTORE
// =============================================================================

func TestAPI_RestoreReplaysOverrides(t *testing.T) {
	// GIVEN: A session with one persisted edit
	// WHEN: A fresh handler restores from the same store
	// THEN: The edit is still in effect

	srv, store := newTestServer(t)
	createSession(t, srv)
	resp, _ := putCell(t, srv, api.EditCellRequest{
		Date: "2025-12-01", Hour: 12, Person: "Ana", State: "on_break",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	restored := api.NewHandler(store)
	require.NoError(t, restored.Restore(context.Background()))

	srv2 := httptest.NewServer(api.NewRouter(restored))
	defer srv2.Close()

	var report api.ReportDTO
	r, err := http.Get(srv2.URL + "/api/report")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.NoError(t, json.NewDecoder(r.Body).Decode(&report))

	assert.Equal(t, "575", report.Unassigned)
	assert.Equal(t, "0", report.Totals[0].Total)
}
