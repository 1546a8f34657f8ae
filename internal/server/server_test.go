package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/ogulcanaydogan/cost-manager/internal/server"
	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/storage"
	"github.com/ogulcanaydogan/cost-manager/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*server.Server, *storage.SQLite) {
	t.Helper()
	store, err := storage.Open(context.Background(), t.TempDir(), storage.DefaultName, storage.DefaultVersion)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ct := tracker.NewCostTracker(store, nil, logger)

	// Seed some data
	ctx := context.Background()
	for _, in := range []tracker.CostInput{
		{Amount: 100, Category: "Food", Description: "groceries", Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{Amount: 50, Category: "Food", Description: "dinner", Date: time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)},
		{Amount: 30, Category: "Housing", Description: "repairs", Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := ct.Add(ctx, in)
		require.NoError(t, err)
	}

	return server.NewServer(ct, logger), store
}

func do(t *testing.T, srv *server.Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(server.RequestIDHeader))

	var resp map[string]string
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_RequestIDPropagated(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(server.RequestIDHeader))
}

func TestServer_Categories(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/api/v1/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var categories []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&categories))
	assert.Equal(t, model.DefaultCategories, categories)
}

func TestServer_ListCosts(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/api/v1/costs?month=3&year=2024", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []model.CostRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 2)
	assert.Equal(t, "groceries", records[0].Description)
	assert.Equal(t, "dinner", records[1].Description)
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestServer_ListCosts_EmptyMonthIsArray(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/api/v1/costs?month=6&year=2024", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_ListCosts_DefaultsToCurrentMonth(t *testing.T) {
	srv, _ := setupServer(t)

	body := []byte(`{"amount":7,"category":"Other","description":"today"}`)
	w := do(t, srv, "POST", "/api/v1/costs", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, "GET", "/api/v1/costs", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []model.CostRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "today", records[0].Description)
}

func TestServer_Totals(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/api/v1/costs/totals?month=4&year=2024", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var totals map[string]float64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&totals))
	assert.Equal(t, map[string]float64{"Housing": 30}, totals)
}

func TestServer_Report(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, "GET", "/api/v1/report?month=3&year=2024", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var report tracker.MonthReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, 3, report.Month)
	assert.Equal(t, 2024, report.Year)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, map[string]float64{"Food": 150}, report.Totals)
	assert.InDelta(t, 150, report.Total, 0.0001)
}

func TestServer_AddCost(t *testing.T) {
	srv, store := setupServer(t)

	body := []byte(`{"amount":12.5,"category":"Shopping","description":"socks","date":"2024-03-31"}`)
	w := do(t, srv, "POST", "/api/v1/costs", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var record model.CostRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.Positive(t, record.ID)
	assert.Equal(t, 12.5, record.Amount)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), record.Date)
	assert.False(t, record.CreatedAt.IsZero())

	// The response matches what a list of the period returns for the same id.
	w = do(t, srv, "GET", "/api/v1/costs?month=3&year=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []model.CostRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	idx := slices.IndexFunc(listed, func(r model.CostRecord) bool { return r.ID == record.ID })
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, record.CreatedAt.Equal(listed[idx].CreatedAt))

	// A re-read of the displayed period sees the new record.
	totals, err := store.CategoryTotals(context.Background(), 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 150, "Shopping": 12.5}, totals)
}

func TestServer_AddCost_BadRequests(t *testing.T) {
	srv, store := setupServer(t)

	cases := map[string]string{
		"malformed json":   `{"amount":`,
		"unknown field":    `{"amount":1,"category":"Food","description":"x","colour":"red"}`,
		"bad date":         `{"amount":1,"category":"Food","description":"x","date":"31/03/2024"}`,
		"negative amount":  `{"amount":-1,"category":"Food","description":"x","date":"2024-03-01"}`,
		"unknown category": `{"amount":1,"category":"Gadgets","description":"x","date":"2024-03-01"}`,
		"no description":   `{"amount":1,"category":"Food","date":"2024-03-01"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/v1/costs", []byte(body))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestServer_InvalidPeriod(t *testing.T) {
	srv, _ := setupServer(t)

	for _, target := range []string{
		"/api/v1/costs?month=13&year=2024",
		"/api/v1/costs?month=0&year=2024",
		"/api/v1/costs/totals?month=march",
		"/api/v1/report?month=3&year=24",
	} {
		w := do(t, srv, "GET", target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestServer_StoreFailure(t *testing.T) {
	srv, store := setupServer(t)
	require.NoError(t, store.Close())

	w := do(t, srv, "GET", "/api/v1/costs?month=3&year=2024", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["error"], storage.ErrRead.Error())

	w = do(t, srv, "POST", "/api/v1/costs", []byte(`{"amount":1,"category":"Food","description":"x","date":"2024-03-01"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
