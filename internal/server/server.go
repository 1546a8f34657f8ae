package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/cost-manager/pkg/model"
	"github.com/ogulcanaydogan/cost-manager/pkg/tracker"
)

const requestTimeout = 10 * time.Second

// maxBodySize caps the JSON body accepted when recording a cost.
const maxBodySize = 64 << 10

// Server exposes the cost tracker over a JSON HTTP API.
type Server struct {
	tracker *tracker.CostTracker
	mux     *http.ServeMux
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer creates an API server.
func NewServer(t *tracker.CostTracker, logger *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		mux:     http.NewServeMux(),
		logger:  logger,
		now:     time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/categories", s.handleCategories)
	s.mux.HandleFunc("POST /api/v1/costs", s.handleAddCost)
	s.mux.HandleFunc("GET /api/v1/costs", s.handleListCosts)
	s.mux.HandleFunc("GET /api/v1/costs/totals", s.handleTotals)
	s.mux.HandleFunc("GET /api/v1/report", s.handleReport)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return requestID(s.logger, s.mux)
}

type addCostRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Categories())
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req addCostRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	in := tracker.CostInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date == "" {
		in.Date = model.NormalizeDate(s.now())
	} else {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Date = date
	}

	record, err := s.tracker.Add(ctx, in)
	if err != nil {
		s.fail(w, r, "add cost", err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListCosts(w http.ResponseWriter, r *http.Request) {
	s.withReport(w, r, "list costs", func(report *tracker.MonthReport) any {
		return report.Items
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	s.withReport(w, r, "category totals", func(report *tracker.MonthReport) any {
		return report.Totals
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.withReport(w, r, "month report", func(report *tracker.MonthReport) any {
		return report
	})
}

// withReport resolves the requested period, builds its report and writes the
// part selected by pick.
func (s *Server) withReport(w http.ResponseWriter, r *http.Request, op string, pick func(*tracker.MonthReport) any) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	month, year, err := s.period(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.tracker.MonthReport(ctx, month, year)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, pick(report))
}

// period reads month and year from the query, defaulting to the current month.
func (s *Server) period(r *http.Request) (month, year int, err error) {
	now := s.now()
	month, year = int(now.Month()), now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || !model.ValidMonth(month) {
			return 0, 0, fmt.Errorf("invalid month %q: want 1-12", v)
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1000 || year > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q: want a 4-digit year", v)
		}
	}
	return month, year, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, tracker.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error(op, "error", err, "request_id", RequestIDFrom(r.Context()))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
