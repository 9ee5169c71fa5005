package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gastos/internal/core"
	"gastos/internal/daterange"
	"gastos/internal/log"
	"gastos/internal/middleware/auth"
	"gastos/internal/services"
)

type expenseView struct {
	ID         int64  `json:"id"`
	Owner      string `json:"owner"`
	Category   string `json:"category"`
	Amount     string `json:"amount"`
	RecordedAt string `json:"recorded_at"`
	SourceText string `json:"source_text,omitempty"`
}

type categoryView struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type summaryView struct {
	Owner      string         `json:"owner"`
	Period     string         `json:"period"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Total      string         `json:"total"`
	Count      int            `json:"count"`
	Categories []categoryView `json:"categories"`
	Text       string         `json:"text"`
}

func (s *Server) toView(e core.Expense) expenseView {
	return expenseView{
		ID:         e.ID,
		Owner:      e.Owner,
		Category:   e.Category,
		Amount:     core.FormatAmount(e.Amount),
		RecordedAt: e.RecordedAt.In(s.clock.Now().Location()).Format(time.RFC3339),
		SourceText: e.SourceText,
	}
}

// ownerParam reads ?owner=, defaulting to the bearer token subject so a token
// minted for a phone number reads that ledger without repeating it.
func ownerParam(r *http.Request) string {
	if owner := services.NormalizePhone(r.URL.Query().Get("owner")); owner != "" {
		return owner
	}
	return services.NormalizePhone(auth.Subject(r.Context()))
}

// handleListExpenses serves GET /api/gastos?owner=&limit=.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	owner := ownerParam(r)
	if owner == "" {
		BadRequestError("owner is required").Write(w)
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	items, err := s.store.QueryRecent(r.Context(), owner, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list expenses",
			log.NewFields().WithOwner(owner).WithError(err).WithOperation(log.OpList).ToSlice()...)
		InternalServerError("failed to list expenses").Write(w)
		return
	}

	views := make([]expenseView, 0, len(items))
	for _, e := range items {
		views = append(views, s.toView(e))
	}
	NewResponse().JSON(map[string]any{"owner": owner, "expenses": views}).Write(w)
}

// handleGetExpense serves GET /api/gastos/{id}.
func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		BadRequestError("invalid id").Write(w)
		return
	}

	e, err := s.reader.Get(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("expense not found").Write(w)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to read expense",
			log.FieldExpenseID, id, log.FieldError, err.Error())
		InternalServerError("failed to read expense").Write(w)
		return
	}
	NewResponse().JSON(s.toView(e)).Write(w)
}

// handleSummary serves GET /api/resumen?owner=&periodo=.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := ownerParam(r)
	if owner == "" {
		BadRequestError("owner is required").Write(w)
		return
	}
	rng, err := daterange.Resolve(r.URL.Query().Get("periodo"), s.clock.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	items, err := s.store.QueryRange(r.Context(), owner, rng)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to summarize expenses",
			log.NewFields().WithOwner(owner).WithError(err).WithOperation(log.OpSummary).ToSlice()...)
		InternalServerError("failed to summarize expenses").Write(w)
		return
	}

	result := core.Summarize(items)
	view := summaryView{
		Owner:      owner,
		Period:     rng.Label(),
		From:       rng.Start.Format(time.DateOnly),
		To:         rng.End.Format(time.DateOnly),
		Total:      core.FormatAmount(result.Total),
		Count:      result.Count,
		Categories: make([]categoryView, 0, len(result.PerCategory)),
		Text:       services.FormatSummary(result, rng.Label()),
	}
	for _, c := range result.PerCategory {
		view.Categories = append(view.Categories, categoryView{Name: c.Name, Amount: core.FormatAmount(c.Amount)})
	}
	NewResponse().JSON(view).Write(w)
}
