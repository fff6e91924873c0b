// Package reportshttp exposes the financial report API.
package reportshttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-books/meridian/internal/accounting/reports"
	"github.com/meridian-books/meridian/internal/platform/httpx"
)

type reportService interface {
	TrialBalance(ctx context.Context, clientID, period string) (reports.TrialBalanceReport, error)
	IncomeStatement(ctx context.Context, clientID, period string) (reports.IncomeStatement, error)
	BalanceSheet(ctx context.Context, clientID string, asOfDate time.Time) (reports.BalanceSheet, error)
}

// Handler wires HTTP endpoints for rendered financial reports.
type Handler struct {
	logger  *slog.Logger
	service reportService
}

// NewHandler constructs a reports HTTP handler.
func NewHandler(logger *slog.Logger, service reportService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/reports", func(r chi.Router) {
		r.Get("/trial-balance", h.trialBalance)
		r.Get("/income-statement", h.incomeStatement)
		r.Get("/balance-sheet", h.balanceSheet)
	})
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	period := r.URL.Query().Get("period")
	report, err := h.service.TrialBalance(r.Context(), clientID, period)
	if err != nil {
		h.logger.Error("trial balance", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	period := r.URL.Query().Get("period")
	report, err := h.service.IncomeStatement(r.Context(), clientID, period)
	if err != nil {
		h.logger.Error("income statement", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	raw := r.URL.Query().Get("asOf")
	if raw == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "asOf query parameter is required")
		return
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "asOf must be YYYY-MM-DD")
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), clientID, asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
