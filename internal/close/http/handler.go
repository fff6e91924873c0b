// Package closehttp exposes the period-close API.
package closehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-books/meridian/internal/close"
	"github.com/meridian-books/meridian/internal/platform/httpx"
)

type closeService interface {
	ListPeriods(ctx context.Context, clientID string) ([]close.Period, error)
	GetPeriod(ctx context.Context, clientID, code string) (close.Period, error)
	RunClose(ctx context.Context, in close.RunCloseInput) (close.Summary, error)
}

// Handler wires HTTP endpoints for period lifecycle and close runs.
type Handler struct {
	logger  *slog.Logger
	service closeService
}

// NewHandler constructs a close HTTP handler.
func NewHandler(logger *slog.Logger, service closeService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/periods", func(r chi.Router) {
		r.Get("/", h.listPeriods)
		r.Get("/{period}", h.getPeriod)
		r.Post("/{period}/close", h.runClose)
	})
}

type periodResponse struct {
	ClientID        string     `json:"clientId"`
	Period          string     `json:"period"`
	Status          string     `json:"status"`
	ProfitBeforeTax float64    `json:"profitBeforeTax"`
	CITAmount       float64    `json:"citAmount"`
	NetProfit       float64    `json:"netProfit"`
	ClosedBy        string     `json:"closedBy,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
}

func toPeriodResponse(p close.Period) periodResponse {
	return periodResponse{
		ClientID:        p.ClientID,
		Period:          p.Code,
		Status:          string(p.Status),
		ProfitBeforeTax: p.ProfitBeforeTax,
		CITAmount:       p.CITAmount,
		NetProfit:       p.NetProfit,
		ClosedBy:        p.ClosedBy,
		ClosedAt:        p.ClosedAt,
	}
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	periods, err := h.service.ListPeriods(r.Context(), clientID)
	if err != nil {
		h.logger.Error("list periods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, toPeriodResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": out})
}

func (h *Handler) getPeriod(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	code := chi.URLParam(r, "period")
	period, err := h.service.GetPeriod(r.Context(), clientID, code)
	if err != nil {
		if errors.Is(err, close.ErrPeriodNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "period has no recorded activity")
			return
		}
		h.logger.Error("get period", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPeriodResponse(period))
}

type runCloseRequest struct {
	ActorID string  `json:"actorId"`
	CITRate float64 `json:"citRate,omitempty"`
}

func (h *Handler) runClose(w http.ResponseWriter, r *http.Request) {
	var req runCloseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	in := close.RunCloseInput{
		ClientID: chi.URLParam(r, "clientID"),
		Period:   chi.URLParam(r, "period"),
		ActorID:  req.ActorID,
		CITRate:  req.CITRate,
	}
	summary, err := h.service.RunClose(r.Context(), in)
	if err != nil {
		h.logger.Error("close run failed",
			slog.String("client_id", in.ClientID),
			slog.String("period", in.Period),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
