// Package journalshttp exposes the ledger posting API.
package journalshttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

type ledgerService interface {
	ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]journals.Entry, error)
	PostBatch(ctx context.Context, entries []journals.Entry) (journals.BatchResult, error)
	ReverseBatch(ctx context.Context, clientID, docNo, actor string, date time.Time) ([]journals.Entry, error)
}

// Handler wires HTTP endpoints for posting and browsing ledger entries.
type Handler struct {
	logger    *slog.Logger
	service   ledgerService
	validator *validator.Validate
}

// NewHandler constructs a journals HTTP handler.
func NewHandler(logger *slog.Logger, service ledgerService) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/journals", func(r chi.Router) {
		r.Get("/", h.listEntries)
		r.Post("/", h.postBatch)
		r.Post("/{docNo}/reverse", h.reverseBatch)
	})
}

type entryRequest struct {
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	DocNo          string  `json:"docNo" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	AccountCode    string  `json:"accountCode" validate:"required,numeric,min=4,max=6"`
	AccountName    string  `json:"accountName,omitempty"`
	Debit          float64 `json:"debit" validate:"gte=0"`
	Credit         float64 `json:"credit" validate:"gte=0"`
	DepartmentCode string  `json:"departmentCode,omitempty"`
	SourceDocID    string  `json:"sourceDocId,omitempty"`
}

type postBatchRequest struct {
	Entries   []entryRequest `json:"entries" validate:"required,min=1,dive"`
	CreatedBy string         `json:"createdBy" validate:"required"`
}

type entryResponse struct {
	ID              string  `json:"id"`
	ClientID        string  `json:"clientId"`
	Date            string  `json:"date"`
	DocNo           string  `json:"docNo"`
	Description     string  `json:"description"`
	AccountCode     string  `json:"accountCode"`
	AccountName     string  `json:"accountName"`
	Debit           float64 `json:"debit"`
	Credit          float64 `json:"credit"`
	DepartmentCode  string  `json:"departmentCode,omitempty"`
	SourceDocID     string  `json:"sourceDocId,omitempty"`
	SystemGenerated bool    `json:"systemGenerated"`
	CreatedBy       string  `json:"createdBy"`
}

func toEntryResponse(e journals.Entry) entryResponse {
	return entryResponse{
		ID:              e.ID.String(),
		ClientID:        e.ClientID,
		Date:            e.Date.Format(dateLayout),
		DocNo:           e.DocNo,
		Description:     e.Description,
		AccountCode:     e.AccountCode,
		AccountName:     e.AccountName,
		Debit:           e.Debit,
		Credit:          e.Credit,
		DepartmentCode:  e.DepartmentCode,
		SourceDocID:     e.SourceDocID,
		SystemGenerated: e.SystemGenerated,
		CreatedBy:       e.CreatedBy,
	}
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	from, err := parseDateParam(r, "from")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "to must be YYYY-MM-DD")
		return
	}

	entries, err := h.service.ListEntries(r.Context(), clientID, from, to)
	if err != nil {
		h.logger.Error("list entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (h *Handler) postBatch(w http.ResponseWriter, r *http.Request) {
	var req postBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	clientID := chi.URLParam(r, "clientID")
	entries := make([]journals.Entry, 0, len(req.Entries))
	for _, in := range req.Entries {
		date, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "date must be YYYY-MM-DD")
			return
		}
		entries = append(entries, journals.Entry{
			ID:             uuid.New(),
			ClientID:       clientID,
			Date:           date,
			DocNo:          in.DocNo,
			Description:    in.Description,
			AccountCode:    in.AccountCode,
			AccountName:    accounts.Name(in.AccountCode, in.AccountName),
			Debit:          in.Debit,
			Credit:         in.Credit,
			DepartmentCode: in.DepartmentCode,
			SourceDocID:    in.SourceDocID,
			CreatedBy:      req.CreatedBy,
		})
	}

	result, err := h.service.PostBatch(r.Context(), entries)
	if err != nil {
		h.logger.Error("post batch failed", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !result.OK {
		httpx.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"posted": len(entries),
	})
}

type reverseRequest struct {
	ActorID string `json:"actorId" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) reverseBatch(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "date must be YYYY-MM-DD")
		return
	}

	clientID := chi.URLParam(r, "clientID")
	docNo := chi.URLParam(r, "docNo")
	entries, err := h.service.ReverseBatch(r.Context(), clientID, docNo, req.ActorID, date)
	if err != nil {
		h.logger.Error("reverse batch failed",
			slog.String("client_id", clientID),
			slog.String("doc_no", docNo),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"entries": out})
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
