package handlers

import (
	"net/http"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/i18n"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/internal/pricing"
	"github.com/diewo77/plombicrm/internal/services"
	"gorm.io/gorm"
)

type QuoteHandler struct {
	db  *gorm.DB
	svc *services.QuoteService
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{db: db, svc: svc}
}

type createQuoteRequest struct {
	ClientID       uint                   `json:"clientId"`
	ServiceID      uint                   `json:"serviceId"`
	MaterialID     *uint                  `json:"materialId"`
	Hours          pricing.Hours          `json:"hours"`
	Discount       float64                `json:"discount"`
	SendEmail      bool                   `json:"sendEmail"`
	Materials      []pricing.MaterialLine `json:"materials"`
	MaterialsTotal *float64               `json:"materialsTotal"`
}

type createQuoteResponse struct {
	Quote     *models.Quote `json:"quote"`
	EmailSent bool          `json:"emailSent"`
	EmailErr  string        `json:"emailError,omitempty"`
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.List(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

// Create prices and stores a quote; the send outcome is reported alongside, never as a failure.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Create(r.Context(), userID(r), services.QuoteInput{
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		MaterialID:     req.MaterialID,
		Hours:          req.Hours.Float(),
		Discount:       req.Discount,
		SendEmail:      req.SendEmail,
		Materials:      req.Materials,
		MaterialsTotal: req.MaterialsTotal,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := createQuoteResponse{Quote: res.Quote, EmailSent: res.EmailSent}
	if res.SendError != nil {
		out.EmailErr = i18n.T(i18n.LangFromContext(r.Context()), res.SendError.Error())
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *QuoteHandler) ToggleAck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.svc.ToggleAck(userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quote": q})
}

func (h *QuoteHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	q, err := h.svc.SetStatus(userID(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quote": q})
}

// PDF downloads the stored quote document.
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	name, data, err := h.svc.Document(userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Export downloads every quote of the account as a spreadsheet.
func (h *QuoteHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := services.ExportQuotes(h.db.WithContext(r.Context()), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="devis.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
