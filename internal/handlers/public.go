package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/services"
	"github.com/diewo77/plombicrm/view"
)

// PublicHandler serves the unauthenticated accept/sign links mailed to clients.
type PublicHandler struct {
	quotes *services.QuoteService
}

func NewPublicHandler(quotes *services.QuoteService) *PublicHandler {
	return &PublicHandler{quotes: quotes}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.Render(w, r, status, name, data); err != nil {
		log.Printf("view: %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *PublicHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrInvalidLink) {
		if verr := view.Message(w, r, http.StatusNotFound, "error_title", "invalid_link"); verr != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
		}
		return
	}
	log.Printf("public: %s: %v", r.URL.Path, err)
	if verr := view.Message(w, r, http.StatusInternalServerError, "error_title", "internal_error"); verr != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Accept marks the quote accepted and shows a confirmation page. Reopening the link changes nothing.
func (h *PublicHandler) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	_, already, err := h.quotes.AcceptByToken(r.Context(), token)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	pub, err := h.quotes.Public(r.Context(), token)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	renderPage(w, r, http.StatusOK, "accept.html", map[string]any{"Quote": pub, "Already": already})
}

// SignPage shows the signature pad, or the signer when the quote is already signed.
func (h *PublicHandler) SignPage(w http.ResponseWriter, r *http.Request) {
	pub, err := h.quotes.Public(r.Context(), r.PathValue("token"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	renderPage(w, r, http.StatusOK, "sign.html", map[string]any{"Quote": pub})
}

type signRequest struct {
	SignerName     string `json:"signerName"`
	Signature      string `json:"signature"`
	SignatureImage string `json:"signatureImage"`
}

type signResponse struct {
	OK            bool `json:"ok"`
	AlreadySigned bool `json:"alreadySigned,omitempty"`
}

// Sign stores the drawn signature once; resubmissions answer alreadySigned.
func (h *PublicHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if !decode(w, r, &req) {
		return
	}
	payload := req.Signature
	if payload == "" {
		payload = req.SignatureImage
	}
	res, err := h.quotes.SignByToken(r.Context(), r.PathValue("token"), req.SignerName, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, signResponse{OK: true, AlreadySigned: res.AlreadySigned})
}
