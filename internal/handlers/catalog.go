package handlers

import (
	"net/http"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/services"
)

// CatalogHandler serves clients, services and materials.
type CatalogHandler struct {
	svc *services.CatalogService
}

func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Clients(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *CatalogHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if !decode(w, r, &in) {
		return
	}
	client, err := h.svc.CreateClient(userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"client": client})
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Services(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": list})
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in services.ServiceInput
	if !decode(w, r, &in) {
		return
	}
	svc, err := h.svc.CreateService(userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"service": svc})
}

func (h *CatalogHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Materials(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"materials": list})
}

func (h *CatalogHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var in services.MaterialInput
	if !decode(w, r, &in) {
		return
	}
	m, err := h.svc.CreateMaterial(userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"material": m})
}
