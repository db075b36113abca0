package http

import (
	"errors"
	"net/http"

	"talktotoyota/domain"
	"talktotoyota/repository"
	"talktotoyota/service"
)

type VehicleHandler struct {
	service *service.VehicleService
}

func NewVehicleHandler(service *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vehicles, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}

	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vehicle, err := h.service.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, repository.ErrVehicleNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load vehicle")
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}
