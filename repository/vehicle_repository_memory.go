package repository

import (
	"context"

	"talktotoyota/domain"
)

// MemoryVehicleRepository serves the catalog from the embedded seed data.
// It is the fallback when no SQLite path is configured or the file cannot
// be opened.
type MemoryVehicleRepository struct {
	vehicles []domain.Vehicle
	byID     map[string]domain.Vehicle
}

func NewMemoryVehicleRepository() (*MemoryVehicleRepository, error) {
	vehicles, err := SeedVehicles()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}
	return &MemoryVehicleRepository{vehicles: vehicles, byID: byID}, nil
}

func (r *MemoryVehicleRepository) List(_ context.Context, category string) ([]domain.Vehicle, error) {
	if category == "" {
		out := make([]domain.Vehicle, len(r.vehicles))
		copy(out, r.vehicles)
		return out, nil
	}
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *MemoryVehicleRepository) Get(_ context.Context, id string) (domain.Vehicle, error) {
	v, ok := r.byID[id]
	if !ok {
		return domain.Vehicle{}, ErrVehicleNotFound
	}
	return v, nil
}

func (r *MemoryVehicleRepository) Close() error { return nil }
