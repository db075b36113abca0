package repository

import (
	"context"
	"errors"

	"talktotoyota/domain"
)

// ErrVehicleNotFound is returned when a catalog lookup misses.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepository provides read access to the vehicle catalog.
// Category filters List when non-empty; an empty category returns everything.
type VehicleRepository interface {
	List(ctx context.Context, category string) ([]domain.Vehicle, error)
	Get(ctx context.Context, id string) (domain.Vehicle, error)
	Close() error
}
