package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"talktotoyota/domain"
)

//go:embed seed_vehicles.json
var seedVehiclesJSON []byte

// SeedVehicles decodes the embedded catalog. It backs the in-memory
// repository and is used to populate an empty SQLite database on first run.
func SeedVehicles() ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	if err := json.Unmarshal(seedVehiclesJSON, &vehicles); err != nil {
		return nil, fmt.Errorf("decoding embedded vehicle seed: %w", err)
	}
	return vehicles, nil
}
