package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"talktotoyota/domain"
	"talktotoyota/repository"
)

const catalogCacheTTL = 5 * time.Minute

// VehicleService serves the catalog, fronting the repository with a cache.
// Cache failures are logged and ignored; the repository is the source of
// truth.
type VehicleService struct {
	repo   repository.VehicleRepository
	cache  repository.CacheRepository
	logger *slog.Logger
}

func NewVehicleService(repo repository.VehicleRepository, cache repository.CacheRepository, logger *slog.Logger) *VehicleService {
	return &VehicleService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *VehicleService) List(ctx context.Context, category string) ([]domain.Vehicle, error) {
	key := "vehicles:all"
	if category != "" {
		key = "vehicles:category:" + category
	}

	if cached, ok := s.cache.Get(ctx, key); ok {
		var vehicles []domain.Vehicle
		if err := json.Unmarshal([]byte(cached), &vehicles); err == nil {
			return vehicles, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "key", key)
	}

	vehicles, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vehicles); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), catalogCacheTTL); err != nil {
			s.logger.Warn("vehicle cache write failed", "key", key, "error", err)
		}
	}
	return vehicles, nil
}

func (s *VehicleService) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	key := "vehicles:id:" + id

	if cached, ok := s.cache.Get(ctx, key); ok {
		var v domain.Vehicle
		if err := json.Unmarshal([]byte(cached), &v); err == nil {
			return v, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "key", key)
	}

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Vehicle{}, err
	}

	if encoded, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), catalogCacheTTL); err != nil {
			s.logger.Warn("vehicle cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
