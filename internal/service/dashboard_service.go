package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// DashboardService computes ticket rollups. Nothing is cached.
type DashboardService struct {
	store repository.Store
}

// NewDashboardService constructs the service.
func NewDashboardService(store repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Stats recomputes the dashboard from committed state.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.store.Repos().Dashboard.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}
