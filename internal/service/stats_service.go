package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/racecast/internal/logger"
	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/repository"
)

// StatsService manages the admin-tunable competitor attributes
type StatsService struct {
	repo     repository.StatsRepository
	validate *validator.Validate
	roster   map[string]string
	audit    *logger.AuditLogger
}

// NewStatsService creates the service; overrides are accepted only for roster members
func NewStatsService(repo repository.StatsRepository, roster []string, log *logrus.Logger) *StatsService {
	if log == nil {
		log = logger.NewNopLogger()
	}

	names := make(map[string]string, len(roster))
	for _, name := range roster {
		names[models.CompetitorID(name)] = name
	}

	return &StatsService{
		repo:     repo,
		validate: validator.New(),
		roster:   names,
		audit:    logger.NewAuditLogger(log),
	}
}

// SetStats merges req over the stored attributes and persists the result
func (s *StatsService) SetStats(ctx context.Context, req models.SetStatsRequest, source string) (*models.CompetitorStats, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidStats, err)
	}

	name, ok := s.roster[models.CompetitorID(req.PersonName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownCompetitor, req.PersonName)
	}
	req.PersonName = name

	previous, err := s.repo.Get(ctx, name)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	merged := req.Merge(previous)
	if err := s.repo.Upsert(ctx, &merged); err != nil {
		return nil, err
	}

	s.audit.LogStatsOverride(name, changedFields(req), source)
	return &merged, nil
}

// GetStats returns the stored attributes of one competitor
func (s *StatsService) GetStats(ctx context.Context, personName string) (*models.CompetitorStats, error) {
	name, ok := s.roster[models.CompetitorID(personName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownCompetitor, personName)
	}
	return s.repo.Get(ctx, name)
}

// ListStats returns every stored competitor's attributes
func (s *StatsService) ListStats(ctx context.Context) ([]*models.CompetitorStats, error) {
	return s.repo.List(ctx)
}

func changedFields(req models.SetStatsRequest) map[string]interface{} {
	changed := make(map[string]interface{})
	if req.ReactionTime != nil {
		changed["reactionTime"] = *req.ReactionTime
	}
	if req.Acceleration != nil {
		changed["acceleration"] = *req.Acceleration
	}
	if req.MaxSpeed != nil {
		changed["maxSpeed"] = *req.MaxSpeed
	}
	if req.LSF != nil {
		changed["lsf"] = *req.LSF
	}
	return changed
}
