package service

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/racecast/internal/logger"
	"github.com/yourusername/racecast/internal/metrics"
	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/repository"
)

const allRecordsKey = "all"

// HistoryService fronts the race history repository with a short-lived read cache.
// Every write through the service flushes the cache, so readers in this process
// never see a record set older than the last append or clear.
type HistoryService struct {
	repo  repository.RaceHistoryRepository
	cache *cache.Cache
	audit *logger.AuditLogger
}

// NewHistoryService creates the service; a non-positive ttl disables caching
func NewHistoryService(repo repository.RaceHistoryRepository, ttl time.Duration, log *logrus.Logger) *HistoryService {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &HistoryService{
		repo:  repo,
		audit: logger.NewAuditLogger(log),
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, ttl*2)
	}
	return s
}

// LoadAll returns every stored race, oldest first
func (s *HistoryService) LoadAll(ctx context.Context) ([]models.RaceRecord, error) {
	return s.cached(allRecordsKey, func() ([]models.RaceRecord, error) {
		return s.repo.LoadAll(ctx)
	})
}

// LoadLastN returns the n most recent races, oldest first
func (s *HistoryService) LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error) {
	return s.cached("last:"+strconv.Itoa(n), func() ([]models.RaceRecord, error) {
		return s.repo.LoadLastN(ctx, n)
	})
}

// Append stores a finished race and invalidates cached reads
func (s *HistoryService) Append(ctx context.Context, record models.RaceRecord) error {
	defer s.flush()
	return s.repo.Append(ctx, record)
}

// Clear removes all stored races on behalf of source
func (s *HistoryService) Clear(ctx context.Context, source string) error {
	defer s.flush()
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.audit.LogHistoryCleared(source, time.Now().UTC())
	return nil
}

// Count returns the number of stored races
func (s *HistoryService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Ping checks the backing store
func (s *HistoryService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *HistoryService) cached(key string, load func() ([]models.RaceRecord, error)) ([]models.RaceRecord, error) {
	if s.cache == nil {
		return load()
	}

	if v, found := s.cache.Get(key); found {
		metrics.RecordHistoryCache(true)
		return repository.CopyRecords(v.([]models.RaceRecord)), nil
	}
	metrics.RecordHistoryCache(false)

	records, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, repository.CopyRecords(records))
	return records, nil
}

func (s *HistoryService) flush() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
