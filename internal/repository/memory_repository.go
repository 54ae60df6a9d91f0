package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/racecast/internal/models"
)

// MemoryRaceHistoryRepository keeps race history in process memory
type MemoryRaceHistoryRepository struct {
	mu      sync.RWMutex
	records []models.RaceRecord
	indexes map[int]bool
}

// NewMemoryRaceHistoryRepository creates an empty in-memory history
func NewMemoryRaceHistoryRepository() *MemoryRaceHistoryRepository {
	return &MemoryRaceHistoryRepository{indexes: make(map[int]bool)}
}

// Append stores a completed race; an existing index yields ErrDuplicateRaceRecord
func (r *MemoryRaceHistoryRepository) Append(_ context.Context, record models.RaceRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexes[record.RaceIndex] {
		return fmt.Errorf("%w: race %d", models.ErrDuplicateRaceRecord, record.RaceIndex)
	}
	stored := models.RaceRecord{RaceIndex: record.RaceIndex, Results: record.SortedByPlace()}
	r.indexes[record.RaceIndex] = true
	r.records = append(r.records, stored)
	sort.SliceStable(r.records, func(i, j int) bool {
		return r.records[i].RaceIndex < r.records[j].RaceIndex
	})
	return nil
}

// LoadAll returns every stored race, oldest first
func (r *MemoryRaceHistoryRepository) LoadAll(_ context.Context) ([]models.RaceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CopyRecords(r.records), nil
}

// LoadLastN returns the n most recent races, oldest first
func (r *MemoryRaceHistoryRepository) LoadLastN(_ context.Context, n int) ([]models.RaceRecord, error) {
	if n <= 0 {
		return []models.RaceRecord{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	start := len(r.records) - n
	if start < 0 {
		start = 0
	}
	return CopyRecords(r.records[start:]), nil
}

// Clear removes every stored race
func (r *MemoryRaceHistoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.indexes = make(map[int]bool)
	return nil
}

// Count returns the number of stored races
func (r *MemoryRaceHistoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// Ping always succeeds
func (r *MemoryRaceHistoryRepository) Ping(_ context.Context) error {
	return nil
}

// CopyRecords deep-copies records so callers cannot alias stored results
func CopyRecords(records []models.RaceRecord) []models.RaceRecord {
	out := make([]models.RaceRecord, len(records))
	for i, rec := range records {
		out[i] = models.RaceRecord{
			RaceIndex: rec.RaceIndex,
			Results:   append([]models.RaceResult{}, rec.Results...),
		}
	}
	return out
}

// MemoryStatsRepository keeps competitor stats in process memory
type MemoryStatsRepository struct {
	mu    sync.RWMutex
	stats map[string]models.CompetitorStats
	now   func() time.Time
}

// NewMemoryStatsRepository creates an empty in-memory stats store
func NewMemoryStatsRepository() *MemoryStatsRepository {
	return &MemoryStatsRepository{stats: make(map[string]models.CompetitorStats), now: time.Now}
}

// Get retrieves the stats of a competitor
func (r *MemoryStatsRepository) Get(_ context.Context, personName string) (*models.CompetitorStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.stats[personName]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &stats, nil
}

// List retrieves all stored competitor stats ordered by name
func (r *MemoryStatsRepository) List(_ context.Context) ([]*models.CompetitorStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.CompetitorStats, 0, len(r.stats))
	for _, s := range r.stats {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonName < out[j].PersonName })
	return out, nil
}

// Upsert stores the complete stats row of a competitor
func (r *MemoryStatsRepository) Upsert(_ context.Context, stats *models.CompetitorStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats.UpdatedAt = r.now().UTC()
	r.stats[stats.PersonName] = *stats
	return nil
}
