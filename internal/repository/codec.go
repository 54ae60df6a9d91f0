package repository

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/racecast/internal/models"
)

func encodeResults(record models.RaceRecord) ([]byte, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(record.SortedByPlace())
	if err != nil {
		return nil, fmt.Errorf("failed to encode race %d: %w", record.RaceIndex, err)
	}
	return data, nil
}

func decodeRecord(raceIndex int, data []byte) (models.RaceRecord, error) {
	var results []models.RaceResult
	if err := json.Unmarshal(data, &results); err != nil {
		return models.RaceRecord{}, fmt.Errorf("failed to decode race %d: %w", raceIndex, err)
	}
	return models.RaceRecord{RaceIndex: raceIndex, Results: results}, nil
}

// reverseRecords flips newest-first query output into oldest-first order
func reverseRecords(records []models.RaceRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}
