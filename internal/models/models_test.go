package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestRaceRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  RaceRecord
		wantErr bool
	}{
		{
			name: "valid record",
			record: RaceRecord{RaceIndex: 0, Results: []RaceResult{
				{Name: "A", FinishTime: 10.1, Place: 1},
				{Name: "B", FinishTime: 10.4, Place: 2},
			}},
		},
		{
			name:    "negative index",
			record:  RaceRecord{RaceIndex: -1, Results: []RaceResult{{Name: "A", FinishTime: 10, Place: 1}}},
			wantErr: true,
		},
		{
			name:    "empty results",
			record:  RaceRecord{RaceIndex: 3},
			wantErr: true,
		},
		{
			name: "infinite finish time",
			record: RaceRecord{RaceIndex: 1, Results: []RaceResult{
				{Name: "A", FinishTime: math.Inf(1), Place: 1},
			}},
			wantErr: true,
		},
		{
			name: "duplicate place",
			record: RaceRecord{RaceIndex: 1, Results: []RaceResult{
				{Name: "A", FinishTime: 10, Place: 1},
				{Name: "B", FinishTime: 10.2, Place: 1},
			}},
			wantErr: true,
		},
		{
			name: "place beyond roster",
			record: RaceRecord{RaceIndex: 1, Results: []RaceResult{
				{Name: "A", FinishTime: 10, Place: 1},
				{Name: "B", FinishTime: 10.2, Place: 3},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRaceRecord))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRaceRecordSortedByPlace(t *testing.T) {
	record := RaceRecord{RaceIndex: 2, Results: []RaceResult{
		{Name: "C", FinishTime: 11, Place: 3},
		{Name: "A", FinishTime: 9.8, Place: 1},
		{Name: "B", FinishTime: 10.2, Place: 2},
	}}

	sorted := record.SortedByPlace()
	require.Len(t, sorted, 3)
	assert.Equal(t, "A", sorted[0].Name)
	assert.Equal(t, "B", sorted[1].Name)
	assert.Equal(t, "C", sorted[2].Name)
	assert.Equal(t, "C", record.Results[0].Name, "original order must be untouched")

	res, ok := record.ResultFor("B")
	assert.True(t, ok)
	assert.Equal(t, 2, res.Place)
	_, ok = record.ResultFor("Z")
	assert.False(t, ok)
}

func TestCompetitorRecentResults(t *testing.T) {
	c := NewCompetitor("A", PerformanceModel{Mu: 10})
	for i := 0; i < 5; i++ {
		c.AppendResult(RaceResult{Name: "A", FinishTime: float64(10 + i), Place: 1})
	}

	assert.Len(t, c.RecentResults(25), 5)
	recent := c.RecentResults(2)
	require.Len(t, recent, 2)
	assert.Equal(t, 13.0, recent[0].FinishTime)
	assert.Equal(t, 14.0, recent[1].FinishTime)
	assert.Equal(t, "a", c.ID())
}

func TestProbabilitiesJSON(t *testing.T) {
	p := NewProbabilities([]float64{0.4, 0.3, 0.2, 0.1})
	assert.InDelta(t, 0.7, p.InTwo, 1e-9)
	assert.InDelta(t, 0.9, p.InThree, 1e-9)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]float64
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 0.4, raw["pos1"])
	assert.Equal(t, 0.1, raw["pos4"])
	assert.Contains(t, raw, "inTwo")
	assert.Contains(t, raw, "inThree")

	var decoded Probabilities
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p.Positions, decoded.Positions)
}

func TestRoundProbability(t *testing.T) {
	assert.Equal(t, 0.1235, RoundProbability(0.123456, 4))
	assert.Equal(t, 0.123456, RoundProbability(0.123456, 0))
}

func TestSetStatsRequestMerge(t *testing.T) {
	previous := &CompetitorStats{
		PersonName:   "A",
		ReactionTime: floatPtr(0.15),
		Acceleration: floatPtr(3.1),
		MaxSpeed:     floatPtr(11.2),
	}

	merged := SetStatsRequest{PersonName: "A", MaxSpeed: floatPtr(11.8), LSF: floatPtr(0.9)}.Merge(previous)
	assert.Equal(t, 0.15, *merged.ReactionTime)
	assert.Equal(t, 3.1, *merged.Acceleration)
	assert.Equal(t, 11.8, *merged.MaxSpeed)
	assert.Equal(t, 0.9, *merged.LSF)

	fresh := SetStatsRequest{PersonName: "B", ReactionTime: floatPtr(0.2)}.Merge(nil)
	assert.Equal(t, "B", fresh.PersonName)
	assert.Nil(t, fresh.MaxSpeed)
	assert.Equal(t, 0.2, *fresh.ReactionTime)
}
