package models

import "time"

// CompetitorStats holds the admin-tunable attributes of a competitor
type CompetitorStats struct {
	PersonName   string    `db:"person_name" json:"personName" validate:"required"`
	ReactionTime *float64  `db:"reaction_time" json:"reactionTime"`
	Acceleration *float64  `db:"acceleration" json:"acceleration"`
	MaxSpeed     *float64  `db:"max_speed" json:"maxSpeed"`
	LSF          *float64  `db:"lsf" json:"lsf"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// SetStatsRequest overrides selected attributes of a competitor; nil fields keep stored values
type SetStatsRequest struct {
	PersonName   string   `json:"personName" validate:"required"`
	ReactionTime *float64 `json:"reactionTime" validate:"omitempty,gte=0"`
	Acceleration *float64 `json:"acceleration" validate:"omitempty,gte=0"`
	MaxSpeed     *float64 `json:"maxSpeed" validate:"omitempty,gt=0"`
	LSF          *float64 `json:"lsf" validate:"omitempty,gte=0"`
}

// Merge applies the request on top of previously stored stats, which may be nil
func (r SetStatsRequest) Merge(previous *CompetitorStats) CompetitorStats {
	merged := CompetitorStats{PersonName: r.PersonName}
	if previous != nil {
		merged.ReactionTime = previous.ReactionTime
		merged.Acceleration = previous.Acceleration
		merged.MaxSpeed = previous.MaxSpeed
		merged.LSF = previous.LSF
	}
	if r.ReactionTime != nil {
		merged.ReactionTime = r.ReactionTime
	}
	if r.Acceleration != nil {
		merged.Acceleration = r.Acceleration
	}
	if r.MaxSpeed != nil {
		merged.MaxSpeed = r.MaxSpeed
	}
	if r.LSF != nil {
		merged.LSF = r.LSF
	}
	return merged
}
