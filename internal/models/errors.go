package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrHistoryWrite        = errors.New("race record could not be persisted")
	ErrInvalidRaceRecord   = errors.New("invalid race record")
	ErrInvalidStats        = errors.New("invalid competitor stats")
	ErrUnknownCompetitor   = errors.New("unknown competitor")
	ErrDuplicateRaceRecord = errors.New("race record already exists for this index")
)
