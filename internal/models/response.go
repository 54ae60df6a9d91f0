package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ResponseType distinguishes live snapshots from between-race updates
type ResponseType string

const (
	ResponseTypeSync   ResponseType = "sync"
	ResponseTypeUpdate ResponseType = "update"
)

// RaceResponse is the payload broadcast to clients once per tick
type RaceResponse struct {
	Type         ResponseType    `json:"type"`
	RemainBefore int64           `json:"remainBefore"` // unix millis: tick time while running, next start while idle
	History      [][]HistoryItem `json:"history"`
	IsRunning    bool            `json:"isRunning"`
	LastResults  []HistoryItem   `json:"lastResults"`
	CurrentRun   []HistoryItem   `json:"currentRun"`
}

// HistoryItem describes one competitor in a finished or running race
type HistoryItem struct {
	ID                string             `json:"id"`
	Place             int                `json:"place"`
	Progress          *float64           `json:"progress,omitempty"`
	Probabilities     *Probabilities     `json:"probabilities,omitempty"`
	PairProbabilities map[string]float64 `json:"pairProbabilities,omitempty"`
}

// Probabilities holds the finishing-rank distribution of a competitor.
// Positions[0] is the probability of finishing first.
type Probabilities struct {
	Positions []float64
	InTwo     float64
	InThree   float64
}

// NewProbabilities derives the top-two and top-three aggregates from a rank distribution
func NewProbabilities(positions []float64) *Probabilities {
	p := &Probabilities{Positions: positions}
	for i, v := range positions {
		if i < 2 {
			p.InTwo += v
		}
		if i < 3 {
			p.InThree += v
		}
	}
	return p
}

// MarshalJSON renders positions as pos1..posK next to inTwo and inThree
func (p Probabilities) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(p.Positions)+2)
	for i, v := range p.Positions {
		out["pos"+strconv.Itoa(i+1)] = v
	}
	out["inTwo"] = p.InTwo
	out["inThree"] = p.InThree
	return json.Marshal(out)
}

// UnmarshalJSON accepts the pos1..posK layout produced by MarshalJSON
func (p *Probabilities) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	positions := make(map[int]float64)
	maxPos := 0
	for key, v := range raw {
		switch {
		case key == "inTwo":
			p.InTwo = v
		case key == "inThree":
			p.InThree = v
		case strings.HasPrefix(key, "pos"):
			n, err := strconv.Atoi(strings.TrimPrefix(key, "pos"))
			if err != nil || n < 1 {
				return fmt.Errorf("invalid position key %q", key)
			}
			positions[n] = v
			if n > maxPos {
				maxPos = n
			}
		}
	}

	p.Positions = make([]float64, maxPos)
	for n, v := range positions {
		p.Positions[n-1] = v
	}
	return nil
}

// RoundProbability rounds a value to the given number of decimal places.
// A non-positive place count leaves the value untouched.
func RoundProbability(value float64, places int32) float64 {
	if places <= 0 {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}
