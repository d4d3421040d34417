package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalGlass is the canonical category label every glass-like content
// type collapses to during normalization.
const CanonicalGlass = "Glas"

// HighFillThreshold is the fill level at or above which a container counts
// towards the daily high-fill total.
const HighFillThreshold = 80.0

// Action is the kind of disposition recorded in the logbook.
type Action string

const (
	ActionHandled Action = "handled"
	ActionRemoved Action = "removed"
)

// ContainerRecord is one physical container reading in the active set,
// enriched with the per-(location code, category) aggregates.
type ContainerRecord struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	LocationCode string  `json:"location_code"`
	Category     string  `json:"category"`
	FillLevel    float64 `json:"fill_level"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`

	// Derived over the current active set.
	ComboCount int     `json:"combo_count"`
	MeanFill   float64 `json:"mean_fill"`
	OnRoute    bool    `json:"on_route"`

	// Mutable, one-way in normal flow.
	Handled bool `json:"handled"`

	// Optimistic versioning for the SQL store, bumped on every persisted
	// mutation of this row.
	Version int64 `json:"-"`
}

// GroupKey identifies the (location code, category) aggregation group.
type GroupKey struct {
	LocationCode string
	Category     string
}

func (r *ContainerRecord) Group() GroupKey {
	return GroupKey{LocationCode: r.LocationCode, Category: r.Category}
}

// DisplayLabel is the "name (fill%)" string shown in the map selection list.
// It is display-only; all matching uses the stable Name.
func (r *ContainerRecord) DisplayLabel() string {
	return r.Name + " (" + decimal.NewFromFloat(r.FillLevel).Round(1).String() + "%)"
}

// LogEntry is one immutable logbook row, created only by the disposition
// tracker.
type LogEntry struct {
	Seq          int64     `json:"seq,omitempty"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	LocationCode string    `json:"location_code"`
	Category     string    `json:"category"`
	FillLevel    float64   `json:"fill_level"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
}

// DailyTotal is one row per calendar day in the daily_totals table.
type DailyTotal struct {
	Day           string         `json:"day"` // YYYY-MM-DD
	HighFillCount int            `json:"high_fill_count"`
	Counters      map[string]int `json:"counters"`
}

// JaNee renders a boolean flag the way the source tables spell it.
func JaNee(b bool) string {
	if b {
		return "Ja"
	}
	return "Nee"
}
