// Package api holds the wire types and endpoint names of the service.
package api

import (
	"github.com/shopspring/decimal"

	"containerbeheer/models"
)

const (
	EndPointHealth        = "/health"
	EndPointVersion       = "/version"
	EndPointIngest        = "/ingest"
	EndPointGetContainers = "/get_containers"
	EndPointGetCategories = "/get_categories"
	EndPointGetMap        = "/get_map"
	EndPointMarkHandled   = "/mark_handled"
	EndPointRemove        = "/remove_container"
	EndPointGetLog        = "/get_log"
)

// ContainerView is the table/map representation of one enriched record.
// OnRoute is spelled the way the source tables do; Label is display-only,
// selection always goes through Name.
type ContainerView struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	LocationCode string  `json:"location_code"`
	Category     string  `json:"category"`
	FillLevel    float64 `json:"fill_level"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ComboCount   int     `json:"combo_count"`
	MeanFill     float64 `json:"mean_fill"`
	OnRoute      string  `json:"on_route"` // "Ja" / "Nee"
	Handled      bool    `json:"handled"`
	Label        string  `json:"label"`
}

// ViewOf converts a record for the wire, rounding the mean fill level to one
// decimal for display.
func ViewOf(r *models.ContainerRecord) ContainerView {
	mean, _ := decimal.NewFromFloat(r.MeanFill).Round(1).Float64()
	return ContainerView{
		Name:         r.Name,
		Address:      r.Address,
		City:         r.City,
		LocationCode: r.LocationCode,
		Category:     r.Category,
		FillLevel:    r.FillLevel,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		ComboCount:   r.ComboCount,
		MeanFill:     mean,
		OnRoute:      models.JaNee(r.OnRoute),
		Handled:      r.Handled,
		Label:        r.DisplayLabel(),
	}
}

type IngestResponse struct {
	ActiveCount int `json:"active_count"`
	FleetRows   int `json:"fleet_rows"`
	RouteStops  int `json:"route_stops"`
}

type ContainersResponse struct {
	Pending []ContainerView `json:"pending"`
	Handled []ContainerView `json:"handled"`
	Count   int             `json:"count"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Count      int      `json:"count"`
}

type MapArgs struct {
	Category     string  `json:"category"`
	Container    string  `json:"container"`
	RadiusMeters float64 `json:"radius_meters,omitempty"`
}

// HeatPoint is one heat-intensity coordinate: the mean fill level of all
// nearby containers sharing the position.
type HeatPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Intensity float64 `json:"intensity"`
}

type MapResponse struct {
	Center       ContainerView   `json:"center"`
	Nearby       []ContainerView `json:"nearby"`
	HeatPoints   []HeatPoint     `json:"heat_points"`
	Legend       []LegendBand    `json:"legend"`
	RadiusMeters float64         `json:"radius_meters"`
}

type DispositionArgs struct {
	Container string `json:"container"`
}

// DispositionResponse reports exactly one of: success with a change count,
// a no-op, or (via the HTTP error path) a failure with reason.
type DispositionResponse struct {
	Status    string         `json:"status"` // "ok" or "noop"
	Changed   int            `json:"changed"`
	Container *ContainerView `json:"container,omitempty"`
}

type LogResponse struct {
	Entries []models.LogEntry `json:"entries"`
	Count   int               `json:"count"`
}
