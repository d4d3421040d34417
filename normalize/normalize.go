// Package normalize turns the two raw uploaded tables (fleet + route) into
// the cleaned, enriched active record set.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"containerbeheer/ingest"
	"containerbeheer/models"

	"github.com/apex/log"
)

// Fleet table columns.
const (
	ColName        = "Container name"
	ColAddress     = "Address"
	ColCity        = "City"
	ColLocation    = "Location code"
	ColCategory    = "Content type"
	ColFillLevel   = "Fill level (%)"
	ColOperational = "Operational state"
	ColStatus      = "Status"
	ColOnHold      = "On hold"
	ColPosition    = "Container location"
)

// Route table column holding the stop description that should match a
// container name.
const ColRouteDescription = "Omschrijving"

// Active-row filter values, exact and case-sensitive as the source exports
// them.
const (
	stateInUse = "In use"
	holdNo     = "No"
)

var fleetColumns = []string{
	ColName, ColAddress, ColCity, ColLocation, ColCategory,
	ColFillLevel, ColOperational, ColStatus, ColOnHold, ColPosition,
}

// ValidationError reports a malformed upload. The current snapshot is left
// untouched; there is no partial processing.
type ValidationError struct {
	Table   string
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s table is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s table is invalid: %s", e.Table, e.Reason)
}

// CanonicalCategory collapses any case-insensitive glass-like content type to
// the canonical label. Everything else passes through unchanged. The rewrite
// is idempotent.
func CanonicalCategory(category string) string {
	if strings.Contains(strings.ToLower(category), "glass") {
		return models.CanonicalGlass
	}
	return category
}

// Normalize produces the active subset of the fleet table, with canonical
// categories, parsed coordinates, the on-route flag from the route table and
// the handled flag initialized to false. Aggregates (combo count, mean fill)
// are left zero; the aggregator fills them in.
func Normalize(fleet, route *ingest.Table) ([]models.ContainerRecord, error) {
	if missing := fleet.MissingColumns(fleetColumns...); len(missing) > 0 {
		return nil, &ValidationError{Table: "fleet", Missing: missing}
	}
	if missing := route.MissingColumns(ColRouteDescription); len(missing) > 0 {
		return nil, &ValidationError{Table: "route", Missing: missing}
	}

	routes := NewRouteSet(route.ColumnValues(ColRouteDescription))

	records := make([]models.ContainerRecord, 0, fleet.Len())
	for i := 0; i < fleet.Len(); i++ {
		if fleet.Cell(i, ColOperational) != stateInUse ||
			fleet.Cell(i, ColStatus) != stateInUse ||
			fleet.Cell(i, ColOnHold) != holdNo {
			continue
		}

		fill, err := strconv.ParseFloat(strings.TrimSpace(fleet.Cell(i, ColFillLevel)), 64)
		if err != nil {
			return nil, &ValidationError{Table: "fleet",
				Reason: fmt.Sprintf("row %d: unparseable fill level %q", i+1, fleet.Cell(i, ColFillLevel))}
		}
		if fill < 0 || fill > 100 {
			return nil, &ValidationError{Table: "fleet",
				Reason: fmt.Sprintf("row %d: fill level %v outside 0-100", i+1, fill)}
		}

		lat, lon, err := ParsePosition(fleet.Cell(i, ColPosition))
		if err != nil {
			return nil, &ValidationError{Table: "fleet",
				Reason: fmt.Sprintf("row %d: %v", i+1, err)}
		}

		name := fleet.Cell(i, ColName)
		records = append(records, models.ContainerRecord{
			Name:         name,
			Address:      fleet.Cell(i, ColAddress),
			City:         fleet.Cell(i, ColCity),
			LocationCode: fleet.Cell(i, ColLocation),
			Category:     CanonicalCategory(fleet.Cell(i, ColCategory)),
			FillLevel:    fill,
			Latitude:     lat,
			Longitude:    lon,
			OnRoute:      routes.Contains(name),
			Handled:      false,
		})
	}

	log.Infof("Normalized fleet table: %d of %d rows active", len(records), fleet.Len())
	return records, nil
}

// ParsePosition splits the "lat,lon" position string the fleet export uses.
func ParsePosition(position string) (lat, lon float64, err error) {
	parts := strings.SplitN(position, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable container location %q", position)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable latitude in %q", position)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable longitude in %q", position)
	}
	return lat, lon, nil
}
