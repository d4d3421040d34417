// Package proximity selects the containers within a fixed great-circle
// radius of a chosen center. Distances are geodesic, not flat Euclidean;
// container spacing is tens to hundreds of meters and degree-space Euclidean
// error is material at these latitudes.
package proximity

import (
	"github.com/apex/log"
	"github.com/golang/geo/s2"

	"containerbeheer/models"
)

const earthRadiusMeters = 6371000.0

// DefaultRadiusMeters is the radius the map view uses.
const DefaultRadiusMeters = 250.0

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// SelectCenter finds the record with the given stable name. When true
// duplicates exist the first occurrence in iteration order wins; that is a
// data-quality condition and gets logged.
func SelectCenter(records []models.ContainerRecord, name string) (*models.ContainerRecord, bool) {
	var center *models.ContainerRecord
	matches := 0
	for i := range records {
		if records[i].Name == name {
			if center == nil {
				center = &records[i]
			}
			matches++
		}
	}
	if matches > 1 {
		log.Warnf("Duplicate container name %q occurs %d times, using the first occurrence", name, matches)
	}
	return center, center != nil
}

// Filter returns all candidates within radiusMeters of the center. The
// center itself is always included (distance 0). Candidate order is
// preserved.
func Filter(center *models.ContainerRecord, candidates []models.ContainerRecord, radiusMeters float64) []models.ContainerRecord {
	nearby := make([]models.ContainerRecord, 0, len(candidates))
	for i := range candidates {
		d := DistanceMeters(center.Latitude, center.Longitude, candidates[i].Latitude, candidates[i].Longitude)
		if d <= radiusMeters {
			nearby = append(nearby, candidates[i])
		}
	}
	return nearby
}
