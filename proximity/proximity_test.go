package proximity

import (
	"math"
	"testing"

	"containerbeheer/models"
)

func at(name string, lat, lon float64) models.ContainerRecord {
	return models.ContainerRecord{Name: name, Category: "Glas", Latitude: lat, Longitude: lon}
}

func names(records []models.ContainerRecord) map[string]bool {
	m := make(map[string]bool, len(records))
	for i := range records {
		m[records[i].Name] = true
	}
	return m
}

func TestDistanceMeters(t *testing.T) {
	// 0.002 degrees of latitude is roughly 222 m.
	d := DistanceMeters(52.0, 4.0, 52.002, 4.0)
	if math.Abs(d-222) > 2 {
		t.Errorf("distance %v m, expected about 222 m", d)
	}
	if z := DistanceMeters(52.0, 4.0, 52.0, 4.0); z != 0 {
		t.Errorf("distance to self %v, expected 0", z)
	}
}

func TestFilterRadius(t *testing.T) {
	candidates := []models.ContainerRecord{
		at("A", 52.0, 4.0),
		at("B", 52.002, 4.0), // ~222 m
		at("C", 52.01, 4.0),  // ~1.1 km
	}
	center := &candidates[0]

	in250 := names(Filter(center, candidates, 250))
	if !in250["A"] {
		t.Error("center must always be included")
	}
	if !in250["B"] {
		t.Error("B at ~222 m must be inside a 250 m radius")
	}
	if in250["C"] {
		t.Error("C at ~1.1 km must be outside a 250 m radius")
	}

	in200 := names(Filter(center, candidates, 200))
	if in200["B"] {
		t.Error("B at ~222 m must be outside a 200 m radius")
	}
}

// Doubling the radius never shrinks the result set.
func TestFilterMonotonic(t *testing.T) {
	candidates := []models.ContainerRecord{
		at("A", 52.0, 4.0),
		at("B", 52.001, 4.0),
		at("C", 52.002, 4.0),
		at("D", 52.004, 4.001),
		at("E", 51.996, 3.998),
	}
	center := &candidates[0]

	for _, radius := range []float64{50, 100, 200, 400, 800} {
		small := Filter(center, candidates, radius)
		large := names(Filter(center, candidates, radius*2))
		for i := range small {
			if !large[small[i].Name] {
				t.Errorf("radius %v: %s inside but missing at radius %v", radius, small[i].Name, radius*2)
			}
		}
	}
}

func TestSelectCenter(t *testing.T) {
	records := []models.ContainerRecord{
		at("A", 52.0, 4.0),
		at("B", 52.1, 4.1),
		at("A", 53.0, 5.0), // duplicate name, first occurrence wins
	}

	center, ok := SelectCenter(records, "A")
	if !ok {
		t.Fatal("expected to find container A")
	}
	if center.Latitude != 52.0 {
		t.Errorf("expected the first occurrence of A, got %v", center.Latitude)
	}

	if _, ok := SelectCenter(records, "Z"); ok {
		t.Error("expected no match for Z")
	}
}
