package server

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	geojson "github.com/paulmach/go.geojson"

	"containerbeheer/models"
	"containerbeheer/proximity"
	"containerbeheer/server/api"
)

// GetMap serves the map renderer payload: the selected center, every
// container of the same category within the radius, per-position mean fill
// levels as heat intensities and the fixed legend. With ?format=geojson the
// nearby set is returned as a FeatureCollection.
func (s *Server) GetMap(c *gin.Context) {
	var args api.MapArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", api.EndPointGetMap, err)
		return
	}

	records, err := s.store.LoadSnapshot(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to load snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the container table"})
		return
	}

	candidates := make([]models.ContainerRecord, 0, len(records))
	for i := range records {
		if args.Category == "" || records[i].Category == args.Category {
			candidates = append(candidates, records[i])
		}
	}

	center, ok := proximity.SelectCenter(candidates, args.Container)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "container not found, refresh and retry"})
		return
	}

	radius := args.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.ProximityRadiusMeters
	}
	nearby := proximity.Filter(center, candidates, radius)

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, mapFeatureCollection(center, nearby))
		return
	}

	resp := api.MapResponse{
		Center:       api.ViewOf(center),
		Nearby:       make([]api.ContainerView, 0, len(nearby)),
		HeatPoints:   heatPoints(nearby),
		Legend:       api.Legend(),
		RadiusMeters: radius,
	}
	for i := range nearby {
		resp.Nearby = append(resp.Nearby, api.ViewOf(&nearby[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// heatPoints averages fill levels of containers sharing a position, the
// heat-intensity input of the map renderer.
func heatPoints(nearby []models.ContainerRecord) []api.HeatPoint {
	type pos struct{ lat, lon float64 }
	sums := map[pos]float64{}
	counts := map[pos]int{}
	order := []pos{}
	for i := range nearby {
		p := pos{nearby[i].Latitude, nearby[i].Longitude}
		if counts[p] == 0 {
			order = append(order, p)
		}
		sums[p] += nearby[i].FillLevel
		counts[p]++
	}
	points := make([]api.HeatPoint, 0, len(order))
	for _, p := range order {
		points = append(points, api.HeatPoint{
			Latitude:  p.lat,
			Longitude: p.lon,
			Intensity: sums[p] / float64(counts[p]),
		})
	}
	return points
}

func mapFeatureCollection(center *models.ContainerRecord, nearby []models.ContainerRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range nearby {
		r := &nearby[i]
		f := geojson.NewPointFeature([]float64{r.Longitude, r.Latitude})
		f.SetProperty("name", r.Name)
		f.SetProperty("location_code", r.LocationCode)
		f.SetProperty("fill_level", r.FillLevel)
		f.SetProperty("mean_fill", r.MeanFill)
		f.SetProperty("color", api.BandFor(r.MeanFill).Color)
		f.SetProperty("center", r.Name == center.Name)
		fc.AddFeature(f)
	}
	return fc
}
