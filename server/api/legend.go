package api

// LegendBand is one band of the fixed fill-level legend the map renderer
// shows.
type LegendBand struct {
	Label string  `json:"label"`
	Color string  `json:"color"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

var legendBands = []LegendBand{
	{Label: "0-30%", Color: "#0000ff", Min: 0, Max: 30},
	{Label: "30-60%", Color: "#00ffff", Min: 30, Max: 60},
	{Label: "60-90%", Color: "#ffff00", Min: 60, Max: 90},
	{Label: "90-100%", Color: "#ff0000", Min: 90, Max: 100},
}

// Legend returns the four-band fill-level legend.
func Legend() []LegendBand {
	bands := make([]LegendBand, len(legendBands))
	copy(bands, legendBands)
	return bands
}

// BandFor returns the legend band a fill level falls into. Band edges belong
// to the higher band; 100 stays in the last one.
func BandFor(fill float64) LegendBand {
	for i := len(legendBands) - 1; i > 0; i-- {
		if fill >= legendBands[i].Min {
			return legendBands[i]
		}
	}
	return legendBands[0]
}
