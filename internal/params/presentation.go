package params

// plotColors maps parameters to their chart color. Kept apart from the
// domain registry so presentation tweaks never touch descriptors.
var plotColors = map[Key]string{
	WaveHeight:            "#2563eb",
	WaveDirection:         "#0891b2",
	WavePeriod:            "#0d9488",
	SwellWaveHeight:       "#7c3aed",
	SeaSurfaceTemperature: "#db2777",
	SeaLevelHeightMsl:     "#1d4ed8",
	Temperature2m:         "#dc2626",
	WindSpeed10m:          "#16a34a",
	WindDirection10m:      "#65a30d",
	WindGusts10m:          "#15803d",
	Precipitation:         "#0284c7",
	CloudCover:            "#64748b",
	GHI:                   "#f59e0b",
}

const defaultPlotColor = "#6b7280"

// PlotColor returns the chart color for a parameter.
func PlotColor(key Key) string {
	if c, ok := plotColors[key]; ok {
		return c
	}
	return defaultPlotColor
}
