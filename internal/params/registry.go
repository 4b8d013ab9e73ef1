package params

import "sort"

// Key identifies an environmental parameter as exposed to API callers.
type Key string

const (
	WaveHeight            Key = "waveHeight"
	WaveDirection         Key = "waveDirection"
	WavePeriod            Key = "wavePeriod"
	SwellWaveHeight       Key = "swellWaveHeight"
	SeaSurfaceTemperature Key = "seaSurfaceTemperature"
	SeaLevelHeightMsl     Key = "seaLevelHeightMsl"
	Temperature2m         Key = "temperature2m"
	WindSpeed10m          Key = "windSpeed10m"
	WindDirection10m      Key = "windDirection10m"
	WindGusts10m          Key = "windGusts10m"
	Precipitation         Key = "precipitation"
	CloudCover            Key = "cloudCover"
	GHI                   Key = "ghi"
)

// Source tags which provider family serves a parameter.
type Source string

const (
	SourceMarine  Source = "marine"
	SourceWeather Source = "weather"
)

// Descriptor describes one parameter: how callers see it and how it is
// requested upstream.
type Descriptor struct {
	Key         Key    `json:"key"`
	DisplayName string `json:"displayName"`
	Upstream    string `json:"upstreamName"`
	Unit        string `json:"unit"`
	Source      Source `json:"source"`
}

// registry is the total mapping from Key to Descriptor. It is built once and
// never mutated; display-only concerns live in presentation.go.
var registry = map[Key]Descriptor{
	WaveHeight:            {WaveHeight, "Wave Height", "wave_height", "m", SourceMarine},
	WaveDirection:         {WaveDirection, "Wave Direction", "wave_direction", "°", SourceMarine},
	WavePeriod:            {WavePeriod, "Wave Period", "wave_period", "s", SourceMarine},
	SwellWaveHeight:       {SwellWaveHeight, "Swell Wave Height", "swell_wave_height", "m", SourceMarine},
	SeaSurfaceTemperature: {SeaSurfaceTemperature, "Sea Surface Temperature", "sea_surface_temperature", "°C", SourceMarine},
	SeaLevelHeightMsl:     {SeaLevelHeightMsl, "Sea Level (MSL)", "sea_level_height_msl", "m", SourceMarine},
	Temperature2m:         {Temperature2m, "Air Temperature (2m)", "temperature_2m", "°C", SourceWeather},
	WindSpeed10m:          {WindSpeed10m, "Wind Speed (10m)", "wind_speed_10m", "m/s", SourceWeather},
	WindDirection10m:      {WindDirection10m, "Wind Direction (10m)", "wind_direction_10m", "°", SourceWeather},
	WindGusts10m:          {WindGusts10m, "Wind Gusts (10m)", "wind_gusts_10m", "m/s", SourceWeather},
	Precipitation:         {Precipitation, "Precipitation", "precipitation", "mm", SourceWeather},
	CloudCover:            {CloudCover, "Cloud Cover", "cloud_cover", "%", SourceWeather},
	GHI:                   {GHI, "Solar Irradiance (GHI)", "shortwave_radiation", "W/m²", SourceWeather},
}

// List returns every descriptor, sorted by key.
func List() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lookup returns the descriptor for a single key.
func Lookup(key Key) (Descriptor, bool) {
	d, ok := registry[key]
	return d, ok
}

// Resolve maps caller-supplied keys to descriptors. Unknown keys are not an
// error; they are returned separately so the caller can report them.
func Resolve(keys []Key) (descs []Descriptor, unknown []string) {
	seen := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true

		d, ok := registry[k]
		if !ok {
			unknown = append(unknown, string(k))
			continue
		}
		descs = append(descs, d)
	}
	return descs, unknown
}

// Grouped partitions descriptors by their provider family.
type Grouped struct {
	Marine  []Descriptor
	Weather []Descriptor
}

// GroupBySource splits descriptors into the marine and weather families used
// to build each provider's upstream query.
func GroupBySource(descs []Descriptor) Grouped {
	var g Grouped
	for _, d := range descs {
		switch d.Source {
		case SourceMarine:
			g.Marine = append(g.Marine, d)
		case SourceWeather:
			g.Weather = append(g.Weather, d)
		}
	}
	return g
}

// UpstreamNames returns the comma-join-ready upstream parameter names.
func UpstreamNames(descs []Descriptor) []string {
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Upstream)
	}
	return names
}

// Keys extracts the keys from a descriptor list.
func Keys(descs []Descriptor) []Key {
	keys := make([]Key, 0, len(descs))
	for _, d := range descs {
		keys = append(keys, d.Key)
	}
	return keys
}
