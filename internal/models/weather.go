package models

// Field names follow the upstream one-call JSON shape so that the primary
// endpoint decodes directly into these types and the synthesized fallback
// bundle is byte-compatible with it. Fields the narrow fallback endpoints
// cannot populate (dew point, UV index, per-day sunrise/sunset, ...) are
// pointers and stay absent rather than defaulting to zero.

// Condition is one entry of an upstream "weather" array.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// HourlyRecord is a single point of an hourly time series.
type HourlyRecord struct {
	Timestamp  *int64      `json:"dt,omitempty"`
	Temp       *float64    `json:"temp,omitempty"`
	FeelsLike  *float64    `json:"feels_like,omitempty"`
	Pressure   *float64    `json:"pressure,omitempty"`
	Humidity   *int        `json:"humidity,omitempty"`
	DewPoint   *float64    `json:"dew_point,omitempty"`
	UVIndex    *float64    `json:"uvi,omitempty"`
	Clouds     *int        `json:"clouds,omitempty"`
	Visibility *int        `json:"visibility,omitempty"`
	WindSpeed  *float64    `json:"wind_speed,omitempty"`
	WindDeg    *float64    `json:"wind_deg,omitempty"`
	Pop        float64     `json:"pop"`
	Weather    []Condition `json:"weather"`
}

// CurrentRecord is the bundle's current-conditions entry: an hourly record
// plus sunrise/sunset when the acquisition path had them.
type CurrentRecord struct {
	HourlyRecord
	Sunrise *int64 `json:"sunrise,omitempty"`
	Sunset  *int64 `json:"sunset,omitempty"`
}

// DailyTemp holds a day's aggregated temperatures. All fields are absent when
// no hourly temperature contributed to the day.
type DailyTemp struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	Day *float64 `json:"day,omitempty"`
}

// DailyRecord is one local calendar day. Timestamp is the epoch of local
// midnight for that day.
type DailyRecord struct {
	Timestamp int64       `json:"dt"`
	Sunrise   *int64      `json:"sunrise,omitempty"`
	Sunset    *int64      `json:"sunset,omitempty"`
	Temp      DailyTemp   `json:"temp"`
	Pop       float64     `json:"pop"`
	Weather   []Condition `json:"weather"`
}

// ForecastBundle is the single contract every front-end consumes, regardless
// of whether the primary endpoint or the fallback synthesizer produced it.
// Hourly is chronological and capped at 48 entries, Daily at 8.
type ForecastBundle struct {
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	TimezoneOffset int            `json:"timezone_offset"`
	Timezone       string         `json:"timezone"`
	Current        CurrentRecord  `json:"current"`
	Hourly         []HourlyRecord `json:"hourly"`
	Daily          []DailyRecord  `json:"daily"`
}

// Location is a geocoding result. Immutable once resolved.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// AirQuality holds an air pollution reading. AQI uses the upstream 1 (best)
// to 5 (worst) scale and is absent when the upstream list was empty.
// Components maps pollutant codes (co, no2, pm2_5, ...) to concentrations;
// an empty upstream components object yields an empty map, not an error.
type AirQuality struct {
	AQI        *int               `json:"aqi,omitempty"`
	Components map[string]float64 `json:"components"`
}
