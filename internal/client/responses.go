package client

import "github.com/myskyapp/mysky-service/internal/models"

// Upstream response shapes for the narrow endpoints. Numeric leaves are
// pointers: a field the upstream omitted stays absent through synthesis
// instead of turning into a zero.

// MainReading is the "main" block shared by current-conditions and
// forecast-list entries.
type MainReading struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	Pressure  *float64 `json:"pressure"`
	Humidity  *int     `json:"humidity"`
}

// WindReading is the "wind" block.
type WindReading struct {
	Speed *float64 `json:"speed"`
	Deg   *float64 `json:"deg"`
}

// CloudReading is the "clouds" block.
type CloudReading struct {
	All *int `json:"all"`
}

// CurrentConditionsResponse is the /weather endpoint payload. Timezone is the
// shift in seconds from UTC.
type CurrentConditionsResponse struct {
	Dt         *int64             `json:"dt"`
	Timezone   int                `json:"timezone"`
	Main       MainReading        `json:"main"`
	Weather    []models.Condition `json:"weather"`
	Wind       WindReading        `json:"wind"`
	Clouds     CloudReading       `json:"clouds"`
	Visibility *int               `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// ForecastEntry is one 3-hour step of the /forecast endpoint.
type ForecastEntry struct {
	Dt         *int64             `json:"dt"`
	Main       MainReading        `json:"main"`
	Weather    []models.Condition `json:"weather"`
	Clouds     CloudReading       `json:"clouds"`
	Wind       WindReading        `json:"wind"`
	Visibility *int               `json:"visibility"`
	Pop        float64            `json:"pop"`
}

// ForecastListResponse is the /forecast endpoint payload, ascending by dt.
type ForecastListResponse struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// AirPollutionEntry is one reading of the /air_pollution endpoint. AQI is the
// upstream 1..5 scale.
type AirPollutionEntry struct {
	Main struct {
		AQI *int `json:"aqi"`
	} `json:"main"`
	Components map[string]float64 `json:"components"`
}

// AirPollutionResponse is the /air_pollution endpoint payload.
type AirPollutionResponse struct {
	List []AirPollutionEntry `json:"list"`
}
