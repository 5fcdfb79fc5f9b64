package forecast

import (
	"fmt"

	"github.com/myskyapp/mysky-service/internal/client"
	"github.com/myskyapp/mysky-service/internal/models"
)

// Synthesize rebuilds a one-call-shaped ForecastBundle from a
// current-conditions response and an ascending 3-hour forecast list. Used
// when the primary combined endpoint is unavailable. The current reading
// becomes the first hourly entry; forecast entries follow until the hourly
// series holds 48 points. Dew point, UV index, per-day sunrise/sunset and the
// other fields the narrow endpoints cannot supply stay absent.
func Synthesize(lat, lon float64, cur *client.CurrentConditionsResponse, fc *client.ForecastListResponse) *models.ForecastBundle {
	tzOffset := cur.Timezone

	first := models.HourlyRecord{
		Timestamp:  cur.Dt,
		Temp:       cur.Main.Temp,
		FeelsLike:  cur.Main.FeelsLike,
		Pressure:   cur.Main.Pressure,
		Humidity:   cur.Main.Humidity,
		Clouds:     cur.Clouds.All,
		Visibility: cur.Visibility,
		WindSpeed:  cur.Wind.Speed,
		WindDeg:    cur.Wind.Deg,
		Pop:        0, // current-conditions responses carry no pop field
		Weather:    conditionsOrEmpty(cur.Weather),
	}

	hourly := make([]models.HourlyRecord, 0, maxHourly)
	hourly = append(hourly, first)
	if fc != nil {
		for _, item := range fc.List {
			if len(hourly) >= maxHourly {
				break
			}
			hourly = append(hourly, models.HourlyRecord{
				Timestamp:  item.Dt,
				Temp:       item.Main.Temp,
				FeelsLike:  item.Main.FeelsLike,
				Pressure:   item.Main.Pressure,
				Humidity:   item.Main.Humidity,
				Clouds:     item.Clouds.All,
				Visibility: item.Visibility,
				WindSpeed:  item.Wind.Speed,
				WindDeg:    item.Wind.Deg,
				Pop:        item.Pop,
				Weather:    conditionsOrEmpty(item.Weather),
			})
		}
	}

	return &models.ForecastBundle{
		Lat:            lat,
		Lon:            lon,
		TimezoneOffset: tzOffset,
		Timezone:       timezoneName(tzOffset),
		Current: models.CurrentRecord{
			HourlyRecord: first,
			Sunrise:      cur.Sys.Sunrise,
			Sunset:       cur.Sys.Sunset,
		},
		Hourly: hourly,
		Daily:  GroupDaily(hourly, tzOffset),
	}
}

// timezoneName renders a fixed-offset zone name; the current-conditions
// response carries only the offset, never an IANA name.
func timezoneName(offsetSeconds int) string {
	if offsetSeconds == 0 {
		return "UTC"
	}
	sign := "+"
	s := offsetSeconds
	if s < 0 {
		sign = "-"
		s = -s
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, s/3600, (s%3600)/60)
}

func conditionsOrEmpty(w []models.Condition) []models.Condition {
	if w == nil {
		return []models.Condition{}
	}
	return w
}
