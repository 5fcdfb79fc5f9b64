package forecast

import (
	"time"

	"github.com/myskyapp/mysky-service/internal/models"
)

const (
	maxHourly = 48
	maxDaily  = 8
)

type dayBucket struct {
	midnight int64
	temps    []float64
	pops     []float64
	weather  []models.Condition
}

// GroupDaily buckets an hourly series into local calendar days and returns at
// most 8 DailyRecords in first-seen (chronological for an ascending input)
// order. The local day of a record is its timestamp shifted by
// tzOffsetSeconds, read in the UTC frame; records without a timestamp are
// skipped. A day's min/max/mean come from all hourly temps observed in it,
// its pop is the max observed, and its weather is the first condition sample
// seen.
func GroupDaily(hourly []models.HourlyRecord, tzOffsetSeconds int) []models.DailyRecord {
	buckets := make(map[string]*dayBucket)
	var order []string

	for _, h := range hourly {
		if h.Timestamp == nil {
			continue
		}
		local := time.Unix(*h.Timestamp+int64(tzOffsetSeconds), 0).UTC()
		key := local.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			y, m, d := local.Date()
			// Midnight in the shifted frame, shifted back to a real epoch.
			midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() - int64(tzOffsetSeconds)
			b = &dayBucket{midnight: midnight}
			buckets[key] = b
			order = append(order, key)
		}
		if h.Temp != nil {
			b.temps = append(b.temps, *h.Temp)
		}
		b.pops = append(b.pops, h.Pop)
		if len(b.weather) == 0 && len(h.Weather) > 0 {
			b.weather = []models.Condition{h.Weather[0]}
		}
	}

	if len(order) > maxDaily {
		order = order[:maxDaily]
	}
	daily := make([]models.DailyRecord, 0, len(order))
	for _, key := range order {
		daily = append(daily, finalize(buckets[key]))
	}
	return daily
}

func finalize(b *dayBucket) models.DailyRecord {
	rec := models.DailyRecord{
		Timestamp: b.midnight,
		Weather:   b.weather,
	}
	if rec.Weather == nil {
		rec.Weather = []models.Condition{}
	}
	if len(b.temps) > 0 {
		mn, mx, sum := b.temps[0], b.temps[0], 0.0
		for _, t := range b.temps {
			if t < mn {
				mn = t
			}
			if t > mx {
				mx = t
			}
			sum += t
		}
		mean := sum / float64(len(b.temps))
		rec.Temp = models.DailyTemp{Min: &mn, Max: &mx, Day: &mean}
	}
	for _, p := range b.pops {
		if p > rec.Pop {
			rec.Pop = p
		}
	}
	return rec
}
