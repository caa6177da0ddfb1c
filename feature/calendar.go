package feature

import (
	"time"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

const (
	LabelBusinessDays = "business_days"
	LabelHolidays     = "holidays"
)

// CalendarFeatures derives the number of US business days and observed federal holidays
// falling on weekdays for each quarter. The result can be passed to Build as extra
// features.
func CalendarFeatures(periods []period.Quarter) Extra {
	return calendarFeatures(periods, us.Holidays)
}

func calendarFeatures(periods []period.Quarter, holidays []*cal.Holiday) Extra {
	extra := make(Extra, len(periods))
	for _, q := range periods {
		start, end := q.Start(), q.End()

		observed := make(map[time.Time]struct{})
		// observed dates can spill over a year boundary, e.g. New Year's Day on a Saturday
		for year := q.Year - 1; year <= q.Year+1; year++ {
			for _, hol := range holidays {
				_, obs := hol.Calc(year)
				if obs.IsZero() {
					continue
				}
				day := time.Date(obs.Year(), obs.Month(), obs.Day(), 0, 0, 0, 0, time.UTC)
				if day.Before(start) || !day.Before(end) || isWeekend(day) {
					continue
				}
				observed[day] = struct{}{}
			}
		}

		var weekdays int
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			if !isWeekend(d) {
				weekdays++
			}
		}

		extra[q.String()] = map[string]float64{
			LabelBusinessDays: float64(weekdays - len(observed)),
			LabelHolidays:     float64(len(observed)),
		}
	}
	return extra
}

func isWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}
