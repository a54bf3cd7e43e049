package core

import (
	"time"

	"github.com/jirametrics/jirametrics/schema"
)

// MonthlyPeriods splits [start, end] into full calendar months, starting with
// the month that contains start and ending with the month that contains end.
func MonthlyPeriods(start, end time.Time) []schema.Period {
	start, end = day(start), day(end)
	if start.After(end) {
		return nil
	}

	var periods []schema.Period
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		periods = append(periods, schema.Period{
			Start: cursor,
			End:   cursor.AddDate(0, 1, -1),
			Label: cursor.Format("January_2006"),
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return periods
}

// SinglePeriod covers exactly the requested range.
func SinglePeriod(start, end time.Time) schema.Period {
	start, end = day(start), day(end)
	return schema.Period{
		Start: start,
		End:   end,
		Label: start.Format(time.DateOnly) + "_" + end.Format(time.DateOnly),
	}
}

// PeriodsFor returns the reporting periods for a split mode.
func PeriodsFor(split schema.SplitMode, start, end time.Time) []schema.Period {
	if split == schema.NoSplit {
		if day(start).After(day(end)) {
			return nil
		}
		return []schema.Period{SinglePeriod(start, end)}
	}
	return MonthlyPeriods(start, end)
}

// day truncates t to midnight UTC of its calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
