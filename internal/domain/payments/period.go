package payments

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ResolvePeriod turns a period filter into a concrete window anchored at
// now. Weeks run Sunday through Saturday; all boundaries are inclusive,
// with starts clamped to 00:00:00.000 and ends to 23:59:59.999.
func ResolvePeriod(filter PeriodFilter, now time.Time, customStart, customEnd string) (Window, error) {
	switch filter {
	case PeriodWeek:
		sunday := now.AddDate(0, 0, -int(now.Weekday()))
		return Window{
			Start:   dayStart(sunday),
			End:     dayEnd(sunday.AddDate(0, 0, 6)),
			Bounded: true,
		}, nil
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{
			Start:   first,
			End:     dayEnd(first.AddDate(0, 1, -1)),
			Bounded: true,
		}, nil
	case PeriodYear:
		return Window{
			Start:   time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			End:     dayEnd(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())),
			Bounded: true,
		}, nil
	case PeriodCustom:
		if customStart == "" || customEnd == "" {
			return Window{}, fmt.Errorf("%w: custom period requires custom_start and custom_end", ErrValidation)
		}
		start, err := time.ParseInLocation(dateLayout, customStart, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("%w: invalid custom_start: %v", ErrValidation, err)
		}
		end, err := time.ParseInLocation(dateLayout, customEnd, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("%w: invalid custom_end: %v", ErrValidation, err)
		}
		if end.Before(start) {
			return Window{}, fmt.Errorf("%w: custom_end is before custom_start", ErrValidation)
		}
		return Window{Start: dayStart(start), End: dayEnd(end), Bounded: true}, nil
	case PeriodAll:
		return Window{Bounded: false}, nil
	default:
		return Window{}, fmt.Errorf("%w: invalid period: %q", ErrValidation, filter)
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
