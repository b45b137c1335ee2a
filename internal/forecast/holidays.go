package forecast

import (
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/mx"
	"github.com/rickar/cal/v2/us"
)

// HolidayCalendar answers the holiday feature queries for one country.
// It is immutable after construction and safe for concurrent use.
type HolidayCalendar struct {
	cal *cal.Calendar
}

// NewHolidayCalendar builds a calendar for an ISO 3166-1 alpha-2 country
// code. Unknown codes fall back to US.
func NewHolidayCalendar(country string) *HolidayCalendar {
	c := &cal.Calendar{Name: "pricecast"}
	switch strings.ToUpper(country) {
	case "BR":
		c.AddHoliday(br.Holidays...)
	case "MX":
		c.AddHoliday(mx.Holidays...)
	case "ES":
		c.AddHoliday(es.Holidays...)
	case "GB":
		c.AddHoliday(gb.Holidays...)
	default:
		c.AddHoliday(us.Holidays...)
	}
	return &HolidayCalendar{cal: c}
}

// IsHoliday reports whether the date is an actual or observed holiday.
func (h *HolidayCalendar) IsHoliday(t time.Time) bool {
	actual, observed, _ := h.cal.IsHoliday(t)
	return actual || observed
}

// DaysToNext returns the number of days until the next holiday, capped.
// Returns the cap when no holiday falls inside the lookahead.
func (h *HolidayCalendar) DaysToNext(t time.Time, cap int) int {
	for d := 1; d <= cap; d++ {
		if h.IsHoliday(t.AddDate(0, 0, d)) {
			return d
		}
	}
	return cap
}

// DaysSinceLast returns the number of days since the last holiday, capped.
func (h *HolidayCalendar) DaysSinceLast(t time.Time, cap int) int {
	for d := 1; d <= cap; d++ {
		if h.IsHoliday(t.AddDate(0, 0, -d)) {
			return d
		}
	}
	return cap
}
