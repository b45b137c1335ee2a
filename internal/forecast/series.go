package forecast

import "time"

// DailySeries is a gap-free daily time series of price and quantity,
// oldest-first. Start is the UTC midnight of the first day; element i
// covers Start + i days.
type DailySeries struct {
	Start      time.Time
	Prices     []float64
	Quantities []float64
}

// Len returns the number of days covered.
func (s *DailySeries) Len() int { return len(s.Prices) }

// LastDate returns the date of the final element.
func (s *DailySeries) LastDate() time.Time {
	return s.Start.AddDate(0, 0, len(s.Prices)-1)
}

// Date returns the date of element i.
func (s *DailySeries) Date(i int) time.Time {
	return s.Start.AddDate(0, 0, i)
}
