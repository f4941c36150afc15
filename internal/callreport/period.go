package callreport

import (
	"time"
)

const callDateLayout = "20060102"

// Period returns the reporting quarter of the file: the most common quarter
// among its Call Date values, ties going to the earliest quarter.
// Unparseable dates are ignored.
func (rs *RecordSet) Period() (Period, error) {
	counts := make(map[Period]int)
	for _, raw := range rs.callDates {
		t, err := time.Parse(callDateLayout, raw)
		if err != nil {
			continue
		}
		counts[PeriodOf(t)]++
	}
	if len(counts) == 0 {
		return Period{}, &LookupError{Prefix: ColCallDate, Path: rs.Path, Err: ErrNoCallDate}
	}

	var (
		best  Period
		bestN int
	)
	for p, n := range counts {
		if n > bestN || (n == bestN && p.before(best)) {
			best, bestN = p, n
		}
	}
	return best, nil
}

func (p Period) before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}
