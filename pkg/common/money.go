package common

import (
	"math/big"
	"time"
)

// All monetary amounts are int64 minor units (cents). Rates are basis points.

// PercentOf applies a basis-point rate to an amount, truncating toward zero.
func PercentOf(amount int64, bps int64) int64 {
	return amount * bps / 10000
}

// ProRata allocates part/total of pool. Uses big.Int internally because
// pool*part can overflow int64 for realistic capital sizes.
func ProRata(pool, part, total int64) int64 {
	if total <= 0 || part <= 0 || pool <= 0 {
		return 0
	}
	p := new(big.Int).Mul(big.NewInt(pool), big.NewInt(part))
	p.Quo(p, big.NewInt(total))
	return p.Int64()
}

// WithinMonths reports whether `at` is on or before the n-month anniversary
// of `from`. The boundary itself counts as within: a position aged exactly
// three months is still inside the three-month window.
func WithinMonths(from, at time.Time, n int) bool {
	return !at.After(from.AddDate(0, n, 0))
}

// MonthsElapsed returns the number of whole months between from and at.
func MonthsElapsed(from, at time.Time) int {
	if at.Before(from) {
		return 0
	}
	months := (at.Year()-from.Year())*12 + int(at.Month()) - int(from.Month())
	if from.AddDate(0, months, 0).After(at) {
		months--
	}
	return months
}

// PeriodWindow resolves a "YYYY-MM" period key to its [start, end) window in UTC.
func PeriodWindow(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
