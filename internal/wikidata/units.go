package wikidata

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownUnit is returned for a time unit missing from TimeUnits.
var ErrUnknownUnit = errors.New("unknown time unit")

// TimeUnits maps Wikidata time unit items to their length in seconds.
var TimeUnits = map[int64]float64{
	11574:   1.0,     // second
	7727:    60.0,    // minute
	25235:   3600.0,  // hour
	573:     86400.0, // day
	23387:   604800.0,
	5151:    2.630e6, // month (average)
	1092296: 3.156e7, // annum
	577:     3.156e7, // calendar year
	723733:  1.0e-3,
	842015:  1.0e-6,
	838801:  1.0e-9,
	3902709: 1.0e-12,
	1777507: 1.0e-15,
	2483628: 1.0e-18, // attosecond
}

// TimeInSeconds converts a quantity amount in the unit identified by the
// entity URI unitURI to seconds.
func TimeInSeconds(amount, unitURI string) (float64, error) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	unit, err := NumericID(unitURI)
	if err != nil {
		return 0, fmt.Errorf("parse unit: %w", err)
	}
	factor, ok := TimeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: Q%d", ErrUnknownUnit, unit)
	}
	return value * factor, nil
}
