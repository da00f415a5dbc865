package exporter

import (
	"fmt"
	"strconv"
)

// FormatValue formats an indicator value with exactly 2 decimal places so
// 13.4 exports as 13.40 across every artifact.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatSigned formats a percentage-point delta with an explicit sign.
func FormatSigned(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// FormatYear formats a calendar year.
func FormatYear(year int) string {
	return strconv.Itoa(year)
}
