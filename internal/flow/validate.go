package flow

import "strconv"

// ValidDate checks the exact YYYY-MM-DD shape and plausible numeric ranges.
// Calendar validity (Feb 30, leap years) is intentionally not checked; the
// provider does its own calendar validation.
func ValidDate(s string, minYear, maxYear int) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}

	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return false
	}

	return year >= minYear && year <= maxYear &&
		month >= 1 && month <= 12 &&
		day >= 1 && day <= 31
}
