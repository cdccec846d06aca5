package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDate_AcceptsWellFormedDates(t *testing.T) {
	assert.True(t, ValidDate("1985-07-21", 1900, 2010))
	assert.True(t, ValidDate("2020-12-15", 1950, 2026))
}

func TestValidDate_RejectsWrongShape(t *testing.T) {
	assert.False(t, ValidDate("1985/07/21", 1900, 2010))
	assert.False(t, ValidDate("85-07-21", 1900, 2010))
	assert.False(t, ValidDate("1985-7-21", 1900, 2010))
	assert.False(t, ValidDate("", 1900, 2010))
	assert.False(t, ValidDate("1985-07-21x", 1900, 2010))
}

func TestValidDate_RejectsOutOfRangeYear(t *testing.T) {
	assert.False(t, ValidDate("1899-01-01", 1900, 2010))
	assert.False(t, ValidDate("2011-01-01", 1900, 2010))
	assert.False(t, ValidDate("2027-01-01", 1950, 2026))
}

func TestValidDate_RejectsOutOfRangeMonthAndDay(t *testing.T) {
	assert.False(t, ValidDate("1985-13-01", 1900, 2010))
	assert.False(t, ValidDate("1985-00-01", 1900, 2010))
	assert.False(t, ValidDate("1985-01-32", 1900, 2010))
	assert.False(t, ValidDate("1985-01-00", 1900, 2010))
}

func TestValidDate_DoesNotCheckCalendarValidity(t *testing.T) {
	// Feb 30 passes the numeric range check; the provider catches it.
	assert.True(t, ValidDate("1985-02-30", 1900, 2010))
}

func TestValidDate_RejectsNonNumeric(t *testing.T) {
	assert.False(t, ValidDate("abcd-ef-gh", 1900, 2010))
}
