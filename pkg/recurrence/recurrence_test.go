package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearlyOccurrences(t *testing.T) {
	anchor := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)

	occurrences, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2023, 2026)
	require.NoError(t, err)

	require.Len(t, occurrences, 4)
	for i, year := range []int{2023, 2024, 2025, 2026} {
		assert.Equal(t, time.Date(year, time.May, 15, 0, 0, 0, 0, time.UTC), occurrences[i])
	}
}

func TestYearlyOccurrencesSingleYear(t *testing.T) {
	anchor := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	occurrences, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2025, 2025)
	require.NoError(t, err)

	require.Len(t, occurrences, 1)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), occurrences[0])
}

func TestYearlyOccurrencesInterval(t *testing.T) {
	anchor := time.Date(1988, time.March, 3, 0, 0, 0, 0, time.UTC)

	occurrences, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 2}, 2024, 2027)
	require.NoError(t, err)

	require.Len(t, occurrences, 2)
	assert.Equal(t, 2024, occurrences[0].Year())
	assert.Equal(t, 2026, occurrences[1].Year())
}

func TestYearlyOccurrencesLeapDayAnchor(t *testing.T) {
	anchor := time.Date(1992, time.February, 29, 0, 0, 0, 0, time.UTC)

	occurrences, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2023, 2025)
	require.NoError(t, err)

	require.Len(t, occurrences, 3)
	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), occurrences[0])
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), occurrences[1])
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), occurrences[2])
}

func TestYearlyOccurrencesDeterministic(t *testing.T) {
	anchor := time.Date(1985, time.November, 30, 0, 0, 0, 0, time.UTC)

	first, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2020, 2030)
	require.NoError(t, err)
	second, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2020, 2030)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestYearlyOccurrencesRejectsUnknownType(t *testing.T) {
	anchor := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)

	_, err := YearlyOccurrences(anchor, Descriptor{Type: "weekly", Interval: 1}, 2024, 2025)
	assert.ErrorIs(t, err, ErrUnsupportedRecurrence)

	_, err = YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 0}, 2024, 2025)
	assert.ErrorIs(t, err, ErrUnsupportedRecurrence)
}

func TestYearlyOccurrencesRejectsInvertedRange(t *testing.T) {
	anchor := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)

	_, err := YearlyOccurrences(anchor, Descriptor{Type: Yearly, Interval: 1}, 2026, 2024)
	assert.Error(t, err)
}
