package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignmentMode(t *testing.T) {
	for _, s := range []string{"single", "fullRange", "weekdays", "weekend", "custom"} {
		m, err := ParseAssignmentMode(s)
		require.NoError(t, err)
		assert.Equal(t, AssignmentMode(s), m)
	}

	_, err := ParseAssignmentMode("fortnightly")
	assert.Error(t, err)
}

func TestResolveSingleIgnoresRange(t *testing.T) {
	dates, err := ResolveDates(ModeSingle, []string{"2025-10-01", "2025-10-02"}, "2025-10-02", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-02"}, dates)
}

func TestResolveFullRangeReturnsAllDates(t *testing.T) {
	all := []string{"2025-10-01", "2025-10-02", "2025-10-03"}

	dates, err := ResolveDates(ModeFullRange, all, "2025-10-01", nil)

	require.NoError(t, err)
	assert.Equal(t, all, dates)
}

func TestResolveFullRangeDoesNotAliasInput(t *testing.T) {
	all := []string{"2025-10-01", "2025-10-02"}

	dates, err := ResolveDates(ModeFullRange, all, "2025-10-01", nil)
	require.NoError(t, err)

	dates[0] = "mutated"
	assert.Equal(t, "2025-10-01", all[0])
}

func TestResolveWeekdaysAndWeekendPartitionTheRange(t *testing.T) {
	// 2025-10-06 is a Monday; two full weeks.
	all, err := ExpandRange("2025-10-06", "2025-10-19")
	require.NoError(t, err)
	require.Len(t, all, 14)

	weekdays, err := ResolveDates(ModeWeekdays, all, "2025-10-06", nil)
	require.NoError(t, err)
	weekend, err := ResolveDates(ModeWeekend, all, "2025-10-06", nil)
	require.NoError(t, err)

	assert.Len(t, weekdays, 10)
	assert.Len(t, weekend, 4)

	union := make(map[string]int)
	for _, d := range weekdays {
		union[d]++
	}
	for _, d := range weekend {
		union[d]++
	}
	assert.Len(t, union, 14)
	for d, n := range union {
		assert.Equal(t, 1, n, "date %s in both partitions", d)
	}
}

func TestResolveCustomDays(t *testing.T) {
	// 2025-10-06 Monday, 2025-10-07 Tuesday, 2025-10-08 Wednesday.
	all := []string{"2025-10-06", "2025-10-07", "2025-10-08"}

	dates, err := ResolveDates(ModeCustom, all, "2025-10-06", []int{0, 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-06", "2025-10-08"}, dates)
}

func TestResolveCustomWithNoDaysSelectsNothing(t *testing.T) {
	all := []string{"2025-10-06", "2025-10-07"}

	dates, err := ResolveDates(ModeCustom, all, "2025-10-06", nil)

	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestResolveIsDeterministic(t *testing.T) {
	all, err := ExpandRange("2025-10-01", "2025-10-31")
	require.NoError(t, err)

	first, err := ResolveDates(ModeCustom, all, "2025-10-01", []int{5, 6})
	require.NoError(t, err)
	second, err := ResolveDates(ModeCustom, all, "2025-10-01", []int{5, 6})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
