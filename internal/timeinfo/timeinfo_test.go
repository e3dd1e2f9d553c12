package timeinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFloorMinute(t *testing.T) {
	ti := New(time.Date(2026, 7, 31, 14, 52, 9, 0, time.UTC))
	got := ti.Floor(UnitMinute)
	require.Equal(t, time.Date(2026, 7, 31, 14, 52, 0, 0, time.UTC), got.Time())
}

func TestHalfMonthJump(t *testing.T) {
	ti := New(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	got := ti.HalfMonthJump(10, 15, 31)
	require.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), got.Time())

	ti2 := New(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	got2 := ti2.HalfMonthJump(20, 15, 31)
	require.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got2.Time())
}

func TestOvertimeWeekSatisfiesBounds(t *testing.T) {
	ref := New(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)) // Friday
	start, end, err := OvertimeWeek(ref, 0)
	require.NoError(t, err)
	require.True(t, start.Before(ref) || start.Equal(ref))
	require.True(t, ref.Before(end))
	require.Equal(t, 7*24*time.Hour, end.Time().Sub(start.Time()))
}
