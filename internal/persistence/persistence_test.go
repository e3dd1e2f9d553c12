package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestReportOutcomeClassification(t *testing.T) {
	require.Equal(t, OutcomeSuccess, Report{Success: 2}.Outcome())
	require.Equal(t, OutcomePartial, Report{Success: 1, Failed: 1}.Outcome())
	require.Equal(t, OutcomeFailed, Report{Failed: 2}.Outcome())
}

func TestSupervisorSkipsDuringEditMode(t *testing.T) {
	var saveCalls int
	tuples := []Tuple{{
		Name: "settings",
		Save: func(ctx context.Context) (SaveResult, error) {
			saveCalls++
			return SaveSuccess, nil
		},
	}}

	inEdit := true
	sup := New(tuples, 5*time.Millisecond, func() bool { return inEdit }, zerolog.Nop())
	sup.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	sup.Stop()

	require.Equal(t, 0, saveCalls)
}

func TestSupervisorRunsTuplesAndRecordsFailures(t *testing.T) {
	tuples := []Tuple{
		{Name: "settings", Save: func(ctx context.Context) (SaveResult, error) { return SaveSuccess, nil }},
		{Name: "checks", Save: func(ctx context.Context) (SaveResult, error) { return SaveFailed, nil }},
	}

	sup := New(tuples, 5*time.Millisecond, nil, zerolog.Nop())
	sup.Start(context.Background())
	require.Eventually(t, func() bool {
		return sup.LastReport().Failed == 1 && sup.LastReport().Success == 1
	}, time.Second, time.Millisecond)
	sup.Stop()
}

func TestShutdownControllerForceShutdownRunsEmergencySave(t *testing.T) {
	var exited, saved bool
	ctrl := NewShutdownController(
		func() { exited = true },
		func(ctx context.Context) error { saved = true; return nil },
		zerolog.Nop(),
	)

	ctrl.ForceShutdown(context.Background())
	require.True(t, exited)
	require.True(t, saved)
	require.True(t, ctrl.InProgress())
}

func TestPrepareForShutdownSkipsEmergencySave(t *testing.T) {
	var saved bool
	ctrl := NewShutdownController(
		func() {},
		func(ctx context.Context) error { saved = true; return nil },
		zerolog.Nop(),
	)

	ctrl.PrepareForShutdown()
	require.False(t, saved)
	require.True(t, ctrl.InProgress())
}

func TestVerifyDataConsistencyExcusesTrainingSerial(t *testing.T) {
	checks := VerifyDataConsistency(
		[]int32{1, 0, 3},
		[]bool{false, true, false}, // the 0-serial entry is training, so it's excused
		[]int{0, 1},
	)
	require.True(t, checks[0].OK)
	require.True(t, checks[1].OK)
}
