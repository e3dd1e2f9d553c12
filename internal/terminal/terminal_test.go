package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viewtouch/posk/internal/settings"
)

func TestJumpNormalThenReturnRestoresPreviousPage(t *testing.T) {
	term := New("term1", nil)
	require.NoError(t, term.Jump(JumpHome, 1))
	require.NoError(t, term.Jump(JumpNormal, 2))
	require.Equal(t, 2, term.CurrentPage())

	require.NoError(t, term.Jump(JumpReturn, 0))
	require.Equal(t, 1, term.CurrentPage())
}

func TestJumpNormalRejectsOverflowingStack(t *testing.T) {
	term := New("term1", nil)
	require.NoError(t, term.Jump(JumpHome, 0))
	for i := 0; i < MaxPageStack-1; i++ {
		require.NoError(t, term.Jump(JumpNormal, i+1))
	}
	require.Error(t, term.Jump(JumpNormal, 999))
}

func TestOpenDialogQueuesSecondUntilFirstIsKilled(t *testing.T) {
	term := New("term1", nil)
	term.OpenDialog(10)
	term.OpenDialog(20)
	require.Equal(t, 10, term.CurrentDialog())

	term.KillDialog()
	require.Equal(t, 20, term.CurrentDialog())

	term.KillDialog()
	require.Equal(t, 0, term.CurrentDialog())
}

func TestPasswordWindowExpiresAfterFiveMinutes(t *testing.T) {
	term := New("term1", nil)
	term.RecordPasswordEntry()
	require.True(t, term.PasswordStillValid())

	term.passwordGivenAt = time.Now().Add(-6 * time.Minute)
	require.False(t, term.PasswordStillValid())
}

func TestLoginRejectsEmployeeNotOnClock(t *testing.T) {
	s := settings.New()
	emp := &Employee{ID: 1, OnClock: false}
	require.Equal(t, LoginNotOnClock, Login(emp, s, true, false, "term1"))
}

func TestLoginRejectsEmployeeOnlineElsewhere(t *testing.T) {
	s := settings.New()
	emp := &Employee{ID: 1, OnClock: true, OnlineTerm: "term2"}
	require.Equal(t, LoginOnAnotherTerm, Login(emp, s, true, false, "term1"))
}

func TestLoginRequiresPasswordForManagerUnderManagersOnlyMode(t *testing.T) {
	s := settings.New()
	emp := &Employee{ID: 1, OnClock: true, IsManager: true}
	require.Equal(t, LoginPasswordFailed, Login(emp, s, false, false, "term1"))
	require.Equal(t, LoginUserOnline, Login(emp, s, true, false, "term1"))
}

func TestLoginBlocksOnUnbalancedDrawer(t *testing.T) {
	s := settings.New()
	emp := &Employee{ID: 1, OnClock: true}
	require.Equal(t, LoginNeedBalance, Login(emp, s, true, true, "term1"))
}
