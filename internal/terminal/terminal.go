// Package terminal implements the per-terminal state machine: the page
// and dialog stacks, edit-mode bookkeeping, idle timeout, and the login
// sub-machine that gates which employee is driving a given terminal (spec
// §4.2).
package terminal

import (
	"fmt"
	"time"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/poserr"
	"github.com/viewtouch/posk/internal/settings"
	"github.com/viewtouch/posk/internal/termlink"
)

// MaxPageStack bounds the jump(normal, ...) page history (spec §4.2:
// "dialog stack (bounded to 32)" — the same bound applies to pages).
const MaxPageStack = 32

// JumpKind selects how jump() treats the page history.
type JumpKind int

const (
	JumpNone JumpKind = iota
	JumpNormal
	JumpStealth
	JumpReturn
	JumpHome
	JumpScript
	JumpIndex
	JumpPassword
)

// EditMode is the zone-editing state a terminal can be in.
type EditMode int

const (
	EditNone EditMode = iota
	EditZones
	EditSystem // restricted to superuser
)

// Employee is the minimal identity terminal needs to drive its login
// sub-machine; the full labor/scheduling record lives elsewhere.
type Employee struct {
	ID          int64
	Name        string
	IsManager   bool
	IsSuperuser bool
	OnClock     bool
	OnlineTerm  string // terminal id the employee is currently logged into, "" if none
}

// LoginState is the login sub-machine's current outcome (spec §4.2).
type LoginState int

const (
	LoginGetUserID LoginState = iota
	LoginUserOnline
	LoginPasswordFailed
	LoginUnknownUser
	LoginOnAnotherTerm
	LoginAlreadyOnClock
	LoginNotOnClock
	LoginClockNotUsed
	LoginOpenCheck
	LoginAssignedDrawer
	LoginUserInactive
	LoginNeedBalance
	LoginNotAllowedIn
)

// PasswordWindow is how long a successful password entry remains valid
// before the terminal demands it again (spec §4.2: "five-minute password
// re-entry window").
const PasswordWindow = 5 * time.Minute

// Terminal holds one display terminal's live UI state.
type Terminal struct {
	ID string

	pageStack []int
	dialogStack []int
	nextDialog  []int

	CurrentCheck  *checkmodel.Check
	CurrentOrder  *checkmodel.Order
	CurrentEmployee *Employee

	Edit     EditMode
	Translate bool

	lastActivity time.Time

	passwordGivenAt time.Time
	passwordGiven   bool

	hub *termlink.Hub
}

// New creates a Terminal that sends its signals through hub; it does not
// register a client with the hub.
func New(id string, hub *termlink.Hub) *Terminal {
	return &Terminal{ID: id, hub: hub, lastActivity: time.Now()}
}

// Touch records activity, resetting the idle timer.
func (t *Terminal) Touch() { t.lastActivity = time.Now() }

// Idle reports whether the terminal has been untouched longer than
// settings.ScreenBlankTime.
func (t *Terminal) Idle(s *settings.Settings) bool {
	var blank int
	s.RLocked(func(s *settings.Settings) { blank = s.ScreenBlankTime })
	return time.Since(t.lastActivity) > time.Duration(blank)*time.Second
}

// Timeout forces an idle terminal back to the login page and cancels any
// active dialog (spec §4.2: "timeout").
func (t *Terminal) Timeout(loginPage int) {
	t.dialogStack = nil
	t.nextDialog = nil
	t.pageStack = nil
	t.CurrentEmployee = nil
	t.pageStack = append(t.pageStack, loginPage)
}

// Jump transitions the current page according to kind (spec §4.2:
// jump(kind, id)).
func (t *Terminal) Jump(kind JumpKind, id int) error {
	switch kind {
	case JumpReturn:
		if len(t.pageStack) <= 1 {
			return fmt.Errorf("%w: no page to return to", poserr.ErrState)
		}
		t.pageStack = t.pageStack[:len(t.pageStack)-1]
		return nil
	case JumpNormal:
		if len(t.pageStack) >= MaxPageStack {
			return fmt.Errorf("%w: page stack is full", poserr.ErrState)
		}
		t.pageStack = append(t.pageStack, id)
		return nil
	case JumpHome:
		t.pageStack = []int{id}
		return nil
	case JumpStealth, JumpScript, JumpIndex:
		if len(t.pageStack) == 0 {
			t.pageStack = []int{id}
			return nil
		}
		t.pageStack[len(t.pageStack)-1] = id
		return nil
	case JumpPassword:
		// Caller is responsible for presenting the PasswordDialog and
		// re-entering with JumpStealth on success (spec §4.2).
		return fmt.Errorf("%w: password jump requires interstitial dialog", poserr.ErrState)
	default:
		return fmt.Errorf("%w: unknown jump kind %d", poserr.ErrProtocol, kind)
	}
}

// CurrentPage returns the page on top of the stack, or 0 if empty.
func (t *Terminal) CurrentPage() int {
	if len(t.pageStack) == 0 {
		return 0
	}
	return t.pageStack[len(t.pageStack)-1]
}

// OpenDialog pushes z as the current dialog, or queues it in next_dialog
// if one is already active (spec §4.2: "at most one is current").
func (t *Terminal) OpenDialog(z int) {
	if len(t.dialogStack) > 0 {
		t.nextDialog = append(t.nextDialog, z)
		return
	}
	t.dialogStack = append(t.dialogStack, z)
}

// KillDialog pops the current dialog and promotes the next queued one, if any.
func (t *Terminal) KillDialog() {
	if len(t.dialogStack) > 0 {
		t.dialogStack = t.dialogStack[:len(t.dialogStack)-1]
	}
	if len(t.dialogStack) == 0 && len(t.nextDialog) > 0 {
		t.dialogStack = append(t.dialogStack, t.nextDialog[0])
		t.nextDialog = t.nextDialog[1:]
	}
}

// CurrentDialog returns the active dialog id, or 0 if none.
func (t *Terminal) CurrentDialog() int {
	if len(t.dialogStack) == 0 {
		return 0
	}
	return t.dialogStack[len(t.dialogStack)-1]
}

// RecordPasswordEntry marks a successful password check, opening the
// five-minute re-entry window.
func (t *Terminal) RecordPasswordEntry() {
	t.passwordGiven = true
	t.passwordGivenAt = time.Now()
}

// PasswordStillValid reports whether the password window from the most
// recent successful entry is still open.
func (t *Terminal) PasswordStillValid() bool {
	if !t.passwordGiven {
		return false
	}
	if time.Since(t.passwordGivenAt) > PasswordWindow {
		t.passwordGiven = false
		return false
	}
	return true
}

// Login evaluates the login sub-machine for employee attempting to start
// a session on this terminal (spec §4.2).
func Login(emp *Employee, s *settings.Settings, passwordOK bool, drawerUnbalanced bool, thisTerminalID string) LoginState {
	if emp == nil {
		return LoginUnknownUser
	}
	if !emp.OnClock {
		return LoginNotOnClock
	}
	if emp.OnlineTerm != "" && emp.OnlineTerm != thisTerminalID {
		return LoginOnAnotherTerm
	}

	var requiresPassword bool
	s.RLocked(func(s *settings.Settings) {
		requiresPassword = s.PasswordMode == settings.PasswordModeAlways ||
			(s.PasswordMode == settings.PasswordModeManagersOnly && emp.IsManager)
	})
	if requiresPassword && !passwordOK {
		return LoginPasswordFailed
	}
	if drawerUnbalanced {
		return LoginNeedBalance
	}

	emp.OnlineTerm = thisTerminalID
	return LoginUserOnline
}

// Signal broadcasts sig via the hub to every connected terminal, this one
// included if it is connected.
func (t *Terminal) Signal(sig termlink.Signal) {
	if t.hub == nil {
		return
	}
	t.hub.Broadcast(sig)
}
