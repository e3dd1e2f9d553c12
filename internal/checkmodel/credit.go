package checkmodel

import (
	"fmt"

	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// ErrAlreadyFinalized is returned by FinalizeCredit when a Credit has
// already completed once (spec §4.3: Finalize is exactly-once per Credit).
var ErrAlreadyFinalized = fmt.Errorf("%w: credit already finalized", ErrWrongState)

// Preauth transitions c into CreditPreauth, recording the hold amount and
// the time it was taken (spec §4.3).
func Preauth(c *Credit, amount money.Money, approvalCode string, at timeinfo.TimeInfo) error {
	if c.finalized {
		return ErrAlreadyFinalized
	}
	c.Status = CreditPreauth
	c.Amount = amount
	c.ApprovalCode = approvalCode
	c.PreauthTime = at
	return nil
}

// RecordAttempt appends a failed authorization try to c's error chain
// without changing c's terminal status (spec §4.3: ErrorChain).
func RecordAttempt(c *Credit, attempt CreditAttempt) {
	c.ErrorChain = append(c.ErrorChain, attempt)
}

// FinalizeCredit completes c exactly once: it sets the final amount/tip,
// stamps AuthTime, and masks the PAN unless the terminal is configured to
// keep the entire card number (spec §4.3, §6 UseEntireCCNum). A second call
// on an already-finalized Credit fails with ErrAlreadyFinalized so retried
// settlement messages can never double-charge.
func FinalizeCredit(c *Credit, amount, tip money.Money, approvalCode string, at timeinfo.TimeInfo, keepEntirePAN bool) error {
	if c.finalized {
		return ErrAlreadyFinalized
	}
	c.Status = CreditAuthorized
	c.Amount = amount
	c.Tip = tip
	c.ApprovalCode = approvalCode
	c.AuthTime = at
	if !keepEntirePAN {
		c.PAN = maskPAN(c.PAN)
	}
	c.finalized = true
	return nil
}

// maskPAN keeps only the last 4 digits, matching standard receipt masking.
func maskPAN(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	masked := make([]byte, len(pan))
	for i := range masked {
		masked[i] = 'X'
	}
	copy(masked[len(masked)-4:], pan[len(pan)-4:])
	return string(masked)
}

// VoidCredit marks c as voided; permitted before or after finalization,
// mirroring the original void-then-reverse workflow (spec §4.3).
func VoidCredit(c *Credit) {
	c.Status = CreditVoided
}

// Complete marks a preauthorized Credit as completed for batch settlement,
// without altering Amount/Tip (spec §4.3: CC_Settle walks completed, unbatched
// Credits).
func Complete(c *Credit) error {
	if c.Status != CreditAuthorized && c.Status != CreditPreauth {
		return fmt.Errorf("%w: complete from %v", ErrWrongState, c.Status)
	}
	c.Status = CreditCompleted
	return nil
}
