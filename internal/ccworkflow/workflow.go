package ccworkflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// Workflow drives one checkmodel.Credit through its authorization
// lifecycle against a configured Backend, enforcing the per-terminal rate
// limit and a single in-flight request per Credit (spec §4.3: cc_processing
// is a single-writer guard — a Credit can never have two network requests
// racing to mutate it).
type Workflow struct {
	backend Backend
	limiter *TerminalLimiter

	mu      sync.Mutex
	inFlight map[*checkmodel.Credit]bool
}

// New builds a Workflow against backend, using limiter for per-terminal
// throttling (pass nil to use the default budget).
func New(backend Backend, limiter *TerminalLimiter) *Workflow {
	if limiter == nil {
		limiter = NewTerminalLimiter()
	}
	return &Workflow{backend: backend, limiter: limiter, inFlight: map[*checkmodel.Credit]bool{}}
}

func (w *Workflow) lock(c *checkmodel.Credit) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[c] {
		return nil, fmt.Errorf("%w: credit already has a request in flight", ErrRateLimited)
	}
	w.inFlight[c] = true
	return func() {
		w.mu.Lock()
		delete(w.inFlight, c)
		w.mu.Unlock()
	}, nil
}

// Preauth places a hold for amount on c's card, recording the result
// either way (approved credits move to CreditPreauth; declines append to
// c's ErrorChain and leave Status unchanged).
func (w *Workflow) Preauth(ctx context.Context, terminalID string, c *checkmodel.Credit, amount money.Money) error {
	if !w.limiter.Allow(terminalID) {
		return ErrRateLimited
	}
	unlock, err := w.lock(c)
	if err != nil {
		return err
	}
	defer unlock()

	result, err := w.backend.Preauth(ctx, AuthRequest{
		TerminalID: terminalID, PAN: c.PAN, Expiry: c.Expiry, Amount: amount,
	})
	if err != nil {
		checkmodel.RecordAttempt(c, checkmodel.CreditAttempt{At: timeinfo.Now(), Verb: err.Error()})
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	if !result.Approved {
		checkmodel.RecordAttempt(c, checkmodel.CreditAttempt{At: timeinfo.Now(), Verb: result.DeclineText})
		return fmt.Errorf("%w: %s", ErrDeclined, result.DeclineText)
	}
	return checkmodel.Preauth(c, amount, result.ApprovalCode, timeinfo.Now())
}

// VoiceAuth records a manually phoned-in approval without contacting the
// backend's authorization network (spec §4.3: VoiceAuth field).
func (w *Workflow) VoiceAuth(c *checkmodel.Credit, approvalCode string) error {
	unlock, err := w.lock(c)
	if err != nil {
		return err
	}
	defer unlock()

	c.VoiceAuth = approvalCode
	c.Status = checkmodel.CreditAuthorized
	return nil
}

// Complete finalizes c, exactly once, adding any guest-added tip and
// masking the PAN per the terminal's configured policy.
func (w *Workflow) Complete(ctx context.Context, terminalID string, c *checkmodel.Credit, tip money.Money, keepEntirePAN bool) error {
	if !w.limiter.Allow(terminalID) {
		return ErrRateLimited
	}
	unlock, err := w.lock(c)
	if err != nil {
		return err
	}
	defer unlock()

	result, err := w.backend.Complete(ctx, CompleteRequest{
		TerminalID: terminalID, ApprovalCode: c.ApprovalCode, Amount: c.Amount, Tip: tip,
	})
	if err != nil {
		checkmodel.RecordAttempt(c, checkmodel.CreditAttempt{At: timeinfo.Now(), Verb: err.Error()})
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	if !result.Approved {
		checkmodel.RecordAttempt(c, checkmodel.CreditAttempt{At: timeinfo.Now(), Verb: result.DeclineText})
		return fmt.Errorf("%w: %s", ErrDeclined, result.DeclineText)
	}
	return checkmodel.FinalizeCredit(c, c.Amount, tip, result.ApprovalCode, timeinfo.Now(), keepEntirePAN)
}
