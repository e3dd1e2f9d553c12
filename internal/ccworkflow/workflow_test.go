package ccworkflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/money"
)

type fakeBackend struct {
	approve bool
	settle  SettleResult
}

func (f *fakeBackend) Preauth(ctx context.Context, req AuthRequest) (AuthResult, error) {
	if !f.approve {
		return AuthResult{Approved: false, DeclineText: "insufficient funds"}, nil
	}
	return AuthResult{Approved: true, ApprovalCode: "AUTH123"}, nil
}

func (f *fakeBackend) Complete(ctx context.Context, req CompleteRequest) (AuthResult, error) {
	return AuthResult{Approved: f.approve, ApprovalCode: req.ApprovalCode}, nil
}

func (f *fakeBackend) VoiceAuth(ctx context.Context, req AuthRequest) (AuthResult, error) {
	return AuthResult{Approved: true, ApprovalCode: "VOICE1"}, nil
}

func (f *fakeBackend) Settle(ctx context.Context, batchID string, items []SettleItem) (SettleResult, error) {
	f.settle.BatchID = batchID
	f.settle.Accepted = len(items)
	return f.settle, nil
}

func TestPreauthApprovedTransitionsCredit(t *testing.T) {
	backend := &fakeBackend{approve: true}
	wf := New(backend, NewTerminalLimiterWithConfig(1000, 1000))

	c := &checkmodel.Credit{PAN: "4111111111111111"}
	require.NoError(t, wf.Preauth(context.Background(), "term-1", c, 1000))
	require.Equal(t, checkmodel.CreditPreauth, c.Status)
	require.Equal(t, "AUTH123", c.ApprovalCode)
}

func TestPreauthDeclinedRecordsAttempt(t *testing.T) {
	backend := &fakeBackend{approve: false}
	wf := New(backend, NewTerminalLimiterWithConfig(1000, 1000))

	c := &checkmodel.Credit{PAN: "4111111111111111"}
	err := wf.Preauth(context.Background(), "term-1", c, 1000)
	require.ErrorIs(t, err, ErrDeclined)
	require.Len(t, c.ErrorChain, 1)
}

func TestCompleteIsExactlyOnce(t *testing.T) {
	backend := &fakeBackend{approve: true}
	wf := New(backend, NewTerminalLimiterWithConfig(1000, 1000))

	c := &checkmodel.Credit{PAN: "4111111111111111", ApprovalCode: "AUTH123", Amount: 1000}
	require.NoError(t, wf.Complete(context.Background(), "term-1", c, 200, false))
	require.True(t, c.Finalized())

	err := wf.Complete(context.Background(), "term-1", c, 200, false)
	require.ErrorIs(t, err, checkmodel.ErrAlreadyFinalized)
}

func TestRateLimiterBlocksBurstBeyondBudget(t *testing.T) {
	backend := &fakeBackend{approve: true}
	wf := New(backend, NewTerminalLimiterWithConfig(1, 1))

	c1 := &checkmodel.Credit{PAN: "4111111111111111"}
	c2 := &checkmodel.Credit{PAN: "4111111111111111"}
	require.NoError(t, wf.Preauth(context.Background(), "term-1", c1, 500))
	err := wf.Preauth(context.Background(), "term-1", c2, 500)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestSettleStampsBatchIDOnAcceptedCredits(t *testing.T) {
	backend := &fakeBackend{approve: true}
	wf := New(backend, NewTerminalLimiterWithConfig(1000, 1000))

	c := &checkmodel.Credit{Status: checkmodel.CreditCompleted, ApprovalCode: "AUTH1", Amount: money.Money(500)}
	result, err := wf.Settle(context.Background(), "BATCH1", []*checkmodel.Credit{c})
	require.NoError(t, err)
	require.Equal(t, 1, result.Accepted)
	require.Equal(t, "BATCH1", c.BatchID)
}
