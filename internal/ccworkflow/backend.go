package ccworkflow

import (
	"context"

	"github.com/viewtouch/posk/internal/money"
)

// Backend abstracts the card-processing network the runtime talks to.
// Two real implementations exist in the original deployment (MainStreet,
// CreditCheq); both speak this same shape, so the workflow never branches
// on which one is configured.
type Backend interface {
	// Preauth places a hold for amount against the card described by
	// request, returning an approval code on success.
	Preauth(ctx context.Context, req AuthRequest) (AuthResult, error)
	// Complete finalizes a previously preauthorized amount, optionally
	// adjusted by a tip added after the guest signed.
	Complete(ctx context.Context, req CompleteRequest) (AuthResult, error)
	// VoiceAuth submits a manually phoned-in approval code for recording
	// only; the backend does not itself authorize anything here.
	VoiceAuth(ctx context.Context, req AuthRequest) (AuthResult, error)
	// Settle submits a completed batch of authorizations for deposit.
	Settle(ctx context.Context, batchID string, items []SettleItem) (SettleResult, error)
}

// AuthRequest carries what a preauth/voice-auth call needs.
type AuthRequest struct {
	TerminalID string
	PAN        string
	Expiry     string
	Amount     money.Money
}

// CompleteRequest carries what finalizing a preauth needs.
type CompleteRequest struct {
	TerminalID   string
	ApprovalCode string
	Amount       money.Money
	Tip          money.Money
}

// AuthResult is the backend's response to a preauth/complete/voice-auth call.
type AuthResult struct {
	Approved     bool
	ApprovalCode string
	DeclineText  string // verbatim backend text, preserved for receipts/errors
}

// SettleItem is one authorization submitted in a batch settlement.
type SettleItem struct {
	ApprovalCode string
	Amount       money.Money
}

// SettleResult summarizes a batch settlement submission.
type SettleResult struct {
	BatchID    string
	Accepted   int
	Rejected   int
	RejectedAt []string // approval codes the backend refused
}
