package ccworkflow

import (
	"context"
	"fmt"

	"github.com/viewtouch/posk/internal/checkmodel"
)

// CollectSettleable walks every SubCheck's Payments across checks and
// returns the Credits ready for batch settlement: completed, not yet
// carrying a BatchID (spec §4.3: CC_Settle only touches completed,
// unbatched Credits).
func CollectSettleable(checks []*checkmodel.Check) []*checkmodel.Credit {
	var out []*checkmodel.Credit
	for _, check := range checks {
		for _, sub := range check.SubChecks {
			for _, p := range sub.Payments {
				if p.Credit == nil {
					continue
				}
				if p.Credit.Status == checkmodel.CreditCompleted && p.Credit.BatchID == "" {
					out = append(out, p.Credit)
				}
			}
		}
	}
	return out
}

// Settle submits every credit in batch to the backend under batchID and
// stamps BatchID on each one the backend accepted, so a second Settle call
// over the same checks never resubmits them (spec §4.3: CC_Settle).
func (w *Workflow) Settle(ctx context.Context, batchID string, batch []*checkmodel.Credit) (SettleResult, error) {
	items := make([]SettleItem, len(batch))
	for i, c := range batch {
		items[i] = SettleItem{ApprovalCode: c.ApprovalCode, Amount: c.Amount}
	}

	result, err := w.backend.Settle(ctx, batchID, items)
	if err != nil {
		return SettleResult{}, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}

	rejected := make(map[string]bool, len(result.RejectedAt))
	for _, code := range result.RejectedAt {
		rejected[code] = true
	}
	for _, c := range batch {
		if !rejected[c.ApprovalCode] {
			c.BatchID = result.BatchID
		}
	}
	return result, nil
}
