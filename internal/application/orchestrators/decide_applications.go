package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
)

// ApplicationDecider is the remote surface used to approve or reject applications.
type ApplicationDecider interface {
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
}

// ListRefresher is the list state that is reloaded after a decision.
type ListRefresher interface {
	Refresh(ctx context.Context) error
	Deselect(ids ...string)
}

// BulkOutcome reports which ids a bulk decision succeeded or failed for.
type BulkOutcome struct {
	Succeeded  []string
	Failed     map[string]error
	RefreshErr error // set when the post-decision reload failed
}

// Total returns the number of ids attempted.
func (o BulkOutcome) Total() int {
	return len(o.Succeeded) + len(o.Failed)
}

// Summary renders a one-line result such as "Approved 2 of 3 application(s)."
func (o BulkOutcome) Summary(verb string) string {
	if len(o.Failed) == 0 {
		return fmt.Sprintf("%s %d application(s).", verb, len(o.Succeeded))
	}
	if len(o.Succeeded) == 0 {
		return fmt.Sprintf("Could not %s %d application(s).", lowerVerb(verb), len(o.Failed))
	}
	return fmt.Sprintf("%s %d of %d application(s); %d failed.", verb, len(o.Succeeded), o.Total(), len(o.Failed))
}

func lowerVerb(verb string) string {
	switch verb {
	case "Approved":
		return "approve"
	case "Rejected":
		return "reject"
	}
	return verb
}

// --- Approve ---

// ApproveApplicationsInput carries the ids to approve.
type ApproveApplicationsInput struct {
	IDs []string
}

// DecideApplicationsDeps holds dependencies for approve and reject.
type DecideApplicationsDeps struct {
	Gateway ApplicationDecider
	List    ListRefresher
}

// ExecuteApproveApplications approves each id in turn, then reloads the list once.
// PRE: input.IDs is non-empty
// POST: One remote call per distinct id; the list is refreshed after all calls if any succeeded
func ExecuteApproveApplications(ctx context.Context, input ApproveApplicationsInput, deps DecideApplicationsDeps) (BulkOutcome, error) {
	return decideAll(ctx, "approve", input.IDs, deps.Gateway.Approve, deps.List)
}

// --- Reject ---

// RejectApplicationsInput carries the ids to reject and whether the admin confirmed.
type RejectApplicationsInput struct {
	IDs       []string
	Confirmed bool
}

// ExecuteRejectApplications rejects each id in turn, then reloads the list once.
// PRE: input.IDs is non-empty; input.Confirmed is true
// POST: Without confirmation nothing is called and no state changes (ErrConfirmationRequired)
func ExecuteRejectApplications(ctx context.Context, input RejectApplicationsInput, deps DecideApplicationsDeps) (BulkOutcome, error) {
	if len(input.IDs) == 0 {
		return BulkOutcome{}, ErrEmptySelection
	}
	if !input.Confirmed {
		return BulkOutcome{}, ErrConfirmationRequired
	}
	return decideAll(ctx, "reject", input.IDs, deps.Gateway.Reject, deps.List)
}

// decideAll runs call sequentially for every distinct id.
// INVARIANT: no retries; the refresh starts only after every call has returned
func decideAll(ctx context.Context, action string, ids []string, call func(context.Context, string) error, list ListRefresher) (BulkOutcome, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return BulkOutcome{}, ErrEmptySelection
	}

	out := BulkOutcome{Failed: make(map[string]error)}
	for _, id := range ids {
		if err := call(ctx, id); err != nil {
			slog.Error("application_decision_failed", "action", action, "id", id, "error", err)
			out.Failed[id] = err
			continue
		}
		out.Succeeded = append(out.Succeeded, id)
	}

	if len(out.Succeeded) > 0 {
		list.Deselect(out.Succeeded...)
		if err := list.Refresh(ctx); err != nil {
			slog.Warn("application_list_refresh_failed", "action", action, "error", err)
			out.RefreshErr = err
		}
	}

	slog.Info("bulk_action_completed", "action", action, "succeeded", len(out.Succeeded), "failed", len(out.Failed))
	return out, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
