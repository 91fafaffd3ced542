package review

import (
	"fmt"

	"districtops/internal/apperr"
	"districtops/internal/model"
)

// actionStatus is the fixed action to status map.
var actionStatus = map[model.Action]model.ReviewStatus{
	model.ActionApprove:     model.StatusApproved,
	model.ActionDeny:        model.StatusDenied,
	model.ActionFlag:        model.StatusUnderReview,
	model.ActionRequestInfo: model.StatusUnderReview,
}

// allowed lists, per current status, the actions that may be applied.
// approved and denied only reopen into under_review or repeat themselves.
var allowed = map[model.ReviewStatus]map[model.Action]bool{
	model.StatusPending: {
		model.ActionApprove: true, model.ActionDeny: true, model.ActionFlag: true, model.ActionRequestInfo: true,
	},
	model.StatusUnderReview: {
		model.ActionApprove: true, model.ActionDeny: true, model.ActionFlag: true, model.ActionRequestInfo: true,
	},
	model.StatusApproved: {
		model.ActionApprove: true, model.ActionFlag: true, model.ActionRequestInfo: true,
	},
	model.StatusDenied: {
		model.ActionDeny: true, model.ActionFlag: true, model.ActionRequestInfo: true,
	},
}

// NextStatus returns the status produced by applying a to current.
func NextStatus(current model.ReviewStatus, a model.Action) (model.ReviewStatus, error) {
	next, ok := actionStatus[a]
	if !ok {
		return "", fmt.Errorf("unknown action %q", a)
	}
	if !allowed[current][a] {
		return "", fmt.Errorf("action %q not permitted from %q", a, current)
	}
	return next, nil
}

// InvoiceDecider allows approve and dispute only from pending.
func InvoiceDecider(ref model.EntityRef, a model.Action) Decider {
	return func(current string) (string, error) {
		var next model.InvoiceStatus
		switch a {
		case model.ActionApprove:
			next = model.InvoiceApproved
		case model.ActionDispute:
			next = model.InvoiceDisputed
		default:
			return "", apperr.ErrUnknownAction
		}
		if model.InvoiceStatus(current) != model.InvoicePending {
			return "", apperr.InvalidTransition(string(ref.Kind), ref.ID, current, string(a))
		}
		return string(next), nil
	}
}
