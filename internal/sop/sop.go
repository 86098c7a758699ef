// Package sop encodes the standard operating procedure actions the sales
// team can apply to a lead or company, and the status effects each action
// has.
package sop

import (
	"strings"
	"time"
)

const (
	ActionVerify          = "VERIFY"
	ActionLogConfirmation = "LOG_CONFIRMATION"
	ActionStartRetarget   = "START_RETARGET"
	ActionSendFollowup    = "SEND_FOLLOWUP"
)

var actionLabels = map[string]string{
	ActionVerify:          "Verify Now",
	ActionLogConfirmation: "Log Confirmation",
	ActionStartRetarget:   "Start Retarget",
	ActionSendFollowup:    "Send Follow-up",
}

func IsValidAction(action string) bool {
	_, ok := actionLabels[action]
	return ok
}

// Label returns the list-facing name of an action, or an em dash placeholder
// for unknown actions.
func Label(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return "—"
}

func formString(form map[string]any, key, fallback string) string {
	if v, ok := form[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// ContactPatch maps one SOP action on a contact to the override fields it
// sets: the last-action stamp plus the exception type, SLA status, and
// document status the action implies.
func ContactPatch(action string, form map[string]any, now time.Time) map[string]any {
	patch := map[string]any{
		"last_action":    Label(action),
		"last_action_at": now.Format("2006-01-02 15:04"),
	}

	switch action {
	case ActionVerify:
		result := formString(form, "verification_result", "Verified")
		patch["documents"] = formString(form, "document_status", "CV Received")
		if result == "Verified" {
			patch["exception_type"] = "Verified (12h)"
			patch["sla_status"] = "On Track"
		} else {
			patch["exception_type"] = "Not Verified (12h)"
			patch["sla_status"] = "Breached"
		}
	case ActionLogConfirmation:
		outcome := formString(form, "outcome", "Confirmed")
		if outcome == "Confirmed" {
			patch["exception_type"] = "Confirmed (24h)"
			patch["sla_status"] = "On Track"
		} else {
			patch["exception_type"] = "Not Confirmed (24h)"
			patch["sla_status"] = "Due Soon"
		}
	case ActionStartRetarget:
		result := formString(form, "result", "Attempted - No Reply")
		patch["exception_type"] = "Retarget Started (48h)"
		if result == "Attempted - No Reply" {
			patch["sla_status"] = "Breached"
		} else {
			patch["sla_status"] = "Due Soon"
		}
	case ActionSendFollowup:
		patch["exception_type"] = "Follow-up Sent (2h)"
		patch["sla_status"] = "On Track"
	}
	return patch
}

// CompanyPatch is the company-side effect of an action. Companies keep the
// raw action name as last_action and use a smaller status vocabulary.
func CompanyPatch(action string, now time.Time) map[string]any {
	patch := map[string]any{
		"last_action":    action,
		"last_action_at": now.Format("2006-01-02 15:04:05"),
	}
	switch action {
	case ActionVerify:
		patch["exception_type"] = "Verified"
		patch["sla_status"] = "On Track"
	case ActionLogConfirmation:
		patch["exception_type"] = "Confirmed"
	case ActionStartRetarget:
		patch["exception_type"] = "Retarget Started"
		patch["sla_status"] = "Due"
	case ActionSendFollowup:
		patch["exception_type"] = "Follow-up Sent"
	}
	return patch
}

// InferSLA derives a display SLA status from an exception type when the
// source view carries none.
func InferSLA(exceptionType string) string {
	t := strings.ToLower(exceptionType)
	switch {
	case strings.Contains(t, "not verified"), strings.Contains(t, "no-show"):
		return "Breached"
	case strings.Contains(t, "not confirmed"):
		return "Due Soon"
	case strings.Contains(t, "overdue"):
		return "Breached"
	default:
		return "On Track"
	}
}
