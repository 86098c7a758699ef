package sop

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 24, 10, 5, 0, 0, time.UTC)

func TestInferSLA(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Not Verified (12h)", "Breached"},
		{"No-show Not Retargeted (48h)", "Breached"},
		{"Not Confirmed (24h)", "Due Soon"},
		{"Follow-up Overdue (2h)", "Breached"},
		{"Verified (12h)", "On Track"},
		{"", "On Track"},
	}
	for _, tt := range tests {
		if got := InferSLA(tt.in); got != tt.want {
			t.Errorf("InferSLA(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContactPatchVerify(t *testing.T) {
	patch := ContactPatch(ActionVerify, map[string]any{
		"verification_result": "Not Verified",
		"document_status":     "Missing CV",
	}, testNow)

	if patch["exception_type"] != "Not Verified (12h)" {
		t.Errorf("exception_type = %v", patch["exception_type"])
	}
	if patch["sla_status"] != "Breached" {
		t.Errorf("sla_status = %v", patch["sla_status"])
	}
	if patch["documents"] != "Missing CV" {
		t.Errorf("documents = %v", patch["documents"])
	}
	if patch["last_action"] != "Verify Now" {
		t.Errorf("last_action = %v", patch["last_action"])
	}
	if patch["last_action_at"] != "2026-02-24 10:05" {
		t.Errorf("last_action_at = %v", patch["last_action_at"])
	}
}

func TestContactPatchDefaults(t *testing.T) {
	patch := ContactPatch(ActionVerify, nil, testNow)
	if patch["exception_type"] != "Verified (12h)" || patch["sla_status"] != "On Track" {
		t.Errorf("patch = %v", patch)
	}

	patch = ContactPatch(ActionStartRetarget, nil, testNow)
	if patch["exception_type"] != "Retarget Started (48h)" || patch["sla_status"] != "Breached" {
		t.Errorf("patch = %v", patch)
	}

	patch = ContactPatch(ActionStartRetarget, map[string]any{"result": "Reached"}, testNow)
	if patch["sla_status"] != "Due Soon" {
		t.Errorf("patch = %v", patch)
	}

	patch = ContactPatch(ActionSendFollowup, nil, testNow)
	if patch["exception_type"] != "Follow-up Sent (2h)" || patch["sla_status"] != "On Track" {
		t.Errorf("patch = %v", patch)
	}
}

func TestCompanyPatch(t *testing.T) {
	patch := CompanyPatch(ActionStartRetarget, testNow)
	if patch["exception_type"] != "Retarget Started" || patch["sla_status"] != "Due" {
		t.Errorf("patch = %v", patch)
	}
	if patch["last_action"] != ActionStartRetarget {
		t.Errorf("last_action = %v", patch["last_action"])
	}
}

func TestIsValidAction(t *testing.T) {
	for _, action := range []string{ActionVerify, ActionLogConfirmation, ActionStartRetarget, ActionSendFollowup} {
		if !IsValidAction(action) {
			t.Errorf("%s should be valid", action)
		}
	}
	if IsValidAction("DELETE_EVERYTHING") {
		t.Error("unknown action accepted")
	}
}
