package types

import (
	"testing"
	"time"

	"github.com/trygglabs/trygg/internal/database/types/enum"
)

func TestPendingWindowClosed(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &ConsentRecord{Status: enum.ConsentStatusPending, CreatedAt: created}

	if record.PendingWindowClosed(created.Add(ConsentPendingWindow)) {
		t.Error("Window should still be open at exactly seven days")
	}

	if !record.PendingWindowClosed(created.Add(ConsentPendingWindow + time.Second)) {
		t.Error("Window should be closed one second past seven days")
	}

	record.Status = enum.ConsentStatusApproved
	if record.PendingWindowClosed(created.Add(30 * 24 * time.Hour)) {
		t.Error("Decided records never report a closed pending window")
	}
}

func TestApprovedActive(t *testing.T) {
	decided := time.Date(2025, 3, 8, 9, 30, 0, 0, time.UTC)
	expires := decided.Add(ConsentValidity)
	record := &ConsentRecord{
		Status:    enum.ConsentStatusApproved,
		DecidedAt: &decided,
		ExpiresAt: &expires,
	}

	if !record.ApprovedActive(expires.Add(-time.Second)) {
		t.Error("Approval should be active one second before expiry")
	}

	if record.ApprovedActive(expires) {
		t.Error("Approval should not be active at exactly the expiry instant")
	}

	record.Status = enum.ConsentStatusRevoked
	if record.ApprovedActive(decided.Add(time.Hour)) {
		t.Error("Revoked approvals never satisfy gating")
	}

	record.Status = enum.ConsentStatusApproved
	record.ExpiresAt = nil
	if record.ApprovedActive(decided.Add(time.Hour)) {
		t.Error("Approval without an expiry date never satisfies gating")
	}
}
