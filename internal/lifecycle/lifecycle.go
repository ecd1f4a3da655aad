// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package lifecycle holds the event state machine: active → trashed →
// deleted, plus the explicit trashed → active restore. Everything here is a
// pure function of an event snapshot and the current time.
package lifecycle

import (
	"errors"
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusTrashed Status = "trashed"
)

// Reason codes recorded on audit entries.
type Reason string

const (
	ReasonExpiredDownload Reason = "expired_download"
	ReasonFreeEventOld    Reason = "free_event_old"
	ReasonGraceElapsed    Reason = "grace_period_elapsed"
	ReasonOwnerRestore    Reason = "owner_restore"
	ReasonAccountDeleted  Reason = "account_deleted"
)

// trashReasonOrder fixes the order reasons are joined in.
var trashReasonOrder = []Reason{ReasonExpiredDownload, ReasonFreeEventOld}

const (
	// GracePeriod separates trashing from eligibility for permanent deletion.
	GracePeriod = 30 * 24 * time.Hour

	// FreeEventMaxAgeYears is applied with calendar arithmetic, not as a
	// fixed duration.
	FreeEventMaxAgeYears = 1
)

var ErrNotTrashed = errors.New("event is not trashed")

// Snapshot is the subset of an event row the state machine looks at.
type Snapshot struct {
	Status            Status
	Plan              string
	IsPublished       bool
	DownloadWindowEnd *time.Time
	CreatedAt         time.Time
	TrashedAt         *time.Time
	DeleteAt          *time.Time
}

// Policy carries the plan-catalog input to the rules. An empty FreePlan
// disables the free-tier aging rule.
type Policy struct {
	FreePlan string
}

func DefaultPolicy() Policy {
	return Policy{FreePlan: "free"}
}

// Decision is the outcome of evaluating the active → trashed rules.
type Decision struct {
	Due     bool
	Reasons []Reason
}

// Reason returns the reason codes joined for storage on the audit record.
func (d Decision) Reason() string {
	return JoinReasons(d.Reasons)
}

// FreeCreatedBefore is the creation cutoff for the free-tier rule: events
// created strictly before it are too old.
func (p Policy) FreeCreatedBefore(now time.Time) time.Time {
	return now.AddDate(-FreeEventMaxAgeYears, 0, 0)
}

// EvaluateTrash applies both trash rules independently. Only active events
// can be due.
func (p Policy) EvaluateTrash(s Snapshot, now time.Time) Decision {
	if s.Status != StatusActive {
		return Decision{}
	}

	var reasons []Reason
	if s.IsPublished && s.DownloadWindowEnd != nil && now.After(*s.DownloadWindowEnd) {
		reasons = append(reasons, ReasonExpiredDownload)
	}
	if p.FreePlan != "" && s.Plan == p.FreePlan && s.CreatedAt.Before(p.FreeCreatedBefore(now)) {
		reasons = append(reasons, ReasonFreeEventOld)
	}
	return Decision{Due: len(reasons) > 0, Reasons: reasons}
}

// TrashTimes returns the timestamps written when an event is trashed at now.
func (p Policy) TrashTimes(now time.Time) (trashedAt, deleteAt time.Time) {
	return now, now.Add(GracePeriod)
}

// PurgeDue reports whether a trashed event has outlived its grace period.
func PurgeDue(s Snapshot, now time.Time) bool {
	return s.Status == StatusTrashed && s.DeleteAt != nil && now.After(*s.DeleteAt)
}

// CheckRestore rejects a restore for anything but a trashed event.
// Ownership is checked by the caller.
func CheckRestore(s Snapshot) error {
	if s.Status != StatusTrashed {
		return ErrNotTrashed
	}
	return nil
}

// ValidTrashWindow reports whether the pair satisfies the grace invariant.
func ValidTrashWindow(trashedAt, deleteAt time.Time) bool {
	return !deleteAt.Before(trashedAt.Add(GracePeriod))
}

// JoinReasons joins trash reasons in their canonical order. Reasons outside
// the trash rules are appended afterwards in the order given.
func JoinReasons(reasons []Reason) string {
	var parts []string
	for _, r := range trashReasonOrder {
		if slices.Contains(reasons, r) {
			parts = append(parts, string(r))
		}
	}
	for _, r := range reasons {
		if !slices.Contains(trashReasonOrder, r) && !slices.Contains(parts, string(r)) {
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, ",")
}

// ParseReasons splits a stored reason string.
func ParseReasons(s string) []Reason {
	if s == "" {
		return nil
	}
	var out []Reason
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Reason(part))
		}
	}
	return out
}
