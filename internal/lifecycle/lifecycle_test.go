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

package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func TestEvaluateTrash(t *testing.T) {
	policy := DefaultPolicy()
	day := 24 * time.Hour

	tests := []struct {
		name    string
		snap    Snapshot
		due     bool
		reasons []Reason
	}{
		{
			name: "published with expired window",
			snap: Snapshot{Status: StatusActive, Plan: "pro", IsPublished: true, DownloadWindowEnd: tp(now.Add(-day)), CreatedAt: now.Add(-10 * day)},
			due:  true, reasons: []Reason{ReasonExpiredDownload},
		},
		{
			name: "window ends exactly now is not expired",
			snap: Snapshot{Status: StatusActive, Plan: "pro", IsPublished: true, DownloadWindowEnd: tp(now), CreatedAt: now.Add(-10 * day)},
		},
		{
			name: "unpublished with past window",
			snap: Snapshot{Status: StatusActive, Plan: "pro", DownloadWindowEnd: tp(now.Add(-day)), CreatedAt: now.Add(-10 * day)},
		},
		{
			name: "published without window",
			snap: Snapshot{Status: StatusActive, Plan: "pro", IsPublished: true, CreatedAt: now.Add(-10 * day)},
		},
		{
			name: "free event 400 days old",
			snap: Snapshot{Status: StatusActive, Plan: "free", CreatedAt: now.Add(-400 * day)},
			due:  true, reasons: []Reason{ReasonFreeEventOld},
		},
		{
			name: "free event exactly one calendar year old",
			snap: Snapshot{Status: StatusActive, Plan: "free", CreatedAt: now.AddDate(-1, 0, 0)},
		},
		{
			name: "free event one second past a year",
			snap: Snapshot{Status: StatusActive, Plan: "free", CreatedAt: now.AddDate(-1, 0, 0).Add(-time.Second)},
			due:  true, reasons: []Reason{ReasonFreeEventOld},
		},
		{
			name: "upgraded event is exempt from the free rule",
			snap: Snapshot{Status: StatusActive, Plan: "premium", CreatedAt: now.Add(-800 * day)},
		},
		{
			name: "both rules hold",
			snap: Snapshot{Status: StatusActive, Plan: "free", IsPublished: true, DownloadWindowEnd: tp(now.Add(-day)), CreatedAt: now.Add(-400 * day)},
			due:  true, reasons: []Reason{ReasonExpiredDownload, ReasonFreeEventOld},
		},
		{
			name: "trashed events are never due again",
			snap: Snapshot{Status: StatusTrashed, Plan: "free", IsPublished: true, DownloadWindowEnd: tp(now.Add(-day)), CreatedAt: now.Add(-400 * day)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.EvaluateTrash(tt.snap, now)
			assert.Equal(t, tt.due, d.Due)
			assert.Equal(t, tt.reasons, d.Reasons)
		})
	}
}

func TestEvaluateTrash_FreeRuleDisabled(t *testing.T) {
	d := Policy{}.EvaluateTrash(Snapshot{Status: StatusActive, CreatedAt: now.AddDate(-5, 0, 0)}, now)
	assert.False(t, d.Due)
}

func TestFreeCreatedBeforeUsesCalendarYears(t *testing.T) {
	leap := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC), DefaultPolicy().FreeCreatedBefore(leap))
}

func TestTrashTimes(t *testing.T) {
	trashedAt, deleteAt := DefaultPolicy().TrashTimes(now)
	assert.Equal(t, now, trashedAt)
	assert.Equal(t, now.Add(30*24*time.Hour), deleteAt)
	assert.True(t, ValidTrashWindow(trashedAt, deleteAt))
	assert.False(t, ValidTrashWindow(trashedAt, deleteAt.Add(-time.Nanosecond)))
}

func TestPurgeDue(t *testing.T) {
	assert.True(t, PurgeDue(Snapshot{Status: StatusTrashed, DeleteAt: tp(now.Add(-time.Hour))}, now))
	assert.False(t, PurgeDue(Snapshot{Status: StatusTrashed, DeleteAt: tp(now.Add(time.Hour))}, now))
	assert.False(t, PurgeDue(Snapshot{Status: StatusTrashed, DeleteAt: tp(now)}, now))
	assert.False(t, PurgeDue(Snapshot{Status: StatusActive}, now))
}

func TestCheckRestore(t *testing.T) {
	assert.NoError(t, CheckRestore(Snapshot{Status: StatusTrashed}))
	assert.ErrorIs(t, CheckRestore(Snapshot{Status: StatusActive}), ErrNotTrashed)
}

func TestJoinReasons(t *testing.T) {
	assert.Equal(t, "expired_download,free_event_old",
		JoinReasons([]Reason{ReasonFreeEventOld, ReasonExpiredDownload}))
	assert.Equal(t, "free_event_old", Decision{Reasons: []Reason{ReasonFreeEventOld}}.Reason())
	assert.Equal(t, "account_deleted", JoinReasons([]Reason{ReasonAccountDeleted}))
	assert.Equal(t, "", JoinReasons(nil))

	assert.Equal(t, []Reason{ReasonExpiredDownload, ReasonFreeEventOld},
		ParseReasons("expired_download, free_event_old"))
	assert.Nil(t, ParseReasons(""))
}
