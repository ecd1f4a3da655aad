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

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/retention"
	"github.com/cardinalhq/gallerykeeper/internal/teardown"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var outputFormat string

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = formatText
	case formatText, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
	return &printer{w: w, format: format}, nil
}

// print writes v as JSON or YAML, or calls text for the text format.
func (p *printer) print(v any, text func(w io.Writer) error) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func sweepResultText(res retention.SweepResult) func(io.Writer) error {
	return func(w io.Writer) error {
		status := "ok"
		switch {
		case res.Aborted:
			status = "aborted"
		case !res.Success:
			status = "completed with errors"
		}
		fmt.Fprintf(w, "%s sweep %s: %s\n", res.Kind, res.RunID, status)
		fmt.Fprintf(w, "  processed: %d\n  skipped:   %d\n", res.Processed, res.Skipped)
		fmt.Fprintf(w, "  duration:  %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
		writeList(w, "errors", res.Errors)
		writeList(w, "warnings", res.Warnings)
		return nil
	}
}

func plannedText(kind string, planned []retention.Planned) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(planned) == 0 {
			fmt.Fprintf(w, "No events due for %s.\n", kind)
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "EVENT_ID\tUSER_ID\tNAME\tPLAN\tREASON\tDELETE_AT")
		for _, p := range planned {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.EventID, p.UserID, p.Name, p.Plan, p.Reason, formatTime(p.DeleteAt))
		}
		return tw.Flush()
	}
}

func historyText(records []audit.Record) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(records) == 0 {
			fmt.Fprintln(w, "No audit records.")
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "CREATED_AT\tACTION\tREASON\tEVENT_DELETED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", formatTime(r.CreatedAt), r.Action, r.Reason, r.Detached)
		}
		return tw.Flush()
	}
}

func previewText(p teardown.DeletionPreview) func(io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "User %s <%s> (%s), created %s\n", p.User.ID, p.User.Email, p.User.Name, formatTime(p.User.CreatedAt))
		fmt.Fprintf(w, "  events:            %d\n", p.Events.Count)
		fmt.Fprintf(w, "  uploads:           %d (%d bytes)\n", p.Uploads.Count, p.Uploads.TotalSizeBytes)
		fmt.Fprintf(w, "  storage keys:      %d\n", len(p.Uploads.StorageKeys))
		fmt.Fprintf(w, "  albums:            %d\n", p.Albums.Count)
		fmt.Fprintf(w, "  guestbook entries: %d\n", p.GuestbookEntries.Count)
		fmt.Fprintf(w, "  sessions:          %d\n", p.Identity.Sessions)
		fmt.Fprintf(w, "  accounts:          %d\n", p.Identity.Accounts)
		fmt.Fprintf(w, "  verifications:     %d\n", p.Identity.Verifications)
		fmt.Fprintf(w, "  memberships:       %d\n", p.Identity.Memberships)
		fmt.Fprintf(w, "  invitations sent:  %d\n", p.Identity.InvitationsSent)
		if !p.StorageConfigured {
			fmt.Fprintln(w, "  object storage not configured; media will not be removed")
		}
		writeList(w, "unresolved upload urls", p.Uploads.UnresolvedURLs)
		if len(p.Events.Items) > 0 {
			tw := newTable(w)
			fmt.Fprintln(tw, "EVENT_ID\tNAME\tSTATUS\tPLAN\tCREATED_AT")
			for _, e := range p.Events.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Status, e.Plan, formatTime(e.CreatedAt))
			}
			return tw.Flush()
		}
		return nil
	}
}

func countsText(w io.Writer, c teardown.DeletedCounts) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KIND\tDELETED")
	for _, row := range []struct {
		kind string
		n    int64
	}{
		{"events", c.Events},
		{"uploads", c.Uploads},
		{"albums", c.Albums},
		{"guestbook_entries", c.GuestbookEntries},
		{"sessions", c.Sessions},
		{"accounts", c.Accounts},
		{"verifications", c.Verifications},
		{"memberships", c.Memberships},
		{"invitations_sent", c.InvitationsSent},
		{"users", c.Users},
	} {
		fmt.Fprintf(tw, "%s\t%d\n", row.kind, row.n)
	}
	return tw.Flush()
}

func deletionText(res teardown.DeletionResult) func(io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "Deleted user %s <%s>; %d storage objects removed\n", res.UserID, res.Email, res.StorageDeleted)
		if err := countsText(w, res.Deleted); err != nil {
			return err
		}
		writeList(w, "non-fatal errors", res.Errors)
		return nil
	}
}

func purgeText(res teardown.PurgeResult) func(io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "Purged %d user(s) for %s; %d storage objects removed\n", len(res.UserIDs), res.Email, res.StorageDeleted)
		writeList(w, "users", res.UserIDs)
		writeList(w, "removed by identity provider", res.ProviderRemoved)
		if err := countsText(w, res.Deleted); err != nil {
			return err
		}
		writeList(w, "non-fatal errors", res.Errors)
		return nil
	}
}
