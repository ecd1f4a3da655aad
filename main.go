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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	gomaxecs "github.com/rdforte/gomaxecs/maxprocs"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/cardinalhq/gallerykeeper/cmd"
)

func stderrf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}

// tuneProcs sizes GOMAXPROCS from the ECS task limits when running on ECS
// and from the cgroup quota elsewhere.
func tuneProcs() {
	if gomaxecs.IsECS() {
		if _, err := gomaxecs.Set(gomaxecs.WithLogger(stderrf)); err != nil {
			stderrf("gallerykeeper: gomaxecs: %v", err)
		}
		return
	}
	if _, err := maxprocs.Set(maxprocs.Logger(stderrf)); err != nil {
		stderrf("gallerykeeper: automaxprocs: %v", err)
	}
}

// tuneMemory leaves 20% of the container limit as headroom for the pgx
// pool and SDK buffers outside the Go heap.
func tuneMemory() {
	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.8),
		memlimit.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	)
	if err != nil {
		stderrf("gallerykeeper: automemlimit: %v", err)
	}
}

func init() {
	// Retention windows and audit timestamps are all UTC.
	time.Local = time.UTC
	tuneProcs()
	tuneMemory()
}

func main() {
	cmd.Execute()
}
