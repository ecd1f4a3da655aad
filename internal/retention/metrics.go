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

package retention

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	transitionCounter metric.Int64Counter
	sweepErrorCounter metric.Int64Counter
	sweepDuration     metric.Float64Histogram
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/gallerykeeper/internal/retention")

	var err error
	transitionCounter, err = meter.Int64Counter(
		"gallerykeeper.retention.transitions_total",
		metric.WithDescription("Count of event lifecycle transitions"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create transitions_total counter: %w", err))
	}

	sweepErrorCounter, err = meter.Int64Counter(
		"gallerykeeper.retention.sweep_errors_total",
		metric.WithDescription("Count of per-event sweep failures"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sweep_errors_total counter: %w", err))
	}

	sweepDuration, err = meter.Float64Histogram(
		"gallerykeeper.retention.sweep_duration_seconds",
		metric.WithDescription("Duration of sweep runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sweep_duration_seconds histogram: %w", err))
	}
}
