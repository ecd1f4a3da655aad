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

package cloudstorage

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	objectsDeleted metric.Int64Counter
	objectsFailed  metric.Int64Counter
	listErrors     metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/gallerykeeper/internal/cloudstorage")

	var err error
	objectsDeleted, err = meter.Int64Counter(
		"gallerykeeper.storage.objects.deleted",
		metric.WithDescription("Number of storage objects deleted"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create objects.deleted counter: %w", err))
	}

	objectsFailed, err = meter.Int64Counter(
		"gallerykeeper.storage.objects.failed",
		metric.WithDescription("Number of storage objects that could not be deleted"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create objects.failed counter: %w", err))
	}

	listErrors, err = meter.Int64Counter(
		"gallerykeeper.storage.list.errors",
		metric.WithDescription("Number of failed prefix listings"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create list.errors counter: %w", err))
	}
}
