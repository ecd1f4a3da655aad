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
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

const DefaultDeleteConcurrency = 8

// EventPrefix is the key namespace of an event's media.
func EventPrefix(eventID uuid.UUID) string {
	return "events/" + eventID.String() + "/"
}

// PurgeReport describes the outcome of a best-effort delete. Failures never
// abort the caller; they are reported here.
type PurgeReport struct {
	Listed  int
	Deleted int
	Failed  []string
	Err     error
}

func (r PurgeReport) OK() bool {
	return r.Err == nil && len(r.Failed) == 0
}

// Gateway binds a Client to the media bucket.
type Gateway struct {
	client        Client
	bucket        string
	publicURLBase string
	concurrency   int
	tracer        trace.Tracer
}

type GatewayOption func(*Gateway)

func WithPublicURLBase(base string) GatewayOption {
	return func(g *Gateway) {
		g.publicURLBase = strings.TrimRight(base, "/")
	}
}

// WithDeleteConcurrency bounds the number of delete requests in flight.
func WithDeleteConcurrency(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

func NewGateway(client Client, bucket string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:      client,
		bucket:      bucket,
		concurrency: DefaultDeleteConcurrency,
		tracer:      otel.Tracer("github.com/cardinalhq/gallerykeeper/internal/cloudstorage"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGatewayForProfile returns storageprofile.ErrNotConfigured when the
// profile has no provider.
func NewGatewayForProfile(ctx context.Context, provider ClientProvider, profile storageprofile.StorageProfile, opts ...GatewayOption) (*Gateway, error) {
	if !profile.Configured() {
		return nil, storageprofile.ErrNotConfigured
	}
	client, err := provider.NewClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	opts = append([]GatewayOption{WithPublicURLBase(profile.PublicURLBase)}, opts...)
	return NewGateway(client, profile.Bucket, opts...), nil
}

func (g *Gateway) Bucket() string {
	return g.bucket
}

func (g *Gateway) EventPrefix(eventID uuid.UUID) string {
	return EventPrefix(eventID)
}

// PurgePrefix lists every key under prefix and deletes them in batches.
func (g *Gateway) PurgePrefix(ctx context.Context, prefix string) PurgeReport {
	ctx, span := g.tracer.Start(ctx, "cloudstorage.PurgePrefix",
		trace.WithAttributes(
			attribute.String("bucket", g.bucket),
			attribute.String("prefix", prefix),
		),
	)
	defer span.End()

	keys, err := g.client.ListObjects(ctx, g.bucket, prefix)
	if err != nil {
		listErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", g.bucket)))
		span.RecordError(err)
		// Whatever was listed before the failure is still deleted.
		report := g.DeleteKeys(ctx, keys)
		report.Listed = len(keys)
		report.Err = errors.Join(fmt.Errorf("list %s: %w", prefix, err), report.Err)
		return report
	}

	report := g.DeleteKeys(ctx, keys)
	report.Listed = len(keys)
	return report
}

// DeleteKeys removes keys in MaxDeleteBatch chunks, running up to the
// configured number of chunks concurrently.
func (g *Gateway) DeleteKeys(ctx context.Context, keys []string) PurgeReport {
	var report PurgeReport
	if len(keys) == 0 {
		return report
	}

	ctx, span := g.tracer.Start(ctx, "cloudstorage.DeleteKeys",
		trace.WithAttributes(
			attribute.String("bucket", g.bucket),
			attribute.Int("object_count", len(keys)),
		),
	)
	defer span.End()

	var (
		mu     sync.Mutex
		failed []string
		merr   *multierror.Error
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, batch := range chunk(keys, MaxDeleteBatch) {
		eg.Go(func() error {
			f, err := g.client.DeleteObjects(egCtx, g.bucket, batch)
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, f...)
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			return nil
		})
	}
	_ = eg.Wait()

	report.Failed = failed
	report.Deleted = len(keys) - len(failed)
	report.Err = merr.ErrorOrNil()

	attrs := metric.WithAttributes(attribute.String("bucket", g.bucket))
	objectsDeleted.Add(ctx, int64(report.Deleted), attrs)
	if len(failed) > 0 {
		objectsFailed.Add(ctx, int64(len(failed)), attrs)
		span.SetAttributes(attribute.Int("failed_count", len(failed)))
	}
	return report
}

func (g *Gateway) DeleteKey(ctx context.Context, key string) error {
	attrs := metric.WithAttributes(attribute.String("bucket", g.bucket))
	if err := g.client.DeleteObject(ctx, g.bucket, key); err != nil {
		objectsFailed.Add(ctx, 1, attrs)
		return err
	}
	objectsDeleted.Add(ctx, 1, attrs)
	return nil
}

// KeyForURL resolves a stored upload URL to a key in the bucket.
//
// Accepted forms are URLs under the public URL base, s3://bucket/key, and
// bare keys. When no public URL base is configured, any http(s) URL is
// accepted and its path is used, with a leading bucket segment removed for
// path-style URLs. URLs on other hosts are rejected when a base is set.
func (g *Gateway) KeyForURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if g.publicURLBase != "" && strings.HasPrefix(raw, g.publicURLBase+"/") {
		rest := raw[len(g.publicURLBase)+1:]
		if i := strings.IndexAny(rest, "?#"); i >= 0 {
			rest = rest[:i]
		}
		key, err := url.PathUnescape(rest)
		if err != nil {
			return "", false
		}
		return validKey(key)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "":
		if u.Host != "" {
			return "", false
		}
		return validKey(u.Path)
	case "s3", "gs":
		if u.Host != g.bucket {
			return "", false
		}
		return validKey(u.Path)
	case "http", "https":
		if g.publicURLBase != "" {
			return "", false
		}
		key := strings.TrimPrefix(u.Path, "/")
		key = strings.TrimPrefix(key, g.bucket+"/")
		return validKey(key)
	default:
		return "", false
	}
}

func validKey(key string) (string, bool) {
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", false
	}
	return key, true
}
