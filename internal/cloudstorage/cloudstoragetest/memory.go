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

// Package cloudstoragetest provides an in-memory cloudstorage.Client with
// failure injection.
package cloudstoragetest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
)

type MemoryClient struct {
	mu            sync.Mutex
	objects       map[string]map[string]struct{}
	failKeys      map[string]error
	listErr       error
	batchSizes    []int
	singleDeletes []string
}

var _ cloudstorage.Client = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		objects:  map[string]map[string]struct{}{},
		failKeys: map[string]error{},
	}
}

func (m *MemoryClient) Put(bucket string, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[bucket] == nil {
		m.objects[bucket] = map[string]struct{}{}
	}
	for _, k := range keys {
		m.objects[bucket][k] = struct{}{}
	}
}

// Keys returns the keys present in bucket, sorted.
func (m *MemoryClient) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.objects[bucket]))
}

// FailKey makes every delete of key fail with err.
func (m *MemoryClient) FailKey(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKeys[key] = err
}

func (m *MemoryClient) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// BatchSizes returns the size of every DeleteObjects call, in call order.
func (m *MemoryClient) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.batchSizes)
}

func (m *MemoryClient) SingleDeletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.singleDeletes)
}

func (m *MemoryClient) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for k := range m.objects[bucket] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryClient) DeleteObjects(_ context.Context, bucket string, keys []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(keys) > cloudstorage.MaxDeleteBatch {
		return keys, fmt.Errorf("batch of %d exceeds %d", len(keys), cloudstorage.MaxDeleteBatch)
	}
	m.batchSizes = append(m.batchSizes, len(keys))
	var failed []string
	for _, k := range keys {
		if _, bad := m.failKeys[k]; bad {
			failed = append(failed, k)
			continue
		}
		delete(m.objects[bucket], k)
	}
	return failed, nil
}

func (m *MemoryClient) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.singleDeletes = append(m.singleDeletes, key)
	if err, bad := m.failKeys[key]; bad {
		return err
	}
	delete(m.objects[bucket], key)
	return nil
}
