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
	"fmt"
	"sync"

	"github.com/cardinalhq/gallerykeeper/internal/awsclient"
	"github.com/cardinalhq/gallerykeeper/internal/azureclient"
	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

// MaxDeleteBatch is the per-request object ceiling of S3 DeleteObjects.
const MaxDeleteBatch = 1000

// Client is the subset of object-storage operations used for cleanup.
type Client interface {
	// ListObjects returns every key in bucket that starts with prefix.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	// DeleteObjects removes keys in batches of at most MaxDeleteBatch and
	// returns the keys that could not be removed. A non-nil error means at
	// least one whole batch failed; its keys are included in failed.
	DeleteObjects(ctx context.Context, bucket string, keys []string) (failed []string, err error)

	// DeleteObject removes a single key. Missing keys are not an error.
	DeleteObject(ctx context.Context, bucket, key string) error
}

type ClientProvider interface {
	NewClient(ctx context.Context, profile storageprofile.StorageProfile) (Client, error)
}

// CloudManagers creates provider SDK managers on first use so that an
// aws-only deployment never loads Azure credentials and vice versa.
type CloudManagers struct {
	mu    sync.Mutex
	aws   *awsclient.Manager
	azure *azureclient.Manager
}

var _ ClientProvider = (*CloudManagers)(nil)

func NewCloudManagers() *CloudManagers {
	return &CloudManagers{}
}

func (m *CloudManagers) awsManager(ctx context.Context) (*awsclient.Manager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.aws == nil {
		mgr, err := awsclient.NewManager(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS manager: %w", err)
		}
		m.aws = mgr
	}
	return m.aws, nil
}

func (m *CloudManagers) azureManager(ctx context.Context) (*azureclient.Manager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.azure == nil {
		mgr, err := azureclient.NewManager(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure manager: %w", err)
		}
		m.azure = mgr
	}
	return m.azure, nil
}

func (m *CloudManagers) NewClient(ctx context.Context, profile storageprofile.StorageProfile) (Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	switch profile.CloudProvider {
	case storageprofile.ProviderAWS, storageprofile.ProviderGCP:
		mgr, err := m.awsManager(ctx)
		if err != nil {
			return nil, err
		}
		s3c, err := mgr.GetS3ForProfile(ctx, profile)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return newS3Client(s3c.Client, s3c.Tracer), nil
	case storageprofile.ProviderAzure:
		mgr, err := m.azureManager(ctx)
		if err != nil {
			return nil, err
		}
		bc, err := mgr.GetBlobForProfile(ctx, profile)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
		}
		return newAzureClient(bc), nil
	case storageprofile.ProviderLocal:
		return NewFileClient(profile.LocalRoot), nil
	default:
		return nil, fmt.Errorf("unsupported cloud provider: %s", profile.CloudProvider)
	}
}

// chunk splits keys into consecutive slices of at most size elements.
func chunk(keys []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(keys); i += size {
		out = append(out, keys[i:min(i+size, len(keys))])
	}
	return out
}
