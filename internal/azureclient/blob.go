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

package azureclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

type BlobClient struct {
	Client *azblob.Client
	Tracer trace.Tracer
}

type blobClientKey struct {
	StorageAccount string
	Endpoint       string
}

// GetBlobForProfile returns the cached client for the profile's account,
// creating it on first use.
func (m *Manager) GetBlobForProfile(_ context.Context, p storageprofile.StorageProfile) (*BlobClient, error) {
	if p.StorageAccount == "" && p.Endpoint == "" {
		return nil, errors.New("storage account or endpoint is required")
	}
	endpoint := p.AzureEndpoint()
	key := blobClientKey{StorageAccount: p.StorageAccount, Endpoint: endpoint}

	m.RLock()
	client, ok := m.blobClients[key]
	m.RUnlock()
	if ok {
		return client, nil
	}

	m.Lock()
	defer m.Unlock()
	if client, ok = m.blobClients[key]; ok {
		return client, nil
	}
	c, err := azblob.NewClient(endpoint, m.baseCred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client for %s: %w", endpoint, err)
	}
	client = &BlobClient{Client: c, Tracer: m.tracer}
	m.blobClients[key] = client
	return client, nil
}
