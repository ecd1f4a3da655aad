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

package storageprofile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderAWS   = "aws"
	ProviderGCP   = "gcp"
	ProviderAzure = "azure"
	ProviderLocal = "local"
)

// ErrNotConfigured is returned when no provider is set. Callers skip storage
// cleanup in that case.
var ErrNotConfigured = errors.New("object storage not configured")

// StorageProfile describes the bucket that holds event media and how to
// reach it.
type StorageProfile struct {
	CloudProvider  string `json:"cloud_provider" yaml:"cloud_provider"`
	Bucket         string `json:"bucket" yaml:"bucket"`
	Region         string `json:"region,omitempty" yaml:"region,omitempty"`
	Role           string `json:"role,omitempty" yaml:"role,omitempty"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	InsecureTLS    bool   `json:"insecure_tls,omitempty" yaml:"insecure_tls,omitempty"`
	UsePathStyle   bool   `json:"use_path_style,omitempty" yaml:"use_path_style,omitempty"`
	StorageAccount string `json:"storage_account,omitempty" yaml:"storage_account,omitempty"`
	// PublicURLBase is the prefix of upload URLs handed out to clients, for
	// example https://cdn.example.com or https://bucket.s3.amazonaws.com.
	PublicURLBase string `json:"public_url_base,omitempty" yaml:"public_url_base,omitempty"`
	// LocalRoot is the directory backing the local provider.
	LocalRoot string `json:"local_root,omitempty" yaml:"local_root,omitempty"`
}

func (p StorageProfile) Configured() bool {
	return strings.TrimSpace(p.CloudProvider) != ""
}

// Validate checks that the fields required by the provider are present.
func (p StorageProfile) Validate() error {
	switch p.CloudProvider {
	case "":
		return ErrNotConfigured
	case ProviderAWS, ProviderGCP:
		if p.Bucket == "" {
			return fmt.Errorf("%s storage requires a bucket", p.CloudProvider)
		}
	case ProviderAzure:
		if p.Bucket == "" {
			return errors.New("azure storage requires a container (bucket)")
		}
		if p.StorageAccount == "" && p.Endpoint == "" {
			return errors.New("azure storage requires storage_account or endpoint")
		}
	case ProviderLocal:
		if p.LocalRoot == "" {
			return errors.New("local storage requires local_root")
		}
		if p.Bucket == "" {
			return errors.New("local storage requires a bucket")
		}
	default:
		return fmt.Errorf("unsupported cloud provider: %s", p.CloudProvider)
	}
	return nil
}

// AzureEndpoint returns the blob service endpoint, derived from the storage
// account when no endpoint is set.
func (p StorageProfile) AzureEndpoint() string {
	if p.Endpoint != "" {
		return p.Endpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", p.StorageAccount)
}
