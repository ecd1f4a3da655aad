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

package idgen

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyFlakeGenerator_NextID(t *testing.T) {
	gen, err := newFlakeGenerator()
	require.NoError(t, err)

	id := gen.NextID()
	id2 := gen.NextID()
	assert.Greater(t, id2, id, "NextID() did not return increasing id")
}

func TestSonyFlakeGenerator_NextBase32ID(t *testing.T) {
	gen, err := newFlakeGenerator()
	require.NoError(t, err)

	id1 := gen.NextBase32ID()
	id2 := gen.NextBase32ID()

	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 13)
	assert.NotContains(t, id1, "=")
	assert.Equal(t, strings.ToLower(id1), id1)

	id3 := NextBase32ID()
	assert.NotEmpty(t, id3)
}

func TestHostMachineIDIsStable(t *testing.T) {
	if name, err := os.Hostname(); err != nil || name == "" {
		t.Skip("hostname unavailable")
	}
	a, err := hostMachineID()
	require.NoError(t, err)
	b, err := hostMachineID()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFlakeGeneratorWithHostMachineID(t *testing.T) {
	gen, err := newFlakeGeneratorWith(hostMachineID)
	require.NoError(t, err)

	id1 := gen.NextID()
	id2 := gen.NextID()
	assert.Greater(t, id2, id1)
}

func TestFlakeGeneratorMachineIDError(t *testing.T) {
	_, err := newFlakeGeneratorWith(func() (uint16, error) {
		return 0, errors.New("no private ip address")
	})
	assert.Error(t, err)
}
