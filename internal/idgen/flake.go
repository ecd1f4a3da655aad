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
	"encoding/base32"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/sony/sonyflake"
)

// DefaultFlakeGenerator produces the ids attached to sweep and teardown runs.
var DefaultFlakeGenerator *SonyFlakeGenerator

func init() {
	var err error
	DefaultFlakeGenerator, err = newFlakeGenerator()
	if err != nil {
		panic(err)
	}
}

type SonyFlakeGenerator struct {
	sf *sonyflake.Sonyflake
}

var flakeEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newFlakeGenerator derives the machine id from the private IP address and
// falls back to the hostname on hosts without one.
func newFlakeGenerator() (*SonyFlakeGenerator, error) {
	g, err := newFlakeGeneratorWith(nil)
	if err == nil {
		return g, nil
	}
	return newFlakeGeneratorWith(hostMachineID)
}

// newFlakeGeneratorWith uses sonyflake's private IP lookup when machineID is
// nil.
func newFlakeGeneratorWith(machineID func() (uint16, error)) (*SonyFlakeGenerator, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: flakeEpoch,
		MachineID: machineID,
	})
	if err != nil {
		return nil, err
	}
	if sf == nil {
		return nil, errors.New("failed to create Sonyflake instance")
	}
	return &SonyFlakeGenerator{sf: sf}, nil
}

// hostMachineID hashes the hostname to 16 bits, or picks a random id when
// the hostname is unavailable.
func hostMachineID() (uint16, error) {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return uint16(rand.UintN(1 << 16)), nil
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	return uint16(sum>>16) ^ uint16(sum), nil
}

// NextID falls back to a random id if the flake clock is exhausted.
func (g *SonyFlakeGenerator) NextID() int64 {
	v, err := g.sf.NextID()
	if err != nil {
		return rand.Int64()
	}
	return int64(v)
}

var runIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NextBase32ID returns the next id as lowercase unpadded base32, short
// enough to read in log lines.
func (g *SonyFlakeGenerator) NextBase32ID() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(g.NextID()))
	return strings.ToLower(runIDEncoding.EncodeToString(b[:]))
}

func NextBase32ID() string {
	return DefaultFlakeGenerator.NextBase32ID()
}
