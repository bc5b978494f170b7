// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmu

import (
	"math/rand"
	"testing"
)

const (
	testMaxEntries = 512
	testMaxRegions = 16
	testTableSize  = testMaxEntries * PTE_SIZE
)

func TestPageTableSize(t *testing.T) {
	// (5 * 4 KiB * 16 + 4 KiB) * 2 + 4 * 4 KiB
	if got, want := PageTableSize(10, testMaxEntries, testMaxRegions), uint64(679936); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}

	// region count beyond the ceiling raises the estimate
	if got, want := PageTableSize(20, testMaxEntries, testMaxRegions), uint64((5*4096*20+4096)*2+4*4096); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestPageTableSizeMonotonic(t *testing.T) {
	prev := PageTableSize(0, testMaxEntries, 0)

	for n := 1; n < 256; n++ {
		size := PageTableSize(0, testMaxEntries, n)

		if size < prev {
			t.Fatalf("estimate decreased from %d to %d at %d regions", prev, size, n)
		}

		prev = size
	}
}

func TestTableCount(t *testing.T) {
	for _, test := range []struct {
		name    string
		regions []Region
		want    int
	}{
		{
			name: "empty",
			want: 1,
		}, {
			name: "1 GiB blocks",
			regions: []Region{
				{Virt: 0x40000000, Size: 0x80000000},
			},
			want: 2,
		}, {
			name: "2 MiB blocks",
			regions: []Region{
				{Virt: 0x27000000, Size: 0x03000000},
			},
			want: 3,
		}, {
			name: "pages",
			regions: []Region{
				{Virt: 0, Size: 0x40000},
			},
			want: 4,
		}, {
			name: "unaligned head and tail",
			regions: []Region{
				{Virt: 0x3fff0000, Size: 0x40020000},
			},
			// L0, L1, 2 x L2, 2 x L3
			want: 6,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := TableCount(test.regions); got != test.want {
				t.Fatalf("got %d, want %d", got, test.want)
			}
		})
	}
}

// Any layout of up to the maximum number of regions within a 512 GiB address
// space must fit in half the estimate, the other half holds the copy.
func TestPageTableSizeBound(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	limit := PageTableSize(0, testMaxEntries, testMaxRegions) / 2

	for i := 0; i < 1000; i++ {
		var regions []Region

		addr := uint64(0)
		n := 1 + rnd.Intn(testMaxRegions)

		for j := 0; j < n; j++ {
			addr += uint64(rnd.Int63n(1<<20)) * PageSize
			size := uint64(1+rnd.Int63n(1<<20)) * PageSize

			if addr+size >= 1<<L0_SHIFT {
				break
			}

			regions = append(regions, Region{Virt: addr, Phys: addr, Size: size})
			addr += size
		}

		if used := uint64(TableCount(regions)) * testTableSize; used > limit {
			t.Fatalf("%d regions use %d bytes, estimate %d", len(regions), used, limit)
		}
	}
}
