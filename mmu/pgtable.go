// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmu

// Translation table geometry (4 KiB granule, 48-bit input address)
const (
	PTE_SIZE = 8 // bytes per descriptor

	L0_SHIFT = 39
	L1_SHIFT = 30
	L2_SHIFT = 21

	L1_BLOCK = 1 << L1_SHIFT // 1 GiB
	L2_BLOCK = 1 << L2_SHIFT // 2 MiB
)

const (
	// Worst case tables per region:
	// 2 level 3 tables + 2 level 2 tables + 1 level 1 table
	tablesPerRegion = 2 + 2 + 1

	// tables reserved for later splits caused by dcache setting changes
	spareTables = 4
)

// PageTableSize returns the size of the memory pool required for translation
// tables mapping up to max(regionCount, maxRegions) regions, each table
// holding maxEntries descriptors.
//
// The estimate is doubled to hold a full emergency copy of the tables,
// required when splitting live entries later on.
func PageTableSize(regionCount int, maxEntries int, maxRegions int) uint64 {
	one := uint64(maxEntries) * PTE_SIZE
	n := uint64(max(regionCount, maxRegions, 0))

	size := tablesPerRegion*one*n + one
	size *= 2
	size += one * spareTables

	return size
}

// TableCount returns the number of translation tables needed to map the
// argument regions using the largest blocks their alignment allows, starting
// from a level 0 table.
func TableCount(regions []Region) int {
	l1 := make(map[uint64]bool)
	l2 := make(map[uint64]bool)
	l3 := make(map[uint64]bool)

	for _, r := range regions {
		addr := r.Virt
		end := r.Virt + r.Size

		for addr < end {
			l1[addr>>L0_SHIFT] = true

			switch {
			case addr%L1_BLOCK == 0 && end-addr >= L1_BLOCK:
				addr += L1_BLOCK
			case addr%L2_BLOCK == 0 && end-addr >= L2_BLOCK:
				l2[addr>>L1_SHIFT] = true
				addr += L2_BLOCK
			default:
				// pages up to the next 2 MiB boundary
				l2[addr>>L1_SHIFT] = true
				l3[addr>>L2_SHIFT] = true
				addr = min(end, (addr|(L2_BLOCK-1))+1)
			}
		}
	}

	return 1 + len(l1) + len(l2) + len(l3)
}
