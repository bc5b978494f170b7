// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dram

import (
	"sort"

	"github.com/u-root/u-root/pkg/boot/bzimage"
)

// MemoryMap converts the argument banks and carve-out to E820 entries
// suitable for loaders expecting a firmware memory map, ordered by address.
func MemoryMap(banks []Bank, c CarveOut) (m []bzimage.E820Entry) {
	for _, b := range banks {
		if b.Size == 0 {
			continue
		}

		m = append(m, bzimage.E820Entry{
			Addr:    b.Start,
			Size:    b.Size,
			MemType: bzimage.RAM,
		})
	}

	if c.Present() {
		m = append(m, bzimage.E820Entry{
			Addr:    c.Start,
			Size:    c.Size,
			MemType: bzimage.Reserved,
		})
	}

	sort.Slice(m, func(i, j int) bool {
		return m[i].Addr < m[j].Addr
	})

	return
}
