// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

import (
	"github.com/usbarmory/imx8ulp-boot/mmu"
)

// Placeholders following the DRAM entry, to split it in banks when a Secure
// World OS is present.
const DRAM_SPLIT_SLOTS = NR_DRAM_BANKS - 1

const (
	normal = mmu.MT_NORMAL<<2 | mmu.PTE_BLOCK_OUTER_SHARE
	device = mmu.MT_DEVICE_NGNRNE<<2 | mmu.PTE_BLOCK_NON_SHARE | mmu.PTE_BLOCK_PXN | mmu.PTE_BLOCK_UXN
	sram   = normal | mmu.PTE_BLOCK_PXN | mmu.PTE_BLOCK_UXN
)

// DRAMShareability is the DRAM shareability domain, Trusty OS requires inner
// shareable DRAM.
var DRAMShareability uint64 = mmu.PTE_BLOCK_OUTER_SHARE

// MemoryMap returns the static memory map of the Cortex-A35 domain.
func MemoryMap() []mmu.Region {
	return []mmu.Region{
		// ROM
		{Virt: 0x00000000, Phys: 0x00000000, Size: 0x00040000, Attrs: normal},
		// FlexSPI0
		{Virt: 0x04000000, Phys: 0x04000000, Size: 0x08000000, Attrs: device},
		// SSRAM (2MB aligned)
		{Virt: 0x1fe00000, Phys: 0x1fe00000, Size: 0x00400000, Attrs: sram},
		// SRAM1 (2MB aligned)
		{Virt: 0x21000000, Phys: 0x21000000, Size: 0x00200000, Attrs: sram},
		// SRAM0 (2MB aligned)
		{Virt: 0x22000000, Phys: 0x22000000, Size: 0x00200000, Attrs: sram},
		// Peripherals
		{Virt: 0x27000000, Phys: 0x27000000, Size: 0x03000000, Attrs: device},
		// Peripherals
		{Virt: 0x2d000000, Phys: 0x2d000000, Size: 0x01600000, Attrs: device},
		// FlexSPI1-2
		{Virt: 0x40000000, Phys: 0x40000000, Size: 0x40000000, Attrs: device},
		// DRAM1
		{
			Virt:  PHYS_SDRAM,
			Phys:  PHYS_SDRAM,
			Size:  PHYS_SDRAM_SIZE,
			Attrs: mmu.MemType(mmu.MT_NORMAL) | DRAMShareability,
		},
		// DRAM bank split
		{},
	}
}
