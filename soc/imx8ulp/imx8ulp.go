// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package imx8ulp provides support for the early bring-up of the NXP
// i.MX8ULP application processor (Cortex-A35 domain) from a first stage boot
// loader.
//
// This package is only meant to be used with `GOOS=tamago` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package imx8ulp

import (
	"github.com/usbarmory/tamago/bits"
)

// Peripheral registers
const (
	// System Integration Module (secure)
	SIM_SEC_BASE_ADDR = 0x2802b000

	// Core Mode Controller (application domain)
	CMC1_BASE_ADDR = 0x29240000

	// System Integration Module (application domain)
	SIM1_BASE_ADDR = 0x29290000

	// Watchdog Timer 3
	WDG3_RBASE = 0x292a0000

	// USB OTG controllers
	USBOTG0_RBASE = 0x29900000
	USBOTG1_RBASE = 0x29920000
)

// Memory map
const (
	// External DDR
	PHYS_SDRAM      = 0x80000000
	PHYS_SDRAM_SIZE = 0x80000000 // 2GB

	// DRAM banks reported to the next boot stage
	NR_DRAM_BANKS = 2

	// Translation tables are simplified to enhance boot speed
	MAX_PTE_ENTRIES     = 512
	MAX_MEM_MAP_REGIONS = 16
)

// Registers represents the 32-bit memory mapped register space.
type Registers interface {
	Read(addr uint32) uint32
	Write(addr uint32, val uint32)
}

// SoC represents the i.MX8ULP application processor.
type SoC struct {
	// Regs is the register space accessor
	Regs Registers

	// ROM is the boot ROM API
	ROM ROM

	// Fuses is the OTP fuse reader
	Fuses Fuses

	// Isolation configures resource domain controllers, nil to skip
	Isolation Isolation

	// ARMFreq is the Cortex-A35 clock frequency in Hz
	ARMFreq uint32

	// SecondStage is set when loaded by an earlier boot stage rather than
	// the boot ROM
	SecondStage bool
}

func (hw *SoC) set(addr uint32, pos int) {
	val := hw.Regs.Read(addr)
	bits.Set(&val, pos)
	hw.Regs.Write(addr, val)
}

func (hw *SoC) clear(addr uint32, pos int) {
	val := hw.Regs.Read(addr)
	bits.Clear(&val, pos)
	hw.Regs.Write(addr, val)
}

func (hw *SoC) isSet(addr uint32, pos int) bool {
	val := hw.Regs.Read(addr)
	return bits.IsSet(&val, pos)
}

// wait spins until a register bit is set, there is no timeout as a stuck
// acknowledgement can only be recovered by a watchdog reset.
func (hw *SoC) wait(addr uint32, pos int) {
	for !hw.isSet(addr, pos) {
	}
}
