// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

// WDOG registers
const (
	WDOG_CS    = 0x00
	WDOG_CNT   = 0x04
	WDOG_TOVAL = 0x08
	WDOG_WIN   = 0x0c

	CS_UPDATE = 5
	CS_EN     = 7
	CS_RCS    = 10
	CS_ULK    = 11

	// refresh and unlock sequences
	UNLOCK_WORD0  = 0xc520
	UNLOCK_WORD1  = 0xd928
	REFRESH_WORD0 = 0xa602
	REFRESH_WORD1 = 0xb480

	// disabled, updates allowed, 32-bit commands
	csDisabled   = 0x120
	defaultTOVAL = 0x400
)

// DisableWatchdog disables the watchdog left running by the boot ROM.
func (hw *SoC) DisableWatchdog(base uint32) {
	if !hw.isSet(base+WDOG_CS, CS_EN) {
		return
	}

	hw.Regs.Write(base+WDOG_CNT, REFRESH_WORD0)
	hw.Regs.Write(base+WDOG_CNT, REFRESH_WORD1)

	if !hw.isSet(base+WDOG_CS, CS_ULK) {
		hw.Regs.Write(base+WDOG_CNT, UNLOCK_WORD0)
		hw.Regs.Write(base+WDOG_CNT, UNLOCK_WORD1)

		hw.wait(base+WDOG_CS, CS_ULK)
	}

	hw.Regs.Write(base+WDOG_WIN, 0)
	hw.Regs.Write(base+WDOG_TOVAL, defaultTOVAL)
	hw.Regs.Write(base+WDOG_CS, csDisabled)

	// wait for the new configuration to take effect
	hw.wait(base+WDOG_CS, CS_RCS)
}
