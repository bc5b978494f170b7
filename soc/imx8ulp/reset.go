// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

import (
	"fmt"
)

// CMC1 registers
const (
	CMC1_SRIE = CMC1_BASE_ADDR + 0x8c
	CMC1_SRIF = CMC1_BASE_ADDR + 0x90
	CMC1_SRS  = CMC1_BASE_ADDR + 0x80
	CMC1_SSRS = CMC1_BASE_ADDR + 0x88
	CMC1_RPC  = CMC1_BASE_ADDR + 0x70

	// System Reset Status
	SRS_TAMPER    = 31
	SRS_SECURITY  = 30
	SRS_TZWDG     = 29
	SRS_JTAG_RST  = 28
	SRS_CORE1     = 16
	SRS_LOCKUP    = 15
	SRS_SW        = 14
	SRS_WDG       = 13
	SRS_PIN_RESET = 8
	SRS_WARM      = 4
	SRS_HVD       = 3
	SRS_LVD       = 2
	SRS_POR       = 1
	SRS_WUP       = 0
)

// ResetCause returns the cause of the last reset.
func (hw *SoC) ResetCause() string {
	srs := hw.Regs.Read(CMC1_SRS)
	return resetCause(srs)
}

func resetCause(srs uint32) string {
	cause := srs & (1<<SRS_POR | 1<<SRS_WUP | 1<<SRS_WARM)

	switch cause {
	case 1 << SRS_POR:
		return "POR"
	case 1 << SRS_WUP:
		return "WUP"
	case 1 << SRS_WARM:
		switch srs & (1<<SRS_WDG | 1<<SRS_SW | 1<<SRS_JTAG_RST) {
		case 1 << SRS_WDG:
			return "WARM-WDG"
		case 1 << SRS_SW:
			return "WARM-SW"
		case 1 << SRS_JTAG_RST:
			return "WARM-JTAG"
		default:
			return "WARM-UNKN"
		}
	}

	return fmt.Sprintf("UNKN-%X", srs)
}
