// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

import (
	"errors"
	"fmt"
	"log"

	"github.com/usbarmory/tamago/bits"
)

// Resource domain controllers
const (
	RDC_TRDC = iota
	RDC_XRDC
)

// DBD_EN fuse (bank 8, word 1)
const (
	FUSE_DBD_BANK = 8
	FUSE_DBD_WORD = 1
	FUSE_DBD_EN   = 14
)

const (
	SRIE_WDOG_AD       = 13
	RPC_AD_PERIPH_FLAG = 4
)

// LPAV domain assignment registers
const (
	SIM_SEC_SYSCTRL0      = SIM_SEC_BASE_ADDR + 0x44
	SIM_SEC_LPAV_MASTER   = SIM_SEC_BASE_ADDR + 0x4c
	SIM_SEC_LPAV_SLAVE    = SIM_SEC_BASE_ADDR + 0x50
	SIM_SEC_LPAV_DMA2_CH  = SIM_SEC_BASE_ADDR + 0x54
	SIM_SEC_LPAV_DMA2_REQ = SIM_SEC_BASE_ADDR + 0x58

	SYSCTRL0_LPAV_APD = 7
)

// LPAV NIC
const (
	LPAV_NIC_DCNANO_READ_QOS = 0x2e447100
	DCNANO_READ_QOS          = 0xf
)

// UID fuses (bank 1, words 0-3)
const (
	FUSE_UID_BANK  = 1
	FUSE_UID_WORDS = 4
)

// Fuses represents the OTP fuse reader.
type Fuses interface {
	Read(bank int, word int) (uint32, error)
}

// Isolation represents the resource domain controllers (TRDC/XRDC) access
// grant programming, performed by the security firmware interface.
type Isolation interface {
	// Release requests ownership of a resource domain controller.
	Release(rdc int) error
	// Grant configures Cortex-A35 access to peripherals and memories for
	// the argument boot mode.
	Grant(rdc int, mode Mode) error
	// ResetWatchdog toggles the WDOG_AD peripheral reset.
	ResetWatchdog() error
}

// Init performs the early initialization of the application domain: reset
// interrupt handling, watchdog disabling and resource domain configuration.
//
// When loaded by an earlier boot stage only the core 0 reset vector is
// restored to the boot ROM.
func (hw *SoC) Init() (err error) {
	if hw.SecondStage {
		hw.RestoreResetVector()
		return
	}

	// enable System Reset Interrupt using WDOG_AD
	hw.set(CMC1_SRIE, SRIE_WDOG_AD)
	// clear AD_PERIPH power switch domain out of reset interrupt flag
	hw.set(CMC1_RPC, RPC_AD_PERIPH_FLAG)

	if hw.isSet(CMC1_SRIF, SRIE_WDOG_AD) {
		// write 1 to clear
		hw.set(CMC1_SRIF, SRIE_WDOG_AD)

		if hw.Isolation != nil {
			if err = hw.Isolation.ResetWatchdog(); err != nil {
				return fmt.Errorf("could not reset WDOG_AD, %v", err)
			}
		}
	}

	hw.DisableWatchdog(WDG3_RBASE)

	if hw.Isolation == nil {
		return
	}

	// assume DBD_EN is set unless fuses state otherwise
	rdc := true

	if hw.Fuses != nil {
		if val, err := hw.Fuses.Read(FUSE_DBD_BANK, FUSE_DBD_WORD); err == nil {
			rdc = bits.IsSet(&val, FUSE_DBD_EN)
		} else {
			log.Printf("could not read DBD_EN fuse, %v", err)
		}
	}

	mode := hw.BootMode()

	if mode == SINGLE_BOOT {
		if rdc {
			if err = hw.Isolation.Release(RDC_TRDC); err != nil {
				return fmt.Errorf("could not release TRDC, %v", err)
			}
		}

		if err = hw.Isolation.Grant(RDC_TRDC, mode); err != nil {
			return fmt.Errorf("could not configure TRDC, %v", err)
		}

		hw.configureLPAV()
		hw.SetLPAVQoS()
	}

	if rdc {
		if err = hw.Isolation.Release(RDC_XRDC); err != nil {
			return fmt.Errorf("could not release XRDC, %v", err)
		}
	}

	if err = hw.Isolation.Grant(RDC_XRDC, mode); err != nil {
		return fmt.Errorf("could not configure XRDC, %v", err)
	}

	return
}

// configureLPAV assigns the LPAV subsystem (PXP, GPU 2D/3D, DCNano,
// MIPI-DSI, EPDC, HiFi4) and its DMA channels to the application domain.
func (hw *SoC) configureLPAV() {
	hw.set(SIM_SEC_SYSCTRL0, SYSCTRL0_LPAV_APD)

	master := hw.Regs.Read(SIM_SEC_LPAV_MASTER)
	hw.Regs.Write(SIM_SEC_LPAV_MASTER, master|0x7f)

	hw.Regs.Write(SIM_SEC_LPAV_SLAVE, 0x1f)
	hw.Regs.Write(SIM_SEC_LPAV_DMA2_CH, 0xffffffff)
	hw.Regs.Write(SIM_SEC_LPAV_DMA2_REQ, 0x003fffff)
}

// SetLPAVQoS sets the DCNano read QoS on the LPAV NIC.
func (hw *SoC) SetLPAVQoS() {
	hw.Regs.Write(LPAV_NIC_DCNANO_READ_QOS, DCNANO_READ_QOS)
}

// UID returns the 128-bit unique chip identifier.
func (hw *SoC) UID() (uid [FUSE_UID_WORDS]uint32, err error) {
	if hw.Fuses == nil {
		return uid, errors.New("fuse access unavailable")
	}

	for i := range uid {
		if uid[i], err = hw.Fuses.Read(FUSE_UID_BANK, i); err != nil {
			return uid, fmt.Errorf("could not read UID fuse %d, %v", i, err)
		}
	}

	return
}

// SerialNumber returns the board serial number derived from the UID.
func (hw *SoC) SerialNumber() (uint64, error) {
	uid, err := hw.UID()

	if err != nil {
		return 0, err
	}

	return uint64(uid[3])<<32 | uint64(uid[0]), nil
}
