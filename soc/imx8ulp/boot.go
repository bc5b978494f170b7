// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

import (
	"errors"
	"fmt"

	"github.com/usbarmory/tamago/bits"
)

// ROM API queries
const (
	QUERY_ROM_VER = 1
	QUERY_BT_DEV  = 2
)

// ROM API boot device types
const (
	BT_DEV_TYPE_SD         = 1
	BT_DEV_TYPE_MMC        = 2
	BT_DEV_TYPE_NAND       = 3
	BT_DEV_TYPE_FLEXSPINOR = 4
	BT_DEV_TYPE_USB        = 0xe
)

// Boot configuration register
const (
	BT0CFG = SIM_SEC_BASE_ADDR + 0x24

	BT0CFG_LPBOOT   = 0
	BT0CFG_DUALBOOT = 1
)

// ROM represents the boot ROM API.
type ROM interface {
	QueryBootInfo(query uint32) (uint32, error)
}

// EMMCBootPartition is implemented by boot ROM APIs which can report
// whether the eMMC boot partitions are enabled.
type EMMCBootPartition interface {
	EMMCBootPartitionEnabled() bool
}

// Device represents a boot device.
type Device int

// Boot devices
const (
	SD1_BOOT Device = iota
	SD2_BOOT
	SD3_BOOT
	MMC1_BOOT
	MMC2_BOOT
	MMC3_BOOT
	NAND_BOOT
	QSPI_BOOT
	USB_BOOT
	USB2_BOOT
)

func (d Device) String() string {
	switch {
	case d >= SD1_BOOT && d <= SD3_BOOT:
		return fmt.Sprintf("SD%d", d-SD1_BOOT+1)
	case d >= MMC1_BOOT && d <= MMC3_BOOT:
		return fmt.Sprintf("MMC%d", d-MMC1_BOOT+1)
	case d == NAND_BOOT:
		return "NAND"
	case d == QSPI_BOOT:
		return "QSPI"
	case d == USB_BOOT:
		return "USB"
	case d == USB2_BOOT:
		return "USB2"
	}

	return fmt.Sprintf("unknown (%d)", int(d))
}

// Mode represents the boot mode.
type Mode int

// Boot modes
const (
	SINGLE_BOOT Mode = iota
	DUAL_BOOT
	LOW_POWER_BOOT
)

func (m Mode) String() string {
	switch m {
	case LOW_POWER_BOOT:
		return "Low power boot"
	case DUAL_BOOT:
		return "Dual boot"
	default:
		return "Single boot"
	}
}

// BootInfo returns the boot device type and instance as reported by the boot
// ROM.
func (hw *SoC) BootInfo() (devType uint32, instance uint32, err error) {
	if hw.ROM == nil {
		return 0, 0, errors.New("boot ROM API unavailable")
	}

	boot, err := hw.ROM.QueryBootInfo(QUERY_BT_DEV)

	if err != nil {
		return 0, 0, fmt.Errorf("ROMAPI: failure at query_boot_info, %v", err)
	}

	devType = bits.Get(&boot, 16, 0xffff)
	instance = bits.Get(&boot, 8, 0xff)

	return
}

// BootDevice returns the device the boot ROM loaded this stage from.
func (hw *SoC) BootDevice() (Device, error) {
	devType, instance, err := hw.BootInfo()

	if err != nil {
		return -1, err
	}

	switch devType {
	case BT_DEV_TYPE_SD:
		return SD1_BOOT + Device(instance), nil
	case BT_DEV_TYPE_MMC:
		return MMC1_BOOT + Device(instance), nil
	case BT_DEV_TYPE_NAND:
		return NAND_BOOT, nil
	case BT_DEV_TYPE_FLEXSPINOR:
		return QSPI_BOOT, nil
	case BT_DEV_TYPE_USB:
		return USB_BOOT + Device(instance), nil
	}

	return SD1_BOOT, nil
}

// IsUSBBoot returns whether this stage has been loaded over USB serial
// download.
func (hw *SoC) IsUSBBoot() bool {
	d, err := hw.BootDevice()
	return err == nil && (d == USB_BOOT || d == USB2_BOOT)
}

// USBPort returns the USB controller index used for serial download.
func (hw *SoC) USBPort() int {
	if d, _ := hw.BootDevice(); d == USB2_BOOT {
		return 1
	}

	return 0
}

// DisconnectUSB stops the USB controller used for serial download, if any.
func (hw *SoC) DisconnectUSB() {
	d, err := hw.BootDevice()

	if err != nil {
		return
	}

	switch d {
	case USB_BOOT:
		hw.Regs.Write(USBOTG0_RBASE+0x140, 0)
	case USB2_BOOT:
		hw.Regs.Write(USBOTG1_RBASE+0x140, 0)
	}
}

// BootImageOffset returns the next stage image offset on the boot device.
//
// The boot ROM reports eMMC boot partition images at the user area offset,
// while they are found at its start.
func (hw *SoC) BootImageOffset(offset uint32) uint32 {
	devType, _, err := hw.BootInfo()

	if err != nil || devType != BT_DEV_TYPE_MMC {
		return offset
	}

	if emmc, ok := hw.ROM.(EMMCBootPartition); ok && emmc.EMMCBootPartitionEnabled() {
		return 0
	}

	return offset
}

// BootMode returns the boot mode selected by the boot configuration pins.
func (hw *SoC) BootMode() Mode {
	cfg := hw.Regs.Read(BT0CFG)

	switch {
	case bits.IsSet(&cfg, BT0CFG_LPBOOT):
		return LOW_POWER_BOOT
	case bits.IsSet(&cfg, BT0CFG_DUALBOOT):
		return DUAL_BOOT
	default:
		return SINGLE_BOOT
	}
}
