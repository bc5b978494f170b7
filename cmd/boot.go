// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/usbarmory/imx8ulp-boot/fdt"
	"github.com/usbarmory/imx8ulp-boot/shell"
)

// Image represents the next stage ELF image.
var Image []byte

// DeviceTree represents the next stage flattened device tree, updated with
// the DRAM layout before being copied at DeviceTreeAddress.
var (
	DeviceTree        []byte
	DeviceTreeAddress uint64 = 0x83000000
)

// ImageOffset is the next stage container offset on SD/eMMC boot media.
var ImageOffset uint32 = 0x8000

// writeMemory copies a buffer to a physical address, it is only available
// on the target.
var writeMemory func(addr uint64, buf []byte) error

func init() {
	shell.Add(shell.Cmd{
		Name: "boot",
		Help: "boot next stage ELF image",
		Fn:   bootCmd,
	})

	shell.Add(shell.Cmd{
		Name: "fdt",
		Help: "show device tree memory layout fixups",
		Fn:   fdtCmd,
	})
}

// loadELF copies the argument ELF image loadable segments, each range is
// verified with check before being written, and returns its entry point.
func loadELF(img []byte, check func(uint64, uint64) error, write func(uint64, []byte) error) (entry uint64, err error) {
	f, err := elf.NewFile(bytes.NewReader(img))

	if err != nil {
		return 0, fmt.Errorf("invalid ELF image, %v", err)
	}

	for idx, prg := range f.Progs {
		if prg.Type != elf.PT_LOAD || prg.Memsz == 0 {
			continue
		}

		if prg.Filesz > prg.Memsz {
			return 0, fmt.Errorf("segment %d file size %#x exceeds memory size %#x", idx, prg.Filesz, prg.Memsz)
		}

		if err = check(prg.Paddr, prg.Memsz); err != nil {
			return 0, fmt.Errorf("segment %d, %w", idx, err)
		}

		b := make([]byte, prg.Memsz)

		if _, err = prg.ReadAt(b[0:prg.Filesz], 0); err != nil {
			return 0, fmt.Errorf("could not read segment %d, %v", idx, err)
		}

		if err = write(prg.Paddr, b); err != nil {
			return
		}
	}

	if err = check(f.Entry, 4); err != nil {
		return 0, fmt.Errorf("entry point, %w", err)
	}

	return f.Entry, nil
}

func deviceTree() (tree *dt.FDT, err error) {
	if len(DeviceTree) == 0 {
		return nil, errors.New("no device tree")
	}

	if tree, err = fdt.Load(DeviceTree); err != nil {
		return nil, fmt.Errorf("invalid device tree, %v", err)
	}

	err = fdt.Fixup(tree, Board.Banks, Board.CarveOut)

	return
}

func fdtCmd(_ *shell.Interface, _ []string) (string, error) {
	var res []string

	if Board == nil {
		return "", errNoBoard
	}

	tree, err := deviceTree()

	if err != nil {
		return "", err
	}

	for _, b := range Board.Banks {
		res = append(res, fmt.Sprintf("memory   %#010x-%#010x", b.Start, b.End()))
	}

	for _, e := range tree.ReserveEntries {
		res = append(res, fmt.Sprintf("reserved %#010x-%#010x", e.Address, e.Address+e.Size))
	}

	return strings.Join(res, "\n"), nil
}

func bootCmd(_ *shell.Interface, _ []string) (_ string, err error) {
	if Board == nil || Board.SoC == nil {
		return "", errNoBoard
	}

	if writeMemory == nil {
		return "", errors.New("unsupported")
	}

	if len(Image) == 0 {
		return "", errors.New("no image")
	}

	if len(DeviceTree) > 0 {
		var tree *dt.FDT
		var blob []byte

		if tree, err = deviceTree(); err != nil {
			return
		}

		if blob, err = fdt.Marshal(tree); err != nil {
			return "", fmt.Errorf("could not encode device tree, %v", err)
		}

		if err = Board.CheckLoad(DeviceTreeAddress, uint64(len(blob))); err != nil {
			return "", fmt.Errorf("invalid device tree address, %w", err)
		}

		log.Printf("loading device tree@%0.8x", DeviceTreeAddress)

		if err = writeMemory(DeviceTreeAddress, blob); err != nil {
			return
		}
	}

	entry, err := loadELF(Image, Board.CheckLoad, writeMemory)

	if err != nil {
		return "", fmt.Errorf("could not load image, %v", err)
	}

	if entry > 0xffffffff {
		return "", fmt.Errorf("entry point %#x not addressable by reset vector", entry)
	}

	log.Printf("starting image@%0.8x", entry)

	Board.SoC.DisconnectUSB()
	Board.SoC.Jump(uint32(entry))

	// the core is held in reset from this point on
	for {
	}
}
