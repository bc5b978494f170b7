// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/u-root/u-root/pkg/boot/bzimage"

	"github.com/usbarmory/imx8ulp-boot/dram"
	"github.com/usbarmory/imx8ulp-boot/mmu"
	"github.com/usbarmory/imx8ulp-boot/shell"
)

var errNoBoard = errors.New("platform not initialized")

func init() {
	shell.Add(shell.Cmd{
		Name: "memmap",
		Help: "show memory map",
		Fn:   memmapCmd,
	})

	shell.Add(shell.Cmd{
		Name: "dram",
		Help: "show DRAM banks and firmware memory map",
		Fn:   dramCmd,
	})

	shell.Add(shell.Cmd{
		Name: "pgtable",
		Help: "show translation table memory usage",
		Fn:   pgtableCmd,
	})
}

func memmapCmd(_ *shell.Interface, _ []string) (string, error) {
	var buf bytes.Buffer

	if Board == nil {
		return "", errNoBoard
	}

	regions := Board.Regions()
	state := "inactive"

	if v := Board.MemoryMap(); v != nil {
		regions = v.Regions()
		state = "active"
	}

	fmt.Fprintf(&buf, "Entry Virtual          Physical         Size             Attributes\n")

	for i, r := range regions {
		if r.Empty() {
			fmt.Fprintf(&buf, "%02d    (unused)\n", i)
			continue
		}

		fmt.Fprintf(&buf, "%02d    %016x %016x %016x %s\n", i, r.Virt, r.Phys, r.Size, mmu.Describe(r.Attrs))
	}

	fmt.Fprintf(&buf, "\n%d entries (%s)", len(regions), state)

	return buf.String(), nil
}

func dramCmd(_ *shell.Interface, _ []string) (string, error) {
	var buf bytes.Buffer

	if Board == nil {
		return "", errNoBoard
	}

	for i, b := range Board.Banks {
		fmt.Fprintf(&buf, "Bank %d ......: %#010x-%#010x (%d MiB)\n", i, b.Start, b.End(), b.Size>>20)
	}

	if c := Board.CarveOut; c.Present() {
		fmt.Fprintf(&buf, "Secure ......: %#010x-%#010x (%d MiB)\n", c.Start, c.End(), c.Size>>20)
	}

	fmt.Fprintf(&buf, "RAM size ....: %#x\n", Board.RAMSize)
	fmt.Fprintf(&buf, "Effective ...: %#x\n", Board.EffectiveMemSize())

	fmt.Fprintf(&buf, "\nType Start            End              Size\n")

	for _, e := range dram.MemoryMap(Board.Banks, Board.CarveOut) {
		fmt.Fprintf(&buf, "%-4s %016x %016x %016x\n", memType(e), e.Addr, e.Addr+e.Size-1, e.Size)
	}

	return buf.String(), nil
}

func memType(e bzimage.E820Entry) string {
	switch e.MemType {
	case bzimage.RAM:
		return "RAM"
	case bzimage.Reserved:
		return "RSV"
	default:
		return fmt.Sprintf("%d", e.MemType)
	}
}

func pgtableCmd(_ *shell.Interface, _ []string) (string, error) {
	var buf bytes.Buffer

	if Board == nil {
		return "", errNoBoard
	}

	regions := Board.Regions()

	if v := Board.MemoryMap(); v != nil {
		regions = v.Regions()
	}

	size := Board.PageTableSize()
	tables := mmu.TableCount(regions)

	fmt.Fprintf(&buf, "Reserved ....: %#x (%d KiB)\n", size, size>>10)
	fmt.Fprintf(&buf, "Required ....: %d tables (%d KiB)\n", tables, tables*mmu.PageSize>>10)

	return buf.String(), nil
}
