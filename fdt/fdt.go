// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fdt implements the device tree fixups required to describe the
// DRAM layout, and an eventual Secure World OS, to the Normal World OS.
package fdt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/usbarmory/imx8ulp-boot/dram"
)

// Secure World OS bindings
const (
	OPTEE_COMPATIBLE = "linaro,optee-tz"
	OPTEE_METHOD     = "smc"
)

// Load parses a flattened device tree blob.
func Load(buf []byte) (*dt.FDT, error) {
	return dt.ReadFDT(bytes.NewReader(buf))
}

// Marshal returns the flattened device tree blob for the argument tree.
func Marshal(tree *dt.FDT) ([]byte, error) {
	var buf bytes.Buffer

	if _, err := tree.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Fixup updates the argument tree memory node with the DRAM banks and, when
// a carve-out is present, adds the Secure World OS firmware node along with
// its no-map reserved memory node and reservation entry. Empty banks are
// omitted.
func Fixup(tree *dt.FDT, banks []dram.Bank, c dram.CarveOut) (err error) {
	if tree == nil || tree.RootNode == nil {
		return errors.New("invalid device tree")
	}

	reg := Reg("reg", banks...)

	if len(reg.Value) == 0 {
		return errors.New("no DRAM banks")
	}

	root := tree.RootNode

	mem, ok := Child(root, "memory")

	if !ok {
		mem = dt.NewNode("memory")
		root.Children = append(root.Children, mem)
	}

	mem.Update(dt.PropertyString("device_type", "memory"))
	mem.Update(reg)

	if !c.Present() {
		return
	}

	fw, ok := root.LookupChildByName("firmware")

	if !ok {
		fw = dt.NewNode("firmware")
		root.Children = append(root.Children, fw)
	}

	if _, ok = fw.LookupChildByName("optee"); !ok {
		fw.Children = append(fw.Children, dt.NewNode("optee",
			dt.WithProperty(
				dt.PropertyString("compatible", OPTEE_COMPATIBLE),
				dt.PropertyString("method", OPTEE_METHOD),
			),
		))
	}

	rsv, ok := root.LookupChildByName("reserved-memory")

	if !ok {
		rsv = dt.NewNode("reserved-memory",
			dt.WithProperty(
				dt.PropertyU32("#address-cells", 2),
				dt.PropertyU32("#size-cells", 2),
				dt.Property{Name: "ranges"},
			),
		)
		root.Children = append(root.Children, rsv)
	}

	name := fmt.Sprintf("optee_core@%x", c.Start)

	if _, ok = rsv.LookupChildByName(name); !ok {
		rsv.Children = append(rsv.Children, dt.NewNode(name,
			dt.WithProperty(
				dt.PropertyRegion("reg", c.Start, c.Size),
				dt.Property{Name: "no-map"},
			),
		))
	}

	for _, e := range tree.ReserveEntries {
		if e.Address == c.Start && e.Size == c.Size {
			return
		}
	}

	tree.ReserveEntries = append(tree.ReserveEntries, dt.ReserveEntry{
		Address: c.Start,
		Size:    c.Size,
	})

	return
}

// Child returns the argument node child matching name, with or without unit
// address.
func Child(n *dt.Node, name string) (*dt.Node, bool) {
	i, ok := n.FindFirstMatchingChildIndex(func(c *dt.Node) bool {
		return c.Name == name || strings.HasPrefix(c.Name, name+"@")
	})

	if !ok {
		return nil, false
	}

	return n.Children[i], true
}

// Reg returns a property listing the argument non-empty banks with 2-cell
// addresses and sizes.
func Reg(name string, banks ...dram.Bank) (p dt.Property) {
	p.Name = name

	for _, b := range banks {
		if b.Size != 0 {
			p.Value = append(p.Value, dt.PropertyRegion(name, b.Start, b.Size).Value...)
		}
	}

	return
}
