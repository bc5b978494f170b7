// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmu implements the static memory map used to build the ARMv8-A
// translation tables of an early boot stage, along with its single runtime
// adjustment to the DRAM geometry and the sizing of the translation table
// memory pool.
package mmu

import (
	"errors"
	"fmt"

	"github.com/usbarmory/imx8ulp-boot/dram"
)

// PageSize represents the translation granule size in bytes
const PageSize = 4096 // 4 KiB

var (
	// ErrActive is returned on any attempt to modify an activated memory
	// map, translations might already be cached.
	ErrActive = errors.New("memory map is active")

	// ErrNotFound is returned when no region matches a physical address.
	ErrNotFound = errors.New("memory map entry not found")
)

// Region represents a memory map entry, an empty region (zero size) is a
// placeholder.
type Region struct {
	Virt  uint64
	Phys  uint64
	Size  uint64
	Attrs uint64
}

// End returns the region physical end address (exclusive).
func (r *Region) End() uint64 {
	return r.Phys + r.Size
}

// Empty returns whether the region is a placeholder.
func (r *Region) Empty() bool {
	return r.Size == 0
}

// Overlaps returns whether two non-empty regions share physical addresses.
func (r *Region) Overlaps(o *Region) bool {
	if r.Empty() || o.Empty() {
		return false
	}

	return r.Phys < o.End() && o.Phys < r.End()
}

// Table represents a memory map with a DRAM entry which can be split in
// banks, consuming the placeholder slots reserved right after it.
type Table struct {
	regions  []Region
	dramBase uint64
	entry    int
	attrs    uint64
	reserved int
	active   bool
}

// NewTable returns a memory map for the argument regions, identifying the
// DRAM entry through its physical base address. The DRAM entry must be
// followed by at least reservedSplitSlots placeholders.
func NewTable(regions []Region, dramBase uint64, reservedSplitSlots int) (t *Table, err error) {
	if reservedSplitSlots < 0 {
		return nil, fmt.Errorf("invalid split slot count %d", reservedSplitSlots)
	}

	t = &Table{
		regions:  append([]Region(nil), regions...),
		dramBase: dramBase,
		reserved: reservedSplitSlots,
	}

	if err = t.validate(); err != nil {
		return nil, err
	}

	if t.entry, err = t.Find(dramBase); err != nil {
		return nil, fmt.Errorf("missing DRAM entry, %w", err)
	}

	entry := t.entry
	t.attrs = t.regions[entry].Attrs

	if n := len(t.regions) - entry - 1; n < t.reserved {
		return nil, fmt.Errorf("DRAM entry %d has %d slots after it, %d required", entry, n, t.reserved)
	}

	for i := entry + 1; i <= entry+t.reserved; i++ {
		if !t.regions[i].Empty() {
			return nil, fmt.Errorf("memory map entry %d (%#x) is reserved for DRAM banks", i, t.regions[i].Phys)
		}
	}

	return
}

func (t *Table) validate() error {
	var n int

	for i := range t.regions {
		r := &t.regions[i]

		if r.Empty() {
			continue
		}

		if r.Phys%PageSize != 0 || r.Virt%PageSize != 0 || r.Size%PageSize != 0 {
			return fmt.Errorf("memory map entry %d (%#x) is not page aligned", i, r.Phys)
		}

		if r.End() < r.Phys {
			return fmt.Errorf("memory map entry %d (%#x) overflows", i, r.Phys)
		}

		if r.Phys == t.dramBase {
			n++
		}

		for j := i + 1; j < len(t.regions); j++ {
			if r.Overlaps(&t.regions[j]) {
				return fmt.Errorf("memory map entries %d (%#x) and %d (%#x) overlap", i, r.Phys, j, t.regions[j].Phys)
			}
		}
	}

	if n > 1 {
		return fmt.Errorf("%d DRAM entries at %#x", n, t.dramBase)
	}

	return nil
}

// Find returns the index of the non-empty region starting at the argument
// physical address.
func (t *Table) Find(phys uint64) (int, error) {
	for i := range t.regions {
		if !t.regions[i].Empty() && t.regions[i].Phys == phys {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w, %#x", ErrNotFound, phys)
}

// MustFind is like Find but panics if the region is not found, a table which
// lost its DRAM entry is corrupted beyond recovery.
func (t *Table) MustFind(phys uint64) int {
	i, err := t.Find(phys)

	if err != nil {
		panic(err)
	}

	return i
}

// DRAM returns the index of the DRAM entry, fixed at construction as the
// entry can be emptied when a carve-out starts at the DRAM base.
func (t *Table) DRAM() int {
	return t.entry
}

// SetDRAMSize updates the DRAM entry size with the probed DRAM size.
func (t *Table) SetDRAMSize(size uint64) (err error) {
	if t.active {
		return ErrActive
	}

	if size == 0 {
		return errors.New("invalid DRAM size")
	}

	entry := t.entry
	prev := t.regions[entry]

	t.regions[entry] = Region{
		Virt:  t.dramBase,
		Phys:  t.dramBase,
		Size:  size,
		Attrs: t.attrs,
	}

	if err = t.validate(); err != nil {
		t.regions[entry] = prev
	}

	return
}

// PatchDRAM replaces the DRAM entry with one entry per argument bank,
// occupying the DRAM entry slot and the reserved ones following it. Bank
// entries inherit the original DRAM attributes, empty banks and unused
// reserved slots are reset to placeholders.
//
// The memory map is left unchanged on error.
func (t *Table) PatchDRAM(banks []dram.Bank) (err error) {
	if t.active {
		return ErrActive
	}

	if len(banks) == 0 {
		return errors.New("no DRAM banks")
	}

	if len(banks) > t.reserved+1 {
		return fmt.Errorf("%d DRAM banks exceed %d memory map slots", len(banks), t.reserved+1)
	}

	if banks[0].Start != t.dramBase {
		return fmt.Errorf("first DRAM bank %#x does not match DRAM base %#x", banks[0].Start, t.dramBase)
	}

	entry := t.entry
	prev := append([]Region(nil), t.regions...)

	for i := 0; i <= t.reserved; i++ {
		var r Region

		if i < len(banks) && banks[i].Size != 0 {
			r = Region{
				Virt:  banks[i].Start,
				Phys:  banks[i].Start,
				Size:  banks[i].Size,
				Attrs: t.attrs,
			}
		}

		t.regions[entry+i] = r
	}

	if err = t.validate(); err != nil {
		t.regions = prev
	}

	return
}

// Regions returns a copy of the memory map entries.
func (t *Table) Regions() []Region {
	return append([]Region(nil), t.regions...)
}

// Len returns the number of memory map entries, placeholders included.
func (t *Table) Len() int {
	return len(t.regions)
}

// Active returns whether the memory map has been activated.
func (t *Table) Active() bool {
	return t.active
}

// Activate marks the memory map as in use by the translation hardware, from
// this point it can only be accessed through the returned read-only view.
func (t *Table) Activate() *View {
	t.active = true
	return &View{t: t}
}

// View represents a read-only accessor to an activated memory map.
type View struct {
	t *Table
}

// Len returns the number of memory map entries, placeholders included.
func (v *View) Len() int {
	return v.t.Len()
}

// At returns a copy of the memory map entry at index i.
func (v *View) At(i int) Region {
	return v.t.regions[i]
}

// Regions returns a copy of the memory map entries.
func (v *View) Regions() []Region {
	return v.t.Regions()
}

// Find returns the index of the non-empty region starting at the argument
// physical address.
func (v *View) Find(phys uint64) (int, error) {
	return v.t.Find(phys)
}
