// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dram implements partitioning of external DDR into the banks visible
// to the Normal World, excluding an optional carve-out reserved by a
// co-resident Secure World OS (e.g. OP-TEE).
package dram

import (
	"errors"
	"fmt"
)

var (
	// ErrBankCapacity is returned when the DRAM layout requires more banks
	// than configured, no memory above the carve-out is silently dropped.
	ErrBankCapacity = errors.New("DRAM bank count is not enough")

	// ErrCarveOut is returned when the carve-out does not lie within DRAM.
	ErrCarveOut = errors.New("invalid carve-out")

	// ErrSecure is returned on attempts to place data in the carve-out.
	ErrSecure = errors.New("range overlaps Secure World memory")
)

// Bank represents a contiguous DRAM range usable by the Normal World.
type Bank struct {
	Start uint64
	Size  uint64
}

// End returns the bank end address (exclusive).
func (b Bank) End() uint64 {
	return b.Start + b.Size
}

// CarveOut represents the DRAM range reserved by a Secure World OS, as
// reported by the secure firmware loading stage.
type CarveOut struct {
	Start uint64
	Size  uint64
}

// NewCarveOut returns the carve-out described by the two pointer sized values
// left by the secure firmware loader, a zero size denotes its absence.
func NewCarveOut(ptr [2]uintptr) CarveOut {
	return CarveOut{
		Start: uint64(ptr[0]),
		Size:  uint64(ptr[1]),
	}
}

// Present returns whether a Secure World OS claimed part of DRAM.
func (c CarveOut) Present() bool {
	return c.Size != 0
}

// End returns the carve-out end address (exclusive).
func (c CarveOut) End() uint64 {
	return c.Start + c.Size
}

// Overlaps returns whether the carve-out intersects the argument range.
func (c CarveOut) Overlaps(addr uint64, size uint64) bool {
	if !c.Present() || size == 0 {
		return false
	}

	return addr < c.End() && c.Start < addr+size
}

// Validate checks that the carve-out lies within the DRAM range starting at
// base, it may start at base itself.
func (c CarveOut) Validate(base uint64, total uint64) error {
	if !c.Present() {
		return nil
	}

	if c.End() < c.Start || base+total < base {
		return fmt.Errorf("%w, range overflow", ErrCarveOut)
	}

	if c.Start < base {
		return fmt.Errorf("%w, start %#x below DRAM base %#x", ErrCarveOut, c.Start, base)
	}

	if c.End() > base+total {
		return fmt.Errorf("%w, end %#x beyond DRAM end %#x", ErrCarveOut, c.End(), base+total)
	}

	return nil
}

// Partition returns the DRAM banks visible to the Normal World for a DRAM of
// total bytes starting at base, excluding the carve-out if present.
//
// Memory below the carve-out is always the first bank, which is empty when
// the carve-out starts at base, memory above it requires a second one. An error, and no banks, are returned if maxBanks is
// insufficient to describe the layout.
func Partition(base uint64, total uint64, c CarveOut, maxBanks int) (banks []Bank, err error) {
	if maxBanks < 1 {
		return nil, fmt.Errorf("%w, %d", ErrBankCapacity, maxBanks)
	}

	if !c.Present() {
		return []Bank{{Start: base, Size: total}}, nil
	}

	if err = c.Validate(base, total); err != nil {
		return nil, err
	}

	banks = append(banks, Bank{
		Start: base,
		Size:  c.Start - base,
	})

	if end := base + total; c.End() < end {
		if len(banks) >= maxBanks {
			return nil, fmt.Errorf("%w (%d), memory %#x-%#x above carve-out", ErrBankCapacity, maxBanks, c.End(), end)
		}

		banks = append(banks, Bank{
			Start: c.End(),
			Size:  end - c.End(),
		})
	}

	return
}

// EffectiveMemSize returns the size of memory which can be assumed contiguous
// and free, the first bank when a carve-out is present or ramSize otherwise.
func EffectiveMemSize(base uint64, ramSize uint64, c CarveOut) uint64 {
	if c.Present() {
		return c.Start - base
	}

	return ramSize
}
