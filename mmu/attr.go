// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmu

import (
	"strings"
)

// MAIR attribute indexes
const (
	MT_DEVICE_NGNRNE = iota
	MT_DEVICE_NGNRE
	MT_DEVICE_GRE
	MT_NORMAL_NC
	MT_NORMAL
)

// VMSAv8-64 block descriptor attributes
const (
	PTE_BLOCK_NON_SHARE   = 0 << 8
	PTE_BLOCK_OUTER_SHARE = 2 << 8
	PTE_BLOCK_INNER_SHARE = 3 << 8
	PTE_BLOCK_AF          = 1 << 10
	PTE_BLOCK_NG          = 1 << 11
	PTE_BLOCK_PXN         = 1 << 53
	PTE_BLOCK_UXN         = 1 << 54

	attrIndxMask = 0x7 << 2
	shareMask    = 0x3 << 8
)

// MemType returns the block descriptor AttrIndx field for the argument MAIR
// index.
func MemType(t uint64) uint64 {
	return (t << 2) & attrIndxMask
}

// Describe returns a short human readable description of block descriptor
// attributes.
func Describe(attrs uint64) string {
	var s []string

	switch (attrs & attrIndxMask) >> 2 {
	case MT_DEVICE_NGNRNE:
		s = append(s, "device-nGnRnE")
	case MT_DEVICE_NGNRE:
		s = append(s, "device-nGnRE")
	case MT_DEVICE_GRE:
		s = append(s, "device-GRE")
	case MT_NORMAL_NC:
		s = append(s, "normal-nc")
	case MT_NORMAL:
		s = append(s, "normal")
	default:
		s = append(s, "unknown")
	}

	switch attrs & shareMask {
	case PTE_BLOCK_OUTER_SHARE:
		s = append(s, "outer")
	case PTE_BLOCK_INNER_SHARE:
		s = append(s, "inner")
	default:
		s = append(s, "non-shared")
	}

	if attrs&PTE_BLOCK_PXN != 0 {
		s = append(s, "pxn")
	}

	if attrs&PTE_BLOCK_UXN != 0 {
		s = append(s, "uxn")
	}

	return strings.Join(s, " ")
}
