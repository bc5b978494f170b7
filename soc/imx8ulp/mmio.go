// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package imx8ulp

import (
	"sync/atomic"
	"unsafe"
)

// MMIO represents direct access to the physical register space.
type MMIO struct{}

// Read returns the value of a 32-bit register.
func (MMIO) Read(addr uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

// Write sets the value of a 32-bit register.
func (MMIO) Write(addr uint32, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), val)
}
