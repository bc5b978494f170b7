// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package dram

import (
	"errors"

	"github.com/usbarmory/tamago/dma"
)

// Reserve returns a memory region spanning the whole carve-out, entirely
// reserved so that no allocation from this boot stage can ever land in
// Secure World memory. The carve-out must not overlap the Go runtime memory.
func Reserve(c CarveOut) (r *dma.Region, err error) {
	if !c.Present() {
		return nil, errors.New("no carve-out")
	}

	if r, err = dma.NewRegion(uint(c.Start), int(c.Size), true); err != nil {
		return
	}

	r.Reserve(int(c.Size), 0)

	return
}
