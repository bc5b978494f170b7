// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm64

package main

import (
	"fmt"
	"log"
	"runtime"
	"strconv"

	"github.com/usbarmory/imx8ulp-boot/cmd"
	"github.com/usbarmory/imx8ulp-boot/dram"
	"github.com/usbarmory/imx8ulp-boot/platform"
	"github.com/usbarmory/imx8ulp-boot/shell"
	"github.com/usbarmory/imx8ulp-boot/soc/imx8ulp"
)

// Build information, set at link time.
var (
	Build    string
	Revision string
)

// Secure World OS carve-out, set at link time by the previous boot stage
// build (e.g. `-X main.TEEStart=0xa6000000 -X main.TEESize=0x2000000`).
var (
	TEEStart string
	TEESize  string
)

// A35 clock as configured by the previous boot stage
const ARM_FREQ = 800000000

func init() {
	log.SetFlags(0)
}

func carveOut() (c dram.CarveOut, err error) {
	var ptr [2]uintptr

	if len(TEEStart) == 0 {
		return
	}

	for i, s := range []string{TEEStart, TEESize} {
		v, err := strconv.ParseUint(s, 0, 64)

		if err != nil {
			return c, fmt.Errorf("invalid carve-out, %v", err)
		}

		ptr[i] = uintptr(v)
	}

	return dram.NewCarveOut(ptr), nil
}

func main() {
	log.Printf("%s/%s (%s) • %s %s", runtime.GOOS, runtime.GOARCH, runtime.Version(), Revision, Build)

	soc := &imx8ulp.SoC{
		Regs:    imx8ulp.MMIO{},
		ARMFreq: ARM_FREQ,
	}

	board, err := platform.New(platform.DefaultConfig(), imx8ulp.MemoryMap())

	if err != nil {
		log.Fatalf("could not initialize platform, %v", err)
	}

	if board.CarveOut, err = carveOut(); err != nil {
		log.Fatalf("could not initialize platform, %v", err)
	}

	board.SoC = soc
	// the region is never released, its reservation fails if the
	// carve-out overlaps the Go runtime memory
	board.Reserve = func(c dram.CarveOut) (err error) {
		_, err = dram.Reserve(c)
		return
	}

	if err = board.Init(); err != nil {
		log.Fatalf("could not initialize platform, %v", err)
	}

	log.Printf("dram effective size %#x, page tables %#x", board.EffectiveMemSize(), board.PageTableSize())

	cmd.Board = board

	console := &shell.Interface{
		Banner:     fmt.Sprintf("%s/%s (%s) • i.MX8ULP %s", runtime.GOOS, runtime.GOARCH, runtime.Version(), Revision),
		ReadWriter: UART5,
	}

	console.Start()

	runtime.Exit(0)
}
