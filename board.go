// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm64

package main

import (
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/imx8ulp-boot/soc/imx8ulp"
)

// LPUART registers
const (
	LPUART5_BASE = 0x293a0000

	LPUART_STAT = 0x14
	STAT_RDRF   = 21
	STAT_TDRE   = 23

	LPUART_DATA = 0x1c
)

// UART represents the debug console serial port, configured by the previous
// boot stage.
type UART struct {
	Base uint32
}

// UART5 is the debug console.
var UART5 = &UART{Base: LPUART5_BASE}

var mmio = imx8ulp.MMIO{}

func (u *UART) stat(pos int) bool {
	stat := mmio.Read(u.Base + LPUART_STAT)
	return bits.IsSet(&stat, pos)
}

// Tx transmits a single character.
func (u *UART) Tx(c byte) {
	for !u.stat(STAT_TDRE) {
	}

	mmio.Write(u.Base+LPUART_DATA, uint32(c))
}

// Rx receives a single character, if available.
func (u *UART) Rx() (c byte, valid bool) {
	if !u.stat(STAT_RDRF) {
		return
	}

	return byte(mmio.Read(u.Base + LPUART_DATA)), true
}

// Write transmits the argument buffer.
func (u *UART) Write(buf []byte) (n int, _ error) {
	for n = 0; n < len(buf); n++ {
		u.Tx(buf[n])
	}

	return
}

// Read blocks until at least one character is received.
func (u *UART) Read(buf []byte) (n int, _ error) {
	for n < len(buf) {
		c, valid := u.Rx()

		if !valid {
			if n > 0 {
				break
			}

			runtime.Gosched()
			continue
		}

		buf[n] = c
		n++
	}

	return
}

//go:linkname ramStart runtime.ramStart
var ramStart uint64 = 0x90000000

//go:linkname ramSize runtime.ramSize
var ramSize uint64 = 0x10000000 // 256MB

// defined in timer_arm64.s
func readCounter() uint64
func readFrequency() uint64

var timerMultiplier float64

//go:linkname nanotime runtime/goos.Nanotime
func nanotime() int64 {
	return int64(float64(readCounter()) * timerMultiplier)
}

//go:linkname printk runtime.printk
func printk(c byte) {
	UART5.Tx(c)

	if c == 0x0a { // LF
		UART5.Tx(0x0d) // CR
	}
}

// Init takes care of the lower level initialization triggered early in runtime
// setup.
//
//go:linkname Init runtime/goos.Hwinit1
func Init() {
	timerMultiplier = 1e9 / float64(readFrequency())
}
