// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

import (
	"bytes"
	"fmt"
)

// CPU revision
const (
	MXC_CPU_IMX8ULP = 0xa1
	CHIP_REV_1_0    = 0x10
)

// Rev returns the CPU type and silicon revision.
func (hw *SoC) Rev() uint32 {
	return MXC_CPU_IMX8ULP<<12 | CHIP_REV_1_0
}

// Info returns the processor identification, reset cause and boot mode.
func (hw *SoC) Info() string {
	var buf bytes.Buffer

	rev := hw.Rev()

	fmt.Fprintf(&buf, "CPU:   Freescale i.MX8ULP rev%d.%d at %d MHz\n", (rev&0xf0)>>4, rev&0xf, hw.ARMFreq/1000000)
	fmt.Fprintf(&buf, "Reset cause: %s\n", hw.ResetCause())
	fmt.Fprintf(&buf, "Boot mode: %s\n", hw.BootMode())

	return buf.String()
}
