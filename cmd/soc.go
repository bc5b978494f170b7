// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/usbarmory/imx8ulp-boot/shell"
)

func init() {
	shell.Add(shell.Cmd{
		Name: "info",
		Help: "device information",
		Fn:   infoCmd,
	})
}

func infoCmd(_ *shell.Interface, _ []string) (string, error) {
	var res bytes.Buffer

	if Board == nil {
		return "", errNoBoard
	}

	fmt.Fprintf(&res, "Runtime ......: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&res, "DRAM .........: %#08x-%#08x (%d MiB)\n", Board.PhysSDRAM, Board.PhysSDRAM+Board.RAMSize, Board.RAMSize>>20)

	if Board.SoC == nil {
		return res.String(), nil
	}

	if d, err := Board.SoC.BootDevice(); err == nil {
		fmt.Fprintf(&res, "Boot device ..: %s\n", d)
	}

	if Board.SoC.IsUSBBoot() {
		fmt.Fprintf(&res, "USB port .....: %d\n", Board.SoC.USBPort())
	} else {
		fmt.Fprintf(&res, "Image offset .: %#x\n", Board.SoC.BootImageOffset(ImageOffset))
	}

	if sn, err := Board.SoC.SerialNumber(); err == nil {
		fmt.Fprintf(&res, "Serial .......: %016x\n", sn)
	}

	res.WriteString(Board.SoC.Info())

	return res.String(), nil
}
