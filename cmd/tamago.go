// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/imx8ulp-boot/shell"
)

func init() {
	writeMemory = memCopy

	shell.Add(shell.Cmd{
		Name: "halt",
		Help: "halt the machine",
		Fn:   haltCmd,
	})
}

func memCopy(addr uint64, buf []byte) (err error) {
	r, err := dma.NewRegion(uint(addr), len(buf), true)

	if err != nil {
		return
	}

	ptr, mem := r.Reserve(len(buf), 0)
	defer r.Release(ptr)

	copy(mem, buf)

	return
}

func haltCmd(_ *shell.Interface, _ []string) (string, error) {
	go runtime.Exit(0)
	return fmt.Sprintf("Goodbye from %s/%s", runtime.GOOS, runtime.GOARCH), io.EOF
}
