// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the console commands for board inspection and
// next stage boot.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/hako/durafmt"

	"github.com/usbarmory/imx8ulp-boot/platform"
	"github.com/usbarmory/imx8ulp-boot/shell"
)

// Board is the platform initialized by the boot sequence.
var Board *platform.Platform

var started = time.Now()

func init() {
	shell.Add(shell.Cmd{
		Name: "build",
		Help: "build information",
		Fn:   buildInfoCmd,
	})

	shell.Add(shell.Cmd{
		Name: "exit",
		Help: "close session",
		Fn:   exitCmd,
	})

	shell.Add(shell.Cmd{
		Name: "stack",
		Help: "goroutine stack trace (current)",
		Fn:   stackCmd,
	})

	shell.Add(shell.Cmd{
		Name: "stackall",
		Help: "goroutine stack trace (all)",
		Fn:   stackallCmd,
	})

	shell.Add(shell.Cmd{
		Name: "uptime",
		Help: "show how long the system has been running",
		Fn:   uptimeCmd,
	})
}

func buildInfoCmd(_ *shell.Interface, _ []string) (string, error) {
	var res bytes.Buffer

	if bi, ok := debug.ReadBuildInfo(); ok {
		res.WriteString(bi.String())
	}

	return res.String(), nil
}

func exitCmd(_ *shell.Interface, _ []string) (string, error) {
	return fmt.Sprintf("Goodbye from %s/%s", runtime.GOOS, runtime.GOARCH), io.EOF
}

func stackCmd(_ *shell.Interface, _ []string) (string, error) {
	return string(debug.Stack()), nil
}

func stackallCmd(_ *shell.Interface, _ []string) (string, error) {
	buf := new(bytes.Buffer)
	pprof.Lookup("goroutine").WriteTo(buf, 1)

	return buf.String(), nil
}

func uptimeCmd(_ *shell.Interface, _ []string) (string, error) {
	return durafmt.Parse(time.Since(started)).String(), nil
}
