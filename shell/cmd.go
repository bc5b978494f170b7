// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"text/tabwriter"
)

// CmdFn represents a command handler.
type CmdFn func(iface *Interface, arg []string) (res string, err error)

// Cmd represents a shell command.
type Cmd struct {
	// Name is the command name, matched exactly when Pattern is nil
	Name string
	// Args is the number of Pattern submatches passed to Fn
	Args int
	// Pattern is the command line regular expression
	Pattern *regexp.Regexp
	// Syntax is the argument syntax shown in help
	Syntax string
	// Help is the command description
	Help string
	// Fn is the command handler
	Fn CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a terminal command, replacing any previous one with the
// same name.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns the list of registered commands.
func Help() string {
	var help bytes.Buffer
	var names []string

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	t := tabwriter.NewWriter(&help, 16, 8, 0, '\t', tabwriter.TabIndent)

	for _, name := range names {
		_, _ = fmt.Fprintf(t, "%s\t%s\t # %s\n", cmds[name].Name, cmds[name].Syntax, cmds[name].Help)
	}

	_ = t.Flush()

	return help.String()
}
