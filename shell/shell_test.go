// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"regexp"
	"strings"
	"testing"
)

func TestExec(t *testing.T) {
	Add(Cmd{
		Name: "ping",
		Help: "reply pong",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "pong", nil
		},
	})

	Add(Cmd{
		Name:    "echo",
		Args:    1,
		Pattern: regexp.MustCompile(`^echo (\w+)$`),
		Syntax:  "<word>",
		Help:    "echo argument",
		Fn: func(_ *Interface, arg []string) (string, error) {
			return arg[0], nil
		},
	})

	iface := &Interface{}

	for _, tt := range []struct {
		line string
		res  string
		err  bool
	}{
		{line: "ping", res: "pong"},
		{line: "echo hello", res: "hello"},
		{line: "echo", err: true},
		{line: "pingpong", err: true},
	} {
		res, err := iface.Exec(tt.line)

		if (err != nil) != tt.err {
			t.Errorf("Exec(%q) error = %v, want error %v", tt.line, err, tt.err)
			continue
		}

		if res != tt.res {
			t.Errorf("Exec(%q) = %q, want %q", tt.line, res, tt.res)
		}
	}

	help := Help()

	for _, want := range []string{"ping", "echo", "<word>", "# echo argument"} {
		if !strings.Contains(help, want) {
			t.Errorf("Help() missing %q:\n%s", want, help)
		}
	}

	if strings.Index(help, "echo") > strings.Index(help, "ping") {
		t.Errorf("Help() not sorted:\n%s", help)
	}
}
