// Copyright Thought Machine, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"fmt"
	"os"

	"github.com/rbxpath/rbxpath/internal/ui"
)

// InitPrintf sets up the replacements used by printf.
func InitPrintf() {
	if !ui.IsTTY {
		replacements = map[string]string{}
	}
}

// Sprintf formats with pseudo-shell variables such as ${BOLD} replaced by
// ANSI formatting codes. Only the format is expanded, so arguments holding
// a `$` are printed as given.
func Sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(os.Expand(format, replace), args...)
}

func replace(s string) string {
	return replacements[s]
}

// These are the standard set of replacements we use.
var replacements = map[string]string{
	"BOLD":        "\x1b[1m",
	"BOLD_GREEN":  "\x1b[32;1m",
	"BOLD_YELLOW": "\x1b[33;1m",
	"GREY":        "\x1b[2m",
	"RED":         "\x1b[31m",
	"GREEN":       "\x1b[32m",
	"CYAN":        "\x1b[36m",
	"RESET":       "\x1b[0m",
}
