package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
)

const ansiEscapeStr = "[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))"

// IsTTY is true when stdout appears to be a tty
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var gray = color.New(color.Faint)

// ErrorPrefix is a colored string for error level messages
var ErrorPrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" ERROR ")

// WarningPrefix is a colored string for warning level messages
var WarningPrefix = color.New(color.Bold, color.FgYellow, color.ReverseVideo).Sprint(" WARNING ")

var ansiRegex = regexp.MustCompile(ansiEscapeStr)

// Dim prints out dimmed text
func Dim(str string) string {
	return gray.Sprint(str)
}

// StripAnsi removes ANSI escape sequences from str.
func StripAnsi(str string) string {
	return ansiRegex.ReplaceAllString(str, "")
}

type stripAnsiWriter struct {
	wrappedWriter io.Writer
}

func (into *stripAnsiWriter) Write(p []byte) (int, error) {
	n, err := into.wrappedWriter.Write(ansiRegex.ReplaceAll(p, []byte{}))
	if err != nil {
		// The number of bytes returned here isn't directly related to the input bytes
		// if ansi color codes were being stripped out, but we are counting on Stdout.Write
		// not failing under typical operation as well.
		return n, err
	}

	// Write must return a non-nil error if it returns n < len(p). Consequently, if the
	// wrappedWrite.Write call succeeded we will return len(p) as the number of bytes
	// written.
	return len(p), nil
}

// BuildColoredUi returns a cli.Ui writing to out and errOut. When colour is
// suppressed, escape sequences are stripped from everything written.
func BuildColoredUi(colorMode ColorMode, out io.Writer, errOut io.Writer) cli.Ui {
	colorMode = ApplyColorMode(colorMode)

	var outWriter, errWriter io.Writer

	if colorMode == ColorModeSuppressed {
		outWriter = &stripAnsiWriter{wrappedWriter: out}
		errWriter = &stripAnsiWriter{wrappedWriter: errOut}
	} else {
		outWriter = out
		errWriter = errOut
	}

	return &cli.ColoredUi{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      outWriter,
			ErrorWriter: errWriter,
		},
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		WarnColor:   cli.UiColor{Code: int(color.FgYellow), Bold: false},
		ErrorColor:  cli.UiColorRed,
	}
}

// Errorf formats an error with the ERROR prefix.
func Errorf(format string, args ...interface{}) string {
	return fmt.Sprintf("%s%s", ErrorPrefix, color.RedString(" %v", fmt.Sprintf(format, args...)))
}

// Warnf formats a message with the WARNING prefix.
func Warnf(format string, args ...interface{}) string {
	return fmt.Sprintf("%s%s", WarningPrefix, color.YellowString(" %v", fmt.Sprintf(format, args...)))
}
