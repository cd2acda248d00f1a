package ui

import (
	"os"

	"github.com/fatih/color"
)

type ColorMode int

const (
	ColorModeUndefined ColorMode = iota + 1
	ColorModeSuppressed
	ColorModeForced
)

func GetColorModeFromEnv() ColorMode {
	// The FORCE_COLOR values follow the supports-color NodeJS package:
	// "0" disables colour and "1", "2" or "3" force-enable it at a given
	// support level. The level is not used; colour is simply on or off.
	//
	// "false" and "true" are not documented, but the package coerces them to
	// 0 and 1, so that behavior is reproduced here as well.
	switch forceColor := os.Getenv("FORCE_COLOR"); {
	case forceColor == "false" || forceColor == "0":
		return ColorModeSuppressed
	case forceColor == "true" || forceColor == "1" || forceColor == "2" || forceColor == "3":
		return ColorModeForced
	default:
		return ColorModeUndefined
	}
}

// ColorModeFromFlags picks a mode from --color/--no-color, falling back to
// the environment.
func ColorModeFromFlags(forceColor bool, noColor bool) ColorMode {
	switch {
	case noColor:
		return ColorModeSuppressed
	case forceColor:
		return ColorModeForced
	default:
		return GetColorModeFromEnv()
	}
}

func ApplyColorMode(colorMode ColorMode) ColorMode {
	switch colorMode {
	case ColorModeForced:
		color.NoColor = false
	case ColorModeSuppressed:
		color.NoColor = true
	case ColorModeUndefined:
	default:
		// color.NoColor already gets its default value based on
		// isTTY and/or the presence of the NO_COLOR env variable.
	}

	if color.NoColor {
		return ColorModeSuppressed
	}
	return ColorModeForced
}
