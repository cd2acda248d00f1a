package projectpath

import (
	"os"
)

// DirMatcher reports whether a directory, given its entries, is the one
// being searched for.
type DirMatcher func(entries []os.DirEntry) bool

type readDir func(string) ([]os.DirEntry, error)

var defaultReadDir readDir = os.ReadDir

func findupFrom(dir AbsoluteSystemPath, match DirMatcher, readdir readDir) (AbsoluteSystemPath, bool, error) {
	for {
		entries, err := readdir(dir.ToString())
		if err != nil {
			return "", false, err
		}

		if match(entries) {
			return dir, true, nil
		}

		parent := dir.Dir()

		if parent == dir {
			return "", false, nil
		}

		dir = parent
	}
}

// Findup walks from p up through its parents and returns the first
// directory accepted by match.
func (p AbsoluteSystemPath) Findup(match DirMatcher) (AbsoluteSystemPath, bool, error) {
	return findupFrom(p, match, defaultReadDir)
}
