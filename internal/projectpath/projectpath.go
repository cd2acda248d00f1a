// Package projectpath teaches the Go type system about the three kinds of
// path a conversion deals with:
// - AbsoluteSystemPath, where things are on disk
// - AnchoredSystemPath, a path below the project root using system separators
// - AnchoredUnixPath, the same with `/` separators, which is what the
//   instance path converter consumes
//
// Anchored paths are stored without a leading delimiter and are not aware
// of what their anchor is.
package projectpath

// The following functions import a string and cast it to a path type. They
// mark the places where paths cross from the outside world into code that
// relies on the type to know what kind of path it holds.

// AbsoluteSystemPathFromUpstream casts path to an AbsoluteSystemPath without
// checking it.
func AbsoluteSystemPathFromUpstream(path string) AbsoluteSystemPath {
	return AbsoluteSystemPath(path)
}

// AnchoredUnixPathFromUpstream casts path to an AnchoredUnixPath without
// checking it.
func AnchoredUnixPathFromUpstream(path string) AnchoredUnixPath {
	return AnchoredUnixPath(path)
}
