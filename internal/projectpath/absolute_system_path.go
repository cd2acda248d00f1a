package projectpath

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/yookoala/realpath"
)

// AbsoluteSystemPath is a root-relative path using system separators.
type AbsoluteSystemPath string

// _nonRelativeSentinel is the leading sentinel that indicates traversal.
const _nonRelativeSentinel = ".." + string(filepath.Separator)

// ResolveArg turns a command line argument into an AbsoluteSystemPath.
// A leading ~ is expanded and relative arguments are taken from base.
func ResolveArg(arg string, base AbsoluteSystemPath) (AbsoluteSystemPath, error) {
	expanded, err := homedir.Expand(arg)
	if err != nil {
		return "", errors.Wrapf(err, "failed to expand %v", arg)
	}
	if filepath.IsAbs(expanded) {
		return AbsoluteSystemPath(filepath.Clean(expanded)), nil
	}
	return base.UntypedJoin(expanded), nil
}

// Cwd returns the working directory as an AbsoluteSystemPath.
func Cwd() (AbsoluteSystemPath, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine current working directory")
	}
	return AbsoluteSystemPath(cwd), nil
}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// RelativeTo calculates the relative path between two `AbsoluteSystemPath`s.
func (p AbsoluteSystemPath) RelativeTo(basePath AbsoluteSystemPath) (AnchoredSystemPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return AnchoredSystemPath(processed), err
}

// UntypedJoin is a Join that does not constrain the type of the arguments.
// This enables you to pass in strings, but does not protect you from garbage in.
func (p AbsoluteSystemPath) UntypedJoin(args ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(args...)))
}

// Dir implements filepath.Dir() for an AbsoluteSystemPath
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// Base implements filepath.Base for an absolute path
func (p AbsoluteSystemPath) Base() string {
	return filepath.Base(p.ToString())
}

// Lstat implements os.Lstat for absolute path
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}

// Exists returns true if the given path exists.
func (p AbsoluteSystemPath) Exists() bool {
	_, err := p.Lstat()
	return err == nil
}

// DirExists returns true if the given path exists and is a directory.
func (p AbsoluteSystemPath) DirExists() bool {
	info, err := os.Stat(p.ToString())
	return err == nil && info.IsDir()
}

// FileExists returns true if the given path exists and is a file.
func (p AbsoluteSystemPath) FileExists() bool {
	info, err := os.Lstat(p.ToString())
	return err == nil && !info.IsDir()
}

// ReadFile reads the contents of the specified file
func (p AbsoluteSystemPath) ReadFile() ([]byte, error) {
	return ioutil.ReadFile(p.ToString())
}

// Realpath resolves every symlink in p.
func (p AbsoluteSystemPath) Realpath() (AbsoluteSystemPath, error) {
	resolved, err := realpath.Realpath(p.ToString())
	if err != nil {
		return "", err
	}
	return AbsoluteSystemPath(resolved), nil
}

// ContainsPath returns true if this absolute path is a parent of the
// argument.
func (p AbsoluteSystemPath) ContainsPath(other AbsoluteSystemPath) (bool, error) {
	// As in the rest of this package, rely on the stdlib to generate a
	// relative path and then check if the first step is "../".
	rel, err := filepath.Rel(p.ToString(), other.ToString())
	if err != nil {
		return false, err
	}
	return rel != ".." && !strings.HasPrefix(rel, _nonRelativeSentinel), nil
}

// Anchor returns other relative to p, failing when other is not inside p.
func (p AbsoluteSystemPath) Anchor(other AbsoluteSystemPath) (AnchoredSystemPath, error) {
	contained, err := p.ContainsPath(other)
	if err != nil {
		return "", err
	}
	if !contained {
		return "", errors.Errorf("%v is not inside %v", other, p)
	}
	return other.RelativeTo(p)
}
