// Package walk enumerates the files of a project, leaving out what version
// control ignores, hidden directories and configured exclusions.
package walk

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/rbxpath/rbxpath/internal/util"
	gitignore "github.com/sabhiram/go-gitignore"
)

// _skipDirs are directory names that never hold project scripts.
var _skipDirs = util.SetFromStrings([]string{"node_modules"})

// Filter decides which paths below a project root are visited.
type Filter struct {
	root     projectpath.AbsoluteSystemPath
	ignore   *gitignore.GitIgnore
	excludes []string
}

// NewFilter builds a Filter for root from its .gitignore and the given
// doublestar patterns, which are matched against root-relative `/` paths.
func NewFilter(root projectpath.AbsoluteSystemPath, excludes []string) (*Filter, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	ignore, err := safeCompileIgnoreFile(root.UntypedJoin(".gitignore"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read .gitignore")
	}
	return &Filter{
		root:     root,
		ignore:   ignore,
		excludes: excludes,
	}, nil
}

func safeCompileIgnoreFile(file projectpath.AbsoluteSystemPath) (*gitignore.GitIgnore, error) {
	if file.FileExists() {
		return gitignore.CompileIgnoreFile(file.ToString())
	}
	// no op
	return gitignore.CompileIgnoreLines([]string{}...), nil
}

// Root returns the directory paths are anchored to.
func (f *Filter) Root() projectpath.AbsoluteSystemPath {
	return f.root
}

// Skip reports whether rel is left out. Directories are matched with a
// trailing slash so that directory-only ignore rules apply.
func (f *Filter) Skip(rel projectpath.AnchoredUnixPath, isDir bool) bool {
	name := rel.ToString()
	if name == "" || name == "." {
		return false
	}
	if isDir {
		base := path.Base(name)
		if strings.HasPrefix(base, ".") || _skipDirs.Includes(base) {
			return true
		}
	}
	candidate := name
	if isDir {
		candidate += "/"
	}
	if f.ignore.MatchesPath(candidate) {
		return true
	}
	for _, pattern := range f.excludes {
		// Patterns were validated in NewFilter.
		if excluded, _ := doublestar.Match(pattern, name); excluded {
			return true
		}
	}
	return false
}

// Entry is a path visited by Walk.
type Entry struct {
	Path  projectpath.AbsoluteSystemPath
	Rel   projectpath.AnchoredUnixPath
	IsDir bool
	// Mode holds only the type bits of the file mode.
	Mode os.FileMode
}

// Walk visits dir and everything below it that the filter keeps. dir itself
// is always visited. Symlinked directories are reported but not entered.
func (f *Filter) Walk(dir projectpath.AbsoluteSystemPath, callback func(entry Entry) error) error {
	return godirwalk.Walk(dir.ToString(), &godirwalk.Options{
		Callback: func(name string, info *godirwalk.Dirent) error {
			isDir, err := info.IsDirOrSymlinkToDir()
			if err != nil {
				pathErr := &os.PathError{}
				if errors.As(err, &pathErr) {
					// If we have a broken link, skip this entry
					return godirwalk.SkipThis
				}
				return err
			}
			abs := projectpath.AbsoluteSystemPathFromUpstream(name)
			anchored, err := f.root.Anchor(abs)
			if err != nil {
				return err
			}
			rel := anchored.ToUnixPath()
			if abs != dir && f.Skip(rel, isDir) {
				return godirwalk.SkipThis
			}
			return callback(Entry{
				Path:  abs,
				Rel:   rel,
				IsDir: isDir,
				Mode:  info.ModeType(),
			})
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			pathErr := &os.PathError{}
			if errors.As(err, &pathErr) {
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
		Unsorted:            true,
		AllowNonDirectory:   true,
		FollowSymbolicLinks: false,
	})
}

// Files returns the root-relative paths of the files below dir for which
// keep returns true, sorted.
func (f *Filter) Files(dir projectpath.AbsoluteSystemPath, keep func(name string) bool) ([]projectpath.AnchoredUnixPath, error) {
	var files []projectpath.AnchoredUnixPath
	err := f.Walk(dir, func(entry Entry) error {
		if entry.IsDir || !keep(entry.Path.Base()) {
			return nil
		}
		files = append(files, entry.Rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %v", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })
	return files, nil
}
