package projectpath

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mitchellh/go-homedir"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestContainsPath(t *testing.T) {
	root := AbsoluteSystemPath(filepath.FromSlash("/repo/project"))

	cases := []struct {
		name  string
		other string
		want  bool
	}{
		{"itself", "/repo/project", true},
		{"child", "/repo/project/src/Foo.lua", true},
		{"sibling with shared prefix", "/repo/project2/Foo.lua", false},
		{"parent", "/repo", false},
		{"dotdot named file", "/repo/project/..foo", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := root.ContainsPath(AbsoluteSystemPath(filepath.FromSlash(tc.other)))
			assert.NilError(t, err)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestAnchor(t *testing.T) {
	root := AbsoluteSystemPath(filepath.FromSlash("/repo/project"))

	anchored, err := root.Anchor(root.UntypedJoin("src", "Shared", "Foo.lua"))
	assert.NilError(t, err)
	assert.Equal(t, anchored.ToUnixPath(), AnchoredUnixPath("src/Shared/Foo.lua"))

	_, err = root.Anchor(AbsoluteSystemPath(filepath.FromSlash("/elsewhere/Foo.lua")))
	assert.ErrorContains(t, err, "is not inside")
}

func TestResolveArg(t *testing.T) {
	base := AbsoluteSystemPath(filepath.FromSlash("/work"))

	got, err := ResolveArg(filepath.FromSlash("src/Foo.lua"), base)
	assert.NilError(t, err)
	assert.Equal(t, got, base.UntypedJoin("src", "Foo.lua"))

	abs := filepath.FromSlash("/other/./Foo.lua")
	got, err = ResolveArg(abs, base)
	assert.NilError(t, err)
	assert.Equal(t, got, AbsoluteSystemPath(filepath.Clean(abs)))

	home, err := homedir.Dir()
	assert.NilError(t, err)
	got, err = ResolveArg("~/project", base)
	assert.NilError(t, err)
	assert.Equal(t, got, AbsoluteSystemPath(filepath.Join(home, "project")))
}

func TestRealpath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated permissions on windows")
	}
	dir := fs.NewDir(t, "projectpath-realpath", fs.WithDir("real", fs.WithFile("Foo.lua", "")))
	link := filepath.Join(dir.Path(), "link")
	assert.NilError(t, os.Symlink(dir.Join("real"), link))

	want, err := AbsoluteSystemPath(dir.Join("real", "Foo.lua")).Realpath()
	assert.NilError(t, err)
	got, err := AbsoluteSystemPath(filepath.Join(link, "Foo.lua")).Realpath()
	assert.NilError(t, err)
	assert.Equal(t, got, want)
}

func TestFileAndDirExists(t *testing.T) {
	dir := fs.NewDir(t, "projectpath-exists", fs.WithFile("a.txt", "x"), fs.WithDir("sub"))
	root := AbsoluteSystemPath(dir.Path())

	assert.Assert(t, root.UntypedJoin("a.txt").FileExists())
	assert.Assert(t, !root.UntypedJoin("a.txt").DirExists())
	assert.Assert(t, root.UntypedJoin("sub").DirExists())
	assert.Assert(t, !root.UntypedJoin("sub").FileExists())
	assert.Assert(t, !root.UntypedJoin("missing").Exists())

	contents, err := root.UntypedJoin("a.txt").ReadFile()
	assert.NilError(t, err)
	assert.Equal(t, string(contents), "x")
}
