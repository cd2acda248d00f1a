package filewatcher

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/rbxpath/rbxpath/internal/walk"
	"gotest.tools/v3/assert"
)

type testClient struct {
	mu           sync.Mutex
	createEvents []Event
	notify       chan Event
	closed       chan struct{}
}

func (c *testClient) OnFileWatchEvent(ev Event) {
	if ev.EventType == FileAdded {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.createEvents = append(c.createEvents, ev)
	}
	if ev.EventType != FileModified {
		c.notify <- ev
	}
}

func (c *testClient) OnFileWatchError(err error) {}

func (c *testClient) OnFileWatchClosed() {
	close(c.closed)
}

func newTestClient() *testClient {
	return &testClient{
		notify: make(chan Event, 1),
		closed: make(chan struct{}),
	}
}

func expectFilesystemEvent(t *testing.T, ch <-chan Event, expected Event) {
	// mark this method as a helper
	t.Helper()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-ch:
			t.Logf("got event %v", ev)
			if ev.Path == expected.Path && ev.EventType == expected.EventType {
				return
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for filesystem event at %v %v", expected.EventType, expected.Path)
			return
		}
	}
}

func expectNoFilesystemEvent(t *testing.T, ch <-chan Event) {
	// mark this method as a helper
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Errorf("got unexpected filesystem event %v", ev)
		} else {
			t.Error("filewatching closed unexpectedly")
		}
	case <-time.After(500 * time.Millisecond):
		return
	}
}

// Hack to avoid duplicate filenames. Count the number of test files we create.
// Not thread-safe
var testFileCount = 0

func expectWatching(t *testing.T, c *testClient, dirs []projectpath.AbsoluteSystemPath) {
	t.Helper()
	thisFileCount := testFileCount
	testFileCount++
	filename := fmt.Sprintf("test-%v.lua", thisFileCount)
	for _, dir := range dirs {
		file := dir.UntypedJoin(filename)
		err := os.WriteFile(file.ToString(), []byte("return nil"), 0644)
		assert.NilError(t, err, "WriteFile")
		expectFilesystemEvent(t, c.notify, Event{
			Path:      file,
			EventType: FileAdded,
		})
	}
}

func mkdirAll(t *testing.T, p projectpath.AbsoluteSystemPath) {
	t.Helper()
	assert.NilError(t, os.MkdirAll(p.ToString(), 0775), "MkdirAll")
}

func startWatcher(t *testing.T, root projectpath.AbsoluteSystemPath, excludes ...string) (*FileWatcher, *testClient) {
	t.Helper()
	logger := hclog.Default()
	logger.SetLevel(hclog.Debug)
	filter, err := walk.NewFilter(root, excludes)
	assert.NilError(t, err, "NewFilter")
	backend, err := GetBackend(logger)
	assert.NilError(t, err, "GetBackend")
	fw := New(logger, root, filter, backend)
	assert.NilError(t, fw.Start(), "fw.Start")
	c := newTestClient()
	fw.AddClient(c)
	return fw, c
}

func TestFileWatching(t *testing.T) {
	root := projectpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	mkdirAll(t, root.UntypedJoin(".git"))
	mkdirAll(t, root.UntypedJoin("node_modules", "some-dep"))
	mkdirAll(t, root.UntypedJoin("src", "Shared"))
	mkdirAll(t, root.UntypedJoin("src", "Server"))
	mkdirAll(t, root.UntypedJoin("build"))
	assert.NilError(t, os.WriteFile(root.UntypedJoin(".gitignore").ToString(), []byte("build/\n"), 0644))

	// Directory layout:
	// <root>/
	//   .git/
	//   .gitignore
	//   build/
	//   node_modules/
	//     some-dep/
	//   src/
	//     Shared/
	//     Server/

	fw, c := startWatcher(t, root)
	defer func() { _ = fw.Close() }()

	expectedWatching := []projectpath.AbsoluteSystemPath{
		root,
		root.UntypedJoin("src"),
		root.UntypedJoin("src", "Shared"),
		root.UntypedJoin("src", "Server"),
	}
	expectWatching(t, c, expectedWatching)

	deepPath := root.UntypedJoin("src", "Shared", "deep", "path")
	mkdirAll(t, deepPath)
	expectFilesystemEvent(t, c.notify, Event{
		Path:      root.UntypedJoin("src", "Shared", "deep"),
		EventType: FileAdded,
	})
	expectFilesystemEvent(t, c.notify, Event{
		Path:      deepPath,
		EventType: FileAdded,
	})
	expectedWatching = append(expectedWatching, deepPath, root.UntypedJoin("src", "Shared", "deep"))
	expectWatching(t, c, expectedWatching)

	for _, ignored := range []projectpath.AbsoluteSystemPath{
		root.UntypedJoin(".git", "git-file"),
		root.UntypedJoin("node_modules", "some-dep", "index.lua"),
		root.UntypedJoin("build", "Out.lua"),
	} {
		assert.NilError(t, os.WriteFile(ignored.ToString(), []byte("nope"), 0644))
		expectNoFilesystemEvent(t, c.notify)
	}
}

func TestFileWatching_Excludes(t *testing.T) {
	root := projectpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	mkdirAll(t, root.UntypedJoin("src", "Vendor"))
	mkdirAll(t, root.UntypedJoin("src", "Shared"))

	fw, c := startWatcher(t, root, "src/Vendor")
	defer func() { _ = fw.Close() }()

	expectWatching(t, c, []projectpath.AbsoluteSystemPath{root.UntypedJoin("src", "Shared")})

	assert.NilError(t, os.WriteFile(root.UntypedJoin("src", "Vendor", "Lib.lua").ToString(), []byte(""), 0644))
	expectNoFilesystemEvent(t, c.notify)
}

func TestFileWatching_Close(t *testing.T) {
	root := projectpath.AbsoluteSystemPathFromUpstream(t.TempDir())
	fw, c := startWatcher(t, root)

	assert.NilError(t, fw.Close())
	select {
	case <-c.closed:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the watch loop to close")
	}
	assert.ErrorIs(t, fw.Close(), ErrFilewatchingClosed)

	late := newTestClient()
	fw.AddClient(late)
	select {
	case <-late.closed:
	default:
		t.Error("a client added after close should be told immediately")
	}
}

func TestCloseBeforeStart(t *testing.T) {
	backend, err := GetBackend(hclog.NewNullLogger())
	assert.NilError(t, err)
	assert.NilError(t, backend.Close())
	_, ok := <-backend.Events()
	assert.Assert(t, !ok)
	assert.ErrorIs(t, backend.Start(), ErrFilewatchingClosed)
}

func TestFileEventString(t *testing.T) {
	assert.Equal(t, FileAdded.String(), "added")
	assert.Equal(t, FileRenamed.String(), "renamed")
	assert.Equal(t, FileEvent(0).String(), "other")
}
