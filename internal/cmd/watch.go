package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/cmdutil"
	"github.com/rbxpath/rbxpath/internal/filewatcher"
	"github.com/rbxpath/rbxpath/internal/manifest"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/rbxpath/rbxpath/internal/util"
	"github.com/rbxpath/rbxpath/internal/walk"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func addWatchCmd(root *cobra.Command, helper *cmdutil.Helper) {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Print the instance path of script files as they change",
		Long: `Watch dir, which defaults to the project root, and print
"<path>\t<instance path>" whenever a script file is created or written.
Changes to the project document are picked up without restarting.`,
		Args:                  cobra.MaximumNArgs(1),
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd.Context(), base, dir)
		},
	}
	root.AddCommand(cmd)
}

// watchItem is either a file event or a watch error.
type watchItem struct {
	event filewatcher.Event
	err   error
}

// watchClient forwards watcher callbacks to a channel that is closed along
// with the watcher.
type watchClient struct {
	items chan watchItem
}

func (c *watchClient) OnFileWatchEvent(ev filewatcher.Event) {
	c.items <- watchItem{event: ev}
}

func (c *watchClient) OnFileWatchError(err error) {
	c.items <- watchItem{err: err}
}

func (c *watchClient) OnFileWatchClosed() {
	close(c.items)
}

func runWatch(ctx context.Context, base *cmdutil.CmdBase, arg string) error {
	dir, err := base.ResolveDir(arg)
	if err != nil {
		return base.LogError("%v", err)
	}
	filter, err := walk.NewFilter(base.Root, base.Config.Exclude)
	if err != nil {
		return base.LogError("%v", err)
	}
	logger := base.Logger.Named("watch")
	backend, err := filewatcher.GetBackend(logger)
	if err != nil {
		return base.LogError("failed to start watching: %v", err)
	}
	fw := filewatcher.New(logger, dir, filter, backend)
	client := &watchClient{items: make(chan watchItem, 64)}
	fw.AddClient(client)
	if err := fw.Start(); err != nil {
		_ = fw.Close()
		return base.LogError("failed to start watching %v: %v", dir, err)
	}
	base.LogInfo(util.Sprintf("Watching ${BOLD}%v${RESET} for changes", dir))

	p := newPrinter(base)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		if err := fw.Close(); err != nil && !errors.Is(err, filewatcher.ErrFilewatchingClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		for item := range client.items {
			if item.err != nil {
				base.LogWarning("watch", item.err)
				continue
			}
			p.onEvent(item.event)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return base.LogError("%v", err)
	}
	return nil
}

// _writeBurst is how long repeated writes to one file count as one save.
const _writeBurst = 100 * time.Millisecond

// printer converts the script files named by watch events.
type printer struct {
	base *cmdutil.CmdBase
	tree *manifest.Node
	now  func() time.Time
	// last and lastAt collapse the burst of write events a single save
	// produces.
	last   projectpath.AnchoredUnixPath
	lastAt time.Time
}

func newPrinter(base *cmdutil.CmdBase) *printer {
	return &printer{base: base, tree: base.LoadManifest(), now: time.Now}
}

func (p *printer) onEvent(ev filewatcher.Event) {
	switch ev.EventType {
	case filewatcher.FileAdded, filewatcher.FileModified:
	case filewatcher.FileDeleted, filewatcher.FileRenamed:
		p.last = ""
		return
	default:
		return
	}
	if !ev.Path.FileExists() {
		return
	}
	name := ev.Path.Base()
	if p.isProjectDocument(ev.Path) {
		p.base.Logger.Info("project document changed", "path", ev.Path)
		p.tree = p.base.LoadManifest()
		p.last = ""
		return
	}
	if !p.base.Converter.IsScript(name) {
		return
	}
	anchored, err := p.base.Root.Anchor(ev.Path)
	if err != nil {
		return
	}
	rel := anchored.ToUnixPath()
	now := p.now()
	if ev.EventType == filewatcher.FileModified && rel == p.last && now.Sub(p.lastAt) < _writeBurst {
		return
	}
	p.last = rel
	p.lastAt = now
	expr, ok := p.base.Convert(rel, p.tree)
	if !ok {
		p.base.LogWarning(rel.ToString(), errNoService)
		return
	}
	p.base.UI.Output(util.Sprintf("${GREY}%v${RESET}\t%v", rel, expr))
}

func (p *printer) isProjectDocument(path projectpath.AbsoluteSystemPath) bool {
	if path.Dir() != p.base.Root {
		return false
	}
	return strings.HasSuffix(path.Base(), p.base.Config.ManifestSuffix)
}
