package cmd

import (
	"strings"

	"github.com/rbxpath/rbxpath/internal/cmdutil"
	"github.com/rbxpath/rbxpath/internal/instancepath"
	"github.com/rbxpath/rbxpath/internal/ui"
	"github.com/rbxpath/rbxpath/internal/util"
	"github.com/spf13/cobra"
)

func addResolveCmd(root *cobra.Command, helper *cmdutil.Helper) {
	cmd := &cobra.Command{
		Use:   "resolve <dir>",
		Short: "Show where the project document places a directory",
		Long: `Show the deepest node of the project document that declares the directory
or one of its ancestors, followed by the directories below that node.
Directories the document does not cover mirror the file system layout.`,
		Args:                  cobra.ExactArgs(1),
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			return runResolve(base, args[0])
		},
	}
	root.AddCommand(cmd)
}

func runResolve(base *cmdutil.CmdBase, arg string) error {
	dir, err := base.ResolveDir(arg)
	if err != nil {
		return base.LogError("%v", err)
	}
	rel, err := base.Root.Anchor(dir)
	if err != nil {
		return base.LogError("%v", err)
	}
	parts := instancepath.SplitDir(rel.ToUnixPath().ToString())
	tree := base.LoadManifest()

	match, ok := instancepath.ResolveWithFallback(tree, parts)
	if !ok {
		mirrored := base.Converter.DirSegments(parts, nil)
		base.Logger.Debug("not declared", "dir", rel, "segments", mirrored)
		base.UI.Output(util.Sprintf("%v\t${GREY}(mirrored)${RESET}", describeSegments(mirrored)))
		return nil
	}
	base.Logger.Debug("resolved", "dir", rel, "location", match.Location, "remainder", match.Remainder)
	declared := "(root)"
	if len(match.Location) > 0 {
		declared = match.Location.String()
	}
	if len(match.Remainder) == 0 {
		base.UI.Output(declared)
		return nil
	}
	base.UI.Output(util.Sprintf("%v\t${GREY}+ %v${RESET}", declared, strings.Join(match.Remainder, "/")))
	return nil
}

func describeSegments(segments []string) string {
	if len(segments) == 0 {
		return ui.Dim("(no service)")
	}
	return strings.Join(segments, ".")
}
