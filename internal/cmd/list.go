package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/cmdutil"
	"github.com/rbxpath/rbxpath/internal/util"
	"github.com/rbxpath/rbxpath/internal/walk"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// listFormats are the accepted values of list --format.
var listFormats = []string{"text", "json", "yaml"}

// listEntry is one converted file in structured list output.
type listEntry struct {
	Path       string `json:"path" yaml:"path"`
	Expression string `json:"expression" yaml:"expression"`
}

func addListCmd(root *cobra.Command, helper *cmdutil.Helper) {
	var format string
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "Print the instance path of every script file below a directory",
		Long: `Print "<path>\t<instance path>" for every script file below dir, which
defaults to the project root. Hidden directories, .gitignore matches and
exclude patterns are skipped.`,
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
			return runList(base, dir, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", fmt.Sprintf("Output format, one of %v", strings.Join(listFormats, ", ")))
	root.AddCommand(cmd)
}

func runList(base *cmdutil.CmdBase, arg string, format string) error {
	if !validListFormat(format) {
		return base.LogError("unknown format %q, expected one of %v", format, strings.Join(listFormats, ", "))
	}
	dir, err := base.ResolveDir(arg)
	if err != nil {
		return base.LogError("%v", err)
	}
	filter, err := walk.NewFilter(base.Root, base.Config.Exclude)
	if err != nil {
		return base.LogError("%v", err)
	}
	files, err := filter.Files(dir, base.Converter.IsScript)
	if err != nil {
		return base.LogError("%v", err)
	}
	base.Logger.Debug("listing", "dir", dir, "files", len(files))

	tree := base.LoadManifest()
	var degenerate *multierror.Error
	entries := []listEntry{}
	for _, rel := range files {
		expr, ok := base.Convert(rel, tree)
		if !ok {
			base.LogWarning(rel.ToString(), errNoService)
			degenerate = multierror.Append(degenerate, errNoService)
			continue
		}
		if format == "text" {
			base.UI.Output(util.Sprintf("${GREY}%v${RESET}\t%v", rel, expr))
			continue
		}
		entries = append(entries, listEntry{Path: rel.ToString(), Expression: expr})
	}
	if err := renderEntries(base, format, entries); err != nil {
		return base.LogError("%v", err)
	}
	if degenerate != nil {
		degenerate.ErrorFormat = errorList
		return &cmdutil.Error{ExitCode: 1, Err: degenerate}
	}
	return nil
}

func validListFormat(format string) bool {
	for _, f := range listFormats {
		if f == format {
			return true
		}
	}
	return false
}

func renderEntries(base *cmdutil.CmdBase, format string, entries []listEntry) error {
	var rendered []byte
	var err error
	switch format {
	case "json":
		rendered, err = json.MarshalIndent(entries, "", "  ")
	case "yaml":
		rendered, err = yaml.Marshal(entries)
	default:
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to render %v", format)
	}
	base.UI.Output(strings.TrimRight(string(rendered), "\n"))
	return nil
}
