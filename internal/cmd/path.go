package cmd

import (
	"github.com/hashicorp/go-multierror"
	"github.com/rbxpath/rbxpath/internal/cmdutil"
	"github.com/spf13/cobra"
)

func addPathCmd(root *cobra.Command, helper *cmdutil.Helper) {
	cmd := &cobra.Command{
		Use:   "path <file>...",
		Short: "Print the instance path of each script file",
		Long: `Print the instance path of each script file, one per line. Files that do
not reach a service are reported and left out of the output.`,
		Args:                  cobra.MinimumNArgs(1),
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			return runPath(base, args)
		},
	}
	root.AddCommand(cmd)
}

func runPath(base *cmdutil.CmdBase, args []string) error {
	tree := base.LoadManifest()
	var failed *multierror.Error
	degenerate := false
	for _, arg := range args {
		rel, err := base.Anchor(arg)
		if err != nil {
			failed = multierror.Append(failed, err)
			continue
		}
		expr, ok := base.Convert(rel, tree)
		if !ok {
			base.LogWarning(arg, errNoService)
			degenerate = true
			continue
		}
		base.UI.Output(expr)
	}
	if failed != nil {
		failed.ErrorFormat = errorList
		return base.LogError("%v", failed)
	}
	if degenerate {
		return &cmdutil.Error{ExitCode: 1, Err: errNoService}
	}
	return nil
}
