// Package cmd holds the root cobra command for rbxpath
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/cmdutil"
	"github.com/rbxpath/rbxpath/internal/signals"
	"github.com/rbxpath/rbxpath/internal/ui"
	"github.com/rbxpath/rbxpath/internal/util"
	"github.com/spf13/cobra"
)

// Execute runs rbxpath with the process arguments and returns the exit code.
func Execute(version string) int {
	util.InitPrintf()
	signalWatcher := signals.NewWatcher()
	defer signalWatcher.Close()
	helper := cmdutil.NewHelper(version)
	return RunWithArgs(os.Args[1:], helper, signalWatcher)
}

// RunWithArgs runs the root command with args. Commands are cancelled
// through their context when signalWatcher closes.
func RunWithArgs(args []string, helper *cmdutil.Helper, signalWatcher *signals.Watcher) int {
	ctx, cancel := signalWatcher.Context(context.Background())
	defer cancel()

	root := getCmd(helper)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	exitErr := &cmdutil.Error{}
	if errors.As(err, &exitErr) {
		// Already reported by the command.
		return exitErr.ExitCode
	}
	fmt.Fprintln(helper.Stderr, ui.Errorf("%v", err))
	return 1
}

func getCmd(helper *cmdutil.Helper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rbxpath <command> [<args>]",
		Short: "Translate script file paths into instance paths",
		Long: `Translate the paths of Luau and Lua script files into the instance
expressions that reach them at runtime, following the project document
when the project has one.`,
		Version:       helper.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(`{{printf "%s" .Version}}
`)
	cmd.SetOut(helper.Stdout)
	cmd.SetErr(helper.Stderr)
	helper.AddFlags(cmd.PersistentFlags())
	addPathCmd(cmd, helper)
	addResolveCmd(cmd, helper)
	addListCmd(cmd, helper)
	addWatchCmd(cmd, helper)
	return cmd
}

// errorList formats aggregated errors one per line.
func errorList(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

var errNoService = errors.New("does not resolve to a service; scripts need a directory between the source root and themselves")
