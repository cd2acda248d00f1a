// Package cmdutil holds functionality to run rbxpath via cobra. That includes
// flag parsing and configuration of components common to all subcommands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/config"
	"github.com/rbxpath/rbxpath/internal/instancepath"
	"github.com/rbxpath/rbxpath/internal/manifest"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/rbxpath/rbxpath/internal/ui"
	"github.com/spf13/pflag"
)

const (
	// EnvLogLevel is the environment log level
	EnvLogLevel = "RBXPATH_LOG_LEVEL"
)

// Helper is a struct used to hold configuration values passed via flag, env
// vars, config files, etc. It is not intended for direct use by commands, it
// drives the creation of CmdBase, which is then used by the commands
// themselves.
type Helper struct {
	// Version is the version of rbxpath that is currently executing
	Version string

	// UserConfigPath is the path to where we expect to find a user-specific
	// config file, if one is present. Public to allow overrides in tests
	UserConfigPath projectpath.AbsoluteSystemPath

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	verbosity    int
	forceColor   bool
	noColor      bool
	rawCwd       string
	rawRoot      string
	manifestFile string
}

// NewHelper returns a new helper instance to hold configuration values for
// the root rbxpath command.
func NewHelper(version string) *Helper {
	return &Helper{
		Version:        version,
		UserConfigPath: config.DefaultUserConfigPath(),
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

// AddFlags adds common flags for all rbxpath commands to the given flagset
// and binds them to this instance of Helper
func (h *Helper) AddFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&h.forceColor, "color", false, "Force color usage in the terminal")
	flags.BoolVar(&h.noColor, "no-color", false, "Suppress color usage in the terminal")
	flags.CountVarP(&h.verbosity, "verbosity", "v", "verbosity")
	flags.StringVar(&h.rawCwd, "cwd", "", "The directory in which to run rbxpath")
	flags.StringVar(&h.rawRoot, "root", "", "The project root. Defaults to the nearest directory holding a project document")
	flags.StringVar(&h.manifestFile, "manifest", "", "Use this project document instead of looking one up in the project root")
	config.AddFlags(flags)
}

func (h *Helper) getUI() cli.Ui {
	colorMode := ui.ColorModeFromFlags(h.forceColor, h.noColor)
	return ui.BuildColoredUi(colorMode, h.Stdout, h.Stderr)
}

func (h *Helper) getLogger() (hclog.Logger, error) {
	var level hclog.Level
	switch h.verbosity {
	case 0:
		if v := os.Getenv(EnvLogLevel); v != "" {
			level = hclog.LevelFromString(v)
			if level == hclog.NoLevel {
				return nil, fmt.Errorf("%s value %q is not a valid log level", EnvLogLevel, v)
			}
		} else {
			level = hclog.Warn
		}
	case 1:
		level = hclog.Info
	case 2:
		level = hclog.Debug
	default:
		level = hclog.Trace
	}
	// hclog can only colour *os.File outputs.
	color := hclog.ColorOff
	if _, isFile := h.Stderr.(*os.File); isFile && !h.noColor {
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "rbxpath",
		Level:  level,
		Color:  color,
		Output: h.Stderr,
	}), nil
}

// GetCmdBase returns a CmdBase instance configured with values from this helper.
func (h *Helper) GetCmdBase(flags *pflag.FlagSet) (*CmdBase, error) {
	terminal := h.getUI()
	logger, err := h.getLogger()
	if err != nil {
		return nil, err
	}
	cwd, err := projectpath.Cwd()
	if err != nil {
		return nil, err
	}
	if h.rawCwd != "" {
		cwd, err = projectpath.ResolveArg(h.rawCwd, cwd)
		if err != nil {
			return nil, err
		}
	}
	if cwd, err = cwd.Realpath(); err != nil {
		return nil, errors.Wrapf(err, "invalid working directory %v", h.rawCwd)
	}

	// The manifest suffix can come from the repo config, which lives in the
	// root we are about to look for, so the search runs on the settings
	// known without it.
	preliminary, err := config.Load(h.UserConfigPath, "", flags)
	if err != nil {
		return nil, err
	}
	root, err := h.findRoot(cwd, preliminary.ManifestSuffix, logger)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(h.UserConfigPath, config.GetRepoConfigPath(root), flags)
	if err != nil {
		return nil, err
	}
	logger.Debug("project root", "path", root)

	return &CmdBase{
		UI:             terminal,
		Logger:         logger,
		Config:         cfg,
		Cwd:            cwd,
		Root:           root,
		Converter:      instancepath.NewConverter(cfg.ConverterOptions()),
		RBXPathVersion: h.Version,
		manifestFile:   h.manifestFile,
	}, nil
}

func (h *Helper) findRoot(cwd projectpath.AbsoluteSystemPath, suffix string, logger hclog.Logger) (projectpath.AbsoluteSystemPath, error) {
	if h.rawRoot != "" {
		root, err := projectpath.ResolveArg(h.rawRoot, cwd)
		if err != nil {
			return "", err
		}
		if !root.DirExists() {
			return "", fmt.Errorf("project root %v is not a directory", root)
		}
		return root.Realpath()
	}
	root, ok, err := cwd.Findup(manifest.HasDocument(suffix))
	if err != nil {
		logger.Debug("project document search failed", "error", err)
		return cwd, nil
	}
	if !ok {
		return cwd, nil
	}
	return root, nil
}

// CmdBase encompasses configured components common to all rbxpath commands.
type CmdBase struct {
	UI             cli.Ui
	Logger         hclog.Logger
	Config         *config.Config
	Cwd            projectpath.AbsoluteSystemPath
	Root           projectpath.AbsoluteSystemPath
	Converter      *instancepath.Converter
	RBXPathVersion string

	manifestFile string
}

// LogError prints an error to the UI and returns a BasicError
func (b *CmdBase) LogError(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	b.Logger.Error("error", "error", err)
	b.UI.Error(ui.Errorf("%v", err))
	return &Error{ExitCode: 1, Err: err}
}

// LogWarning logs an error and outputs it to the UI.
func (b *CmdBase) LogWarning(prefix string, err error) {
	b.Logger.Warn(prefix, "warning", err)

	if prefix != "" {
		prefix = " " + prefix + ": "
	}

	b.UI.Error(ui.Warnf("%s%v", prefix, err))
}

// LogInfo logs a message and outputs it to the UI.
func (b *CmdBase) LogInfo(msg string) {
	b.Logger.Info(msg)
	b.UI.Info(fmt.Sprintf("%s%s", ui.Dim("• "), msg))
}

// LoadManifest returns the tree of the project document in use, or nil when
// there is none. Unreadable or malformed documents are reported as warnings
// and treated as absent.
func (b *CmdBase) LoadManifest() *manifest.Node {
	if b.Config.NoManifest {
		return nil
	}
	logger := b.Logger.Named("manifest")
	if b.manifestFile != "" {
		path, err := projectpath.ResolveArg(b.manifestFile, b.Cwd)
		if err != nil {
			b.LogWarning("project document", err)
			return nil
		}
		project, err := manifest.Read(path)
		if err != nil {
			b.LogWarning("project document", err)
			return nil
		}
		return project.Tree
	}
	tree, err := manifest.Load(b.Root, b.Config.ManifestSuffix, logger)
	if err != nil {
		b.LogWarning("project document", err)
		return nil
	}
	return tree
}

// Anchor resolves a file argument and returns it relative to the project
// root with `/` separators.
func (b *CmdBase) Anchor(arg string) (projectpath.AnchoredUnixPath, error) {
	abs, err := projectpath.ResolveArg(arg, b.Cwd)
	if err != nil {
		return "", err
	}
	if !abs.Exists() {
		return "", fmt.Errorf("%v does not exist", arg)
	}
	if abs, err = abs.Realpath(); err != nil {
		return "", errors.Wrapf(err, "failed to resolve %v", arg)
	}
	anchored, err := b.Root.Anchor(abs)
	if err != nil {
		return "", fmt.Errorf("%v is not in the project at %v", arg, b.Root)
	}
	return anchored.ToUnixPath(), nil
}

// ResolveDir resolves a directory argument, defaulting to the project root,
// and checks that it lies inside the project.
func (b *CmdBase) ResolveDir(arg string) (projectpath.AbsoluteSystemPath, error) {
	if arg == "" {
		return b.Root, nil
	}
	abs, err := projectpath.ResolveArg(arg, b.Cwd)
	if err != nil {
		return "", err
	}
	if !abs.DirExists() {
		return "", fmt.Errorf("%v is not a directory", arg)
	}
	if abs, err = abs.Realpath(); err != nil {
		return "", errors.Wrapf(err, "failed to resolve %v", arg)
	}
	if _, err := b.Root.Anchor(abs); err != nil {
		return "", fmt.Errorf("%v is not in the project at %v", arg, b.Root)
	}
	return abs, nil
}

// Convert returns the expression for a root-relative path and whether it
// names a service.
func (b *CmdBase) Convert(rel projectpath.AnchoredUnixPath, tree *manifest.Node) (string, bool) {
	expr := b.Converter.Convert(rel.ToString(), tree)
	ok := instancepath.HasService(expr)
	if ok {
		b.Logger.Info("converted", "path", rel, "expression", expr)
	} else {
		b.Logger.Debug("no service for path", "path", rel)
	}
	return expr, ok
}
