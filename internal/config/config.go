// Package config loads the conversion settings from the user config file,
// the repository config file, the environment and command line flags, in
// increasing order of precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/instancepath"
	"github.com/rbxpath/rbxpath/internal/manifest"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RepoConfigFile is the name of the per-project config file, looked up in
// the project root.
const RepoConfigFile = ".rbxpath.json"

const envPrefix = "rbxpath"

// Config holds the settings that shape conversions.
type Config struct {
	RootToken        string   `mapstructure:"roottoken"`
	SourceAlias      string   `mapstructure:"sourcealias"`
	ScriptExtensions []string `mapstructure:"scriptextensions"`
	RoleSuffixes     []string `mapstructure:"rolesuffixes"`
	ManifestSuffix   string   `mapstructure:"manifestsuffix"`
	Exclude          []string `mapstructure:"exclude"`
	NoManifest       bool     `mapstructure:"nomanifest"`
}

// ConverterOptions returns the instancepath options described by c.
func (c *Config) ConverterOptions() instancepath.Options {
	return instancepath.Options{
		RootToken:        c.RootToken,
		SourceAlias:      c.SourceAlias,
		ScriptExtensions: c.ScriptExtensions,
		RoleSuffixes:     c.RoleSuffixes,
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"root-token":      "roottoken",
	"source-alias":    "sourcealias",
	"manifest-suffix": "manifestsuffix",
	"exclude":         "exclude",
	"no-manifest":     "nomanifest",
}

// envKeys maps config keys to environment variables.
var envKeys = map[string]string{
	"roottoken":        "RBXPATH_ROOT_TOKEN",
	"sourcealias":      "RBXPATH_SOURCE_ALIAS",
	"scriptextensions": "RBXPATH_SCRIPT_EXTENSIONS",
	"rolesuffixes":     "RBXPATH_ROLE_SUFFIXES",
	"manifestsuffix":   "RBXPATH_MANIFEST_SUFFIX",
	"exclude":          "RBXPATH_EXCLUDE",
	"nomanifest":       "RBXPATH_NO_MANIFEST",
}

// AddFlags adds the config overrides to the given flagset
func AddFlags(flags *pflag.FlagSet) {
	flags.String("root-token", "", "Override the token every expression starts with")
	flags.String("source-alias", "", "Override the source directory dropped from mirrored paths")
	flags.String("manifest-suffix", "", "Override the file name suffix of project documents")
	flags.StringArray("exclude", []string{}, "Glob of project paths to skip when listing or watching")
	flags.Bool("no-manifest", false, "Ignore project documents and mirror the filesystem")
}

// DefaultUserConfigPath returns the default platform-dependent place that
// we store the user-specific configuration.
func DefaultUserConfigPath() projectpath.AbsoluteSystemPath {
	return projectpath.AbsoluteSystemPathFromUpstream(filepath.Join(xdg.ConfigHome, "rbxpath", "config.json"))
}

// GetRepoConfigPath returns the repository config file for a project root.
func GetRepoConfigPath(root projectpath.AbsoluteSystemPath) projectpath.AbsoluteSystemPath {
	return root.UntypedJoin(RepoConfigFile)
}

// Load reads the user config file, then the repository config file, then
// the environment, then any flags that were set. Missing files are fine.
func Load(userConfigPath, repoConfigPath projectpath.AbsoluteSystemPath, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)

	defaults := instancepath.DefaultOptions()
	v.SetDefault("roottoken", defaults.RootToken)
	v.SetDefault("sourcealias", defaults.SourceAlias)
	v.SetDefault("scriptextensions", defaults.ScriptExtensions)
	v.SetDefault("rolesuffixes", defaults.RoleSuffixes)
	v.SetDefault("manifestsuffix", manifest.DefaultSuffix)
	v.SetDefault("exclude", []string{})
	v.SetDefault("nomanifest", false)

	for _, path := range []projectpath.AbsoluteSystemPath{userConfigPath, repoConfigPath} {
		if path == "" {
			continue
		}
		v.SetConfigFile(path.ToString())
		if err := v.MergeInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read config file %v", path)
		}
	}

	for key, env := range envKeys {
		v.MustBindEnv(key, env)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
