// Package instancepath turns project-relative script paths into the
// expressions a running game uses to reach the corresponding module, such as
// game:GetService("ReplicatedStorage").Modules.Foo.
package instancepath

import (
	"fmt"
	"path"
	"strings"

	"github.com/rbxpath/rbxpath/internal/manifest"
)

const serviceCallPrefix = ":GetService("

// Options controls the naming conventions used during conversion.
type Options struct {
	// RootToken begins every expression.
	RootToken string
	// SourceAlias is the conventional source directory that is dropped from
	// mirrored paths when it is the first segment.
	SourceAlias string
	// ScriptExtensions are stripped from file names, case-insensitively.
	ScriptExtensions []string
	// RoleSuffixes are stripped when they sit between the base name and a
	// script extension.
	RoleSuffixes []string
}

// DefaultOptions returns the conventions of a standard project layout.
func DefaultOptions() Options {
	return Options{
		RootToken:        "game",
		SourceAlias:      "src",
		ScriptExtensions: []string{"lua", "luau"},
		RoleSuffixes:     []string{"server", "client", "shared"},
	}
}

// Converter builds instance expressions for a fixed set of Options.
type Converter struct {
	opts Options
}

// NewConverter returns a Converter. An empty RootToken and nil lists fall
// back to defaults; an empty SourceAlias disables alias stripping.
func NewConverter(opts Options) *Converter {
	defaults := DefaultOptions()
	if opts.RootToken == "" {
		opts.RootToken = defaults.RootToken
	}
	if opts.ScriptExtensions == nil {
		opts.ScriptExtensions = defaults.ScriptExtensions
	}
	if opts.RoleSuffixes == nil {
		opts.RoleSuffixes = defaults.RoleSuffixes
	}
	return &Converter{opts: opts}
}

// Options returns the options in effect.
func (c *Converter) Options() Options {
	return c.opts
}

var defaultConverter = NewConverter(DefaultOptions())

// Convert converts filePath with the default options.
func Convert(filePath string, tree *manifest.Node) string {
	return defaultConverter.Convert(filePath, tree)
}

// ModuleName extracts the module name from a file name with the default
// options.
func ModuleName(filename string) string {
	return defaultConverter.ModuleName(filename)
}

// Convert returns the instance expression for filePath, a path relative to
// the project root. tree may be nil. The result is the bare root token when
// no service segment can be derived; see HasService.
func (c *Converter) Convert(filePath string, tree *manifest.Node) string {
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	moduleName := c.ModuleName(path.Base(normalized))
	dirParts := SplitDir(path.Dir(normalized))

	return c.assemble(c.DirSegments(dirParts, tree), moduleName)
}

// Segments returns the instance names for the directory of filePath,
// service first, without the module name.
func (c *Converter) Segments(filePath string, tree *manifest.Node) []string {
	return c.DirSegments(SplitDir(path.Dir(strings.ReplaceAll(filePath, "\\", "/"))), tree)
}

// DirSegments returns the instance names for a directory given as parts.
func (c *Converter) DirSegments(dirParts []string, tree *manifest.Node) []string {
	if segments, ok := c.manifestSegments(tree, dirParts); ok {
		return segments
	}
	return c.mirroredSegments(dirParts)
}

func (c *Converter) manifestSegments(tree *manifest.Node, dirParts []string) ([]string, bool) {
	match, ok := ResolveWithFallback(tree, dirParts)
	if !ok {
		return nil, false
	}
	return match.Segments(), true
}

func (c *Converter) mirroredSegments(dirParts []string) []string {
	if len(dirParts) > 0 && c.opts.SourceAlias != "" && dirParts[0] == c.opts.SourceAlias {
		return dirParts[1:]
	}
	return dirParts
}

func (c *Converter) assemble(segments []string, moduleName string) string {
	var b strings.Builder
	b.WriteString(c.opts.RootToken)
	if len(segments) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "%s\"%s\")", serviceCallPrefix, segments[0])
	for _, segment := range segments[1:] {
		appendMember(&b, segment)
	}
	if !IsInitModule(moduleName) {
		appendMember(&b, moduleName)
	}
	return b.String()
}

// ModuleName strips a script extension and then a role suffix from
// filename. Names without a script extension are returned unchanged.
func (c *Converter) ModuleName(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot == -1 || !containsFold(c.opts.ScriptExtensions, filename[dot+1:]) {
		return filename
	}
	name := filename[:dot]
	if dot = strings.LastIndex(name, "."); dot != -1 && containsFold(c.opts.RoleSuffixes, name[dot+1:]) {
		name = name[:dot]
	}
	return name
}

// IsScript reports whether filename carries one of the script extensions.
func (c *Converter) IsScript(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	return dot != -1 && containsFold(c.opts.ScriptExtensions, filename[dot+1:])
}

// IsInitModule reports whether a module stands for its directory. Any name
// starting with "init", in any case, qualifies.
func IsInitModule(moduleName string) bool {
	return strings.HasPrefix(strings.ToLower(moduleName), "init")
}

// HasService reports whether expr reaches a service. Expressions without one
// are not usable at runtime.
func HasService(expr string) bool {
	return strings.Contains(expr, serviceCallPrefix)
}

// SplitDir splits a slash-separated directory into its segments, dropping
// empty and "." parts.
func SplitDir(dir string) []string {
	var parts []string
	for _, part := range strings.Split(dir, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
