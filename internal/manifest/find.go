package manifest

import (
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/projectpath"
)

// DefaultSuffix is the file name suffix of project documents.
const DefaultSuffix = ".project.json"

// preferredStem names the document chosen when a root holds several.
const preferredStem = "default"

// Find returns the project document in root, if any. When several documents
// are present, default<suffix> wins, then the first by name.
func Find(root projectpath.AbsoluteSystemPath, suffix string) (projectpath.AbsoluteSystemPath, bool, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	// The suffix is compared literally, so it is not part of the pattern.
	matches, err := doublestar.Glob(os.DirFS(root.ToString()), "*")
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to list project documents in %v", root)
	}
	candidates := matches[:0]
	for _, name := range matches {
		if isDocumentName(name, suffix) && root.UntypedJoin(name).FileExists() {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	sort.Strings(candidates)
	chosen := candidates[0]
	for _, name := range candidates {
		if name == preferredStem+suffix {
			chosen = name
			break
		}
	}
	return root.UntypedJoin(chosen), true, nil
}

// HasDocument reports whether entries include a project document. It is
// used when searching upward for a project root.
func HasDocument(suffix string) projectpath.DirMatcher {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return func(entries []os.DirEntry) bool {
		for _, entry := range entries {
			if !entry.IsDir() && isDocumentName(entry.Name(), suffix) {
				return true
			}
		}
		return false
	}
}

func isDocumentName(name, suffix string) bool {
	return name != suffix && strings.HasSuffix(name, suffix)
}

// Read loads and decodes the project document at path.
func Read(path projectpath.AbsoluteSystemPath) (*Project, error) {
	data, err := path.ReadFile()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %v", path)
	}
	project, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%v", path.Base())
	}
	return project, nil
}

// Load finds and reads the project document in root. A missing document,
// or one without a tree, yields a nil tree and no error.
func Load(root projectpath.AbsoluteSystemPath, suffix string, logger hclog.Logger) (*Node, error) {
	path, ok, err := Find(root, suffix)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Debug("no project document", "root", root)
		return nil, nil
	}
	project, err := Read(path)
	if err != nil {
		return nil, err
	}
	if project.Tree == nil {
		logger.Debug("project document has no tree", "path", path)
		return nil, nil
	}
	logger.Debug("loaded project document", "path", path, "name", project.Name)
	return project.Tree, nil
}
