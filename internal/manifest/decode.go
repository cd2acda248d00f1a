package manifest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"muzzammil.xyz/jsonc"
)

const (
	attributePrefix = "$"
	pathAttribute   = "$path"
)

// Project is a decoded project document.
type Project struct {
	Name string
	// Tree is nil when the document has no tree.
	Tree *Node
}

type rawProject struct {
	Name string          `json:"name"`
	Tree json.RawMessage `json:"tree"`
}

// Decode parses a project document. Comments are allowed.
func Decode(data []byte) (*Project, error) {
	data = jsonc.ToJSON(data)
	var raw rawProject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid project document")
	}
	project := &Project{Name: raw.Name}
	if isAbsent(raw.Tree) {
		return project, nil
	}
	tree := &Node{}
	if err := json.Unmarshal(raw.Tree, tree); err != nil {
		return nil, errors.Wrap(err, "invalid project tree")
	}
	project.Tree = tree
	return project, nil
}

// UnmarshalJSON decodes a tree node. Keys starting with `$` are attributes;
// of those only `$path` is kept. Other keys are children, in document order,
// and are skipped unless their value is an object.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("expected an object, found %s", describe(data))
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "reading %q", key)
		}

		switch {
		case key == pathAttribute:
			dir, ok, err := decodePath(value)
			if err != nil {
				return errors.Wrapf(err, "reading %q", key)
			}
			if ok {
				n.Path = &dir
			}
		case strings.HasPrefix(key, attributePrefix):
		case isObject(value):
			child := &Node{}
			if err := child.UnmarshalJSON(value); err != nil {
				return errors.Wrapf(err, "in %q", key)
			}
			n.Children = append(n.Children, Child{Name: key, Node: child})
		}
	}

	_, err = dec.Token()
	return err
}

// decodePath accepts `"dir"` and `{"optional": "dir"}`.
func decodePath(value json.RawMessage) (string, bool, error) {
	if isAbsent(value) {
		return "", false, nil
	}
	var dir string
	if err := json.Unmarshal(value, &dir); err == nil {
		return normalizeDir(dir), true, nil
	}
	var optional struct {
		Optional *string `json:"optional"`
	}
	if err := json.Unmarshal(value, &optional); err != nil {
		return "", false, errors.Errorf("expected a string or {\"optional\": string}, found %s", describe(value))
	}
	if optional.Optional == nil {
		return "", false, nil
	}
	return normalizeDir(*optional.Optional), true, nil
}

func isAbsent(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func describe(value []byte) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	default:
		return "a number"
	}
}
