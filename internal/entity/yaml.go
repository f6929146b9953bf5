package entity

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/swan/internal/alerr"
)

// Tags marking a default computed at runtime, e.g. `default: !deferred time()`.
const (
	tagDeferred = "!deferred"
	tagComputed = "!computed"
)

// ParseYAML decodes one entity from a YAML document. source names the file
// in error messages and provides the default entity name.
func ParseYAML(data []byte, source string) (*Entity, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, alerr.New(alerr.ErrInvalidEntity, "entity file is empty").WithFile(source, 0)
		}
		return nil, alerr.Wrap(alerr.ErrParse, err, "failed to parse entity YAML").WithFile(source, 0)
	}

	root, err := fromYAML(&doc)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrParse, err, "failed to parse entity YAML").WithFile(source, 0)
	}
	d := &decoder{source: source}
	return d.entity(root)
}

func fromYAML(n *yaml.Node) (*value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &value{kind: kindNull, line: n.Line}, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		v := &value{kind: kindMapping, line: n.Line}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, item := n.Content[i], n.Content[i+1]
			child, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			v.keys = append(v.keys, key.Value)
			v.items = append(v.items, child)
		}
		return v, nil
	case yaml.SequenceNode:
		v := &value{kind: kindSequence, line: n.Line}
		for _, item := range n.Content {
			child, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, child)
		}
		return v, nil
	}

	v := &value{kind: kindScalar, line: n.Line}
	switch n.ShortTag() {
	case tagDeferred, tagComputed:
		v.kind = kindDeferred
	case "!!null":
		v.kind = kindNull
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		v.scalar = b
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		v.scalar = i
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		v.scalar = f
	default:
		v.scalar = n.Value
	}
	return v, nil
}
