package registry

import (
	"bytes"
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// yamlDoc is a registry held as a YAML mapping of list names to sequences.
// Editing goes through the node tree so key order and comments survive.
type yamlDoc struct {
	root *yaml.Node // document node
}

func parseYAML(data []byte) (*yamlDoc, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		// Empty file: start an empty mapping.
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping of list names")
	}
	return &yamlDoc{root: &root}, nil
}

func (d *yamlDoc) mapping() *yaml.Node { return d.root.Content[0] }

func (d *yamlDoc) names() []string {
	m := d.mapping()
	names := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		names = append(names, m.Content[i].Value)
	}
	return names
}

func (d *yamlDoc) value(name string) *yaml.Node {
	m := d.mapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == name {
			return m.Content[i+1]
		}
	}
	return nil
}

func (d *yamlDoc) list(name string) ([]LinkEntry, error) {
	v := d.value(name)
	if v == nil {
		return nil, ErrNotFound
	}
	if isNull(v) {
		return []LinkEntry{}, nil
	}
	if v.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence", v.Line)
	}

	entries := make([]LinkEntry, 0, len(v.Content))
	for i, item := range v.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: element %d is not a mapping", item.Line, i+1)
		}
		fields := make(map[string]string, 2)
		for k := 0; k+1 < len(item.Content); k += 2 {
			key, val := item.Content[k], item.Content[k+1]
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: field %q is not a scalar", val.Line, key.Value)
			}
			fields[key.Value] = val.Value
		}
		href, okHref := fields["href"]
		label, okLabel := fields["label"]
		if !okHref || !okLabel || len(fields) != 2 {
			return nil, fmt.Errorf("line %d: element %d must have exactly href and label", item.Line, i+1)
		}
		entries = append(entries, LinkEntry{Href: href, Label: label})
	}
	return entries, nil
}

func (d *yamlDoc) appendEntry(name string, e LinkEntry) error {
	if _, err := d.list(name); err != nil {
		return err
	}
	v := d.value(name)
	if isNull(v) {
		*v = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	if len(v.Content) == 0 {
		// `name: []` grows into a block sequence.
		v.Style = 0
	}
	v.Content = append(v.Content, &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			scalar("href"), scalar(e.Href),
			scalar("label"), scalar(e.Label),
		},
	})
	return nil
}

func (d *yamlDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
