package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ariel-frischer/clog/internal/changelog"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

const (
	sectionsKey   = "sections"
	componentsKey = "components"
)

// aliasTables holds the [sections] and [components] tables. Map-based
// decoding loses key order, so these tables are read with each format's
// streaming parser instead of koanf.
type aliasTables struct {
	sections   []changelog.SectionAliases
	components map[string][]string
}

func newAliasTables() *aliasTables {
	return &aliasTables{components: map[string][]string{}}
}

// add records one name = [aliases] pair under table.
func (t *aliasTables) add(table, name string, aliases []string) {
	switch table {
	case sectionsKey:
		for i := range t.sections {
			if t.sections[i].Name == name {
				t.sections[i].Aliases = aliases
				return
			}
		}
		t.sections = append(t.sections, changelog.SectionAliases{Name: name, Aliases: aliases})
	case componentsKey:
		t.components[name] = aliases
	}
}

func isAliasTable(name string) bool {
	return name == sectionsKey || name == componentsKey
}

// scanAliasTables reads the alias tables from a config file in declaration
// order. Alias lists must contain only strings.
func scanAliasTables(data []byte, format fileFormat) (*aliasTables, error) {
	switch format {
	case formatYAML:
		return scanYAMLTables(data)
	case formatJSON:
		return scanJSONTables(data)
	default:
		return scanTOMLTables(data)
	}
}

func scanTOMLTables(data []byte) (*aliasTables, error) {
	tables := newAliasTables()

	var p unstable.Parser
	p.Reset(data)

	var current []string
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			current = tomlKey(expr)
		case unstable.ArrayTable:
			// Arrays of tables never hold aliases.
			current = nil
		case unstable.KeyValue:
			path := append(append([]string{}, current...), tomlKey(expr)...)
			if err := tables.addTOMLKeyValue(path, expr.Value()); err != nil {
				return nil, err
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return tables, nil
}

// addTOMLKeyValue handles both `[sections] Name = [...]` and the inline
// `sections = { Name = [...] }` forms.
func (t *aliasTables) addTOMLKeyValue(path []string, value *unstable.Node) error {
	switch {
	case len(path) == 2 && isAliasTable(path[0]):
		aliases, err := tomlStrings(path[0], path[1], value)
		if err != nil {
			return err
		}
		t.add(path[0], path[1], aliases)
	case len(path) == 1 && isAliasTable(path[0]):
		if value.Kind != unstable.InlineTable {
			return fmt.Errorf("%s must be a table", path[0])
		}
		it := value.Children()
		for it.Next() {
			kv := it.Node()
			if kv.Kind != unstable.KeyValue {
				continue
			}
			if err := t.addTOMLKeyValue(append([]string{path[0]}, tomlKey(kv)...), kv.Value()); err != nil {
				return err
			}
		}
	}
	return nil
}

func tomlKey(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func tomlStrings(table, name string, n *unstable.Node) ([]string, error) {
	if n.Kind != unstable.Array {
		return nil, fmt.Errorf("%s.%s must be an array of strings", table, name)
	}
	aliases := []string{}
	it := n.Children()
	for it.Next() {
		el := it.Node()
		if el.Kind == unstable.Comment {
			continue
		}
		if el.Kind != unstable.String {
			return nil, fmt.Errorf("%s.%s: aliases must be strings, found %s", table, name, el.Kind)
		}
		aliases = append(aliases, string(el.Data))
	}
	return aliases, nil
}

func scanYAMLTables(data []byte) (*aliasTables, error) {
	tables := newAliasTables()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return tables, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return tables, nil
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		table := root.Content[i].Value
		if !isAliasTable(table) {
			continue
		}
		body := root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			if body.Tag == "!!null" {
				continue
			}
			return nil, fmt.Errorf("%s must be a mapping", table)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			name := body.Content[j].Value
			list := body.Content[j+1]
			if list.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%s.%s must be a list of strings", table, name)
			}
			aliases := make([]string, 0, len(list.Content))
			for _, el := range list.Content {
				if el.Kind != yaml.ScalarNode || el.Tag != "!!str" {
					return nil, fmt.Errorf("%s.%s: aliases must be strings, found %s", table, name, el.Tag)
				}
				aliases = append(aliases, el.Value)
			}
			tables.add(table, name, aliases)
		}
	}
	return tables, nil
}

func scanJSONTables(data []byte) (*aliasTables, error) {
	tables := newAliasTables()

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		key, err := jsonKey(dec)
		if err != nil {
			return nil, err
		}
		if !isAliasTable(key) {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		if err := tables.scanJSONTable(dec, key); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (t *aliasTables) scanJSONTable(dec *json.Decoder, table string) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("%s must be an object", table)
	}
	for dec.More() {
		name, err := jsonKey(dec)
		if err != nil {
			return err
		}
		var raw []interface{}
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s.%s must be an array of strings", table, name)
		}
		aliases := make([]string, 0, len(raw))
		for _, v := range raw {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s.%s: aliases must be strings, found %T", table, name, v)
			}
			aliases = append(aliases, s)
		}
		t.add(table, name, aliases)
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return fmt.Errorf("unexpected end of input")
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, found %v", want, tok)
	}
	return nil
}

func jsonKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, found %v", tok)
	}
	return key, nil
}
