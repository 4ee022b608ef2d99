package config

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// MatrixConfig is a parsed build matrix.
//
// It is a read-only snapshot of the file it was parsed from: the order of
// os entries, ecosystems and versions is kept exactly as written.
type MatrixConfig struct {
	os            []string
	ecosystems    []string
	versions      map[string][]string
	ghPagesBranch string
	ignored       []string
}

// New builds a MatrixConfig in code. Ecosystems are ordered by name since
// a Go map carries no order. All inputs are copied.
func New(osList []string, versions map[string][]string, ghPagesBranch string) *MatrixConfig {
	ecosystems := make([]string, 0, len(versions))
	for eco := range versions {
		ecosystems = append(ecosystems, eco)
	}
	sort.Strings(ecosystems)

	return newMatrixConfig(osList, ecosystems, versions, ghPagesBranch)
}

func newMatrixConfig(osList, ecosystems []string, versions map[string][]string, ghPagesBranch string) *MatrixConfig {
	cfg := &MatrixConfig{
		os:            cloneStrings(osList),
		ecosystems:    cloneStrings(ecosystems),
		versions:      make(map[string][]string, len(versions)),
		ghPagesBranch: ghPagesBranch,
		ignored:       []string{},
	}
	for eco, list := range versions {
		cfg.versions[eco] = cloneStrings(list)
	}
	return cfg
}

// OS returns the target operating systems.
func (c *MatrixConfig) OS() []string {
	return cloneStrings(c.os)
}

// Ecosystems returns the keys of versions in document order.
func (c *MatrixConfig) Ecosystems() []string {
	return cloneStrings(c.ecosystems)
}

// Versions returns a copy of the ecosystem to versions mapping.
func (c *MatrixConfig) Versions() map[string][]string {
	out := make(map[string][]string, len(c.versions))
	for eco, list := range c.versions {
		out[eco] = cloneStrings(list)
	}
	return out
}

// VersionsFor returns the versions listed for one ecosystem.
func (c *MatrixConfig) VersionsFor(ecosystem string) ([]string, bool) {
	list, ok := c.versions[ecosystem]
	if !ok {
		return nil, false
	}
	return cloneStrings(list), true
}

// GhPagesBranch returns the branch generated pages are published to.
func (c *MatrixConfig) GhPagesBranch() string {
	return c.ghPagesBranch
}

// Ignored returns the unrecognized top-level keys a tolerant parse skipped,
// in document order. It is empty for configs built with New.
func (c *MatrixConfig) Ignored() []string {
	return cloneStrings(c.ignored)
}

// MarshalJSON writes the three recognized keys, with versions in document
// order, so that parsing the output yields an equal MatrixConfig.
func (c *MatrixConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	osJSON, err := json.Marshal(nonNil(c.os))
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"os":`)
	buf.Write(osJSON)

	buf.WriteString(`,"versions":{`)
	for i, eco := range c.ecosystems {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(eco)
		if err != nil {
			return nil, err
		}
		list, err := json.Marshal(nonNil(c.versions[eco]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')

	branch, err := json.Marshal(c.ghPagesBranch)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"ghpages_branch":`)
	buf.Write(branch)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML renders the config as an ordered YAML mapping.
func (c *MatrixConfig) MarshalYAML() (interface{}, error) {
	versions := &yaml.Node{Kind: yaml.MappingNode}
	for _, eco := range c.ecosystems {
		versions.Content = append(versions.Content, scalar(eco), sequence(c.versions[eco]))
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("os"), sequence(c.os),
			scalar("versions"), versions,
			scalar("ghpages_branch"), scalar(c.ghPagesBranch),
		},
	}, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func sequence(items []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	if len(items) == 0 {
		node.Style = yaml.FlowStyle
	}
	for _, item := range items {
		node.Content = append(node.Content, scalar(item))
	}
	return node
}

// cloneStrings copies s. The result is never nil, so an empty list
// survives a round trip as [] rather than null.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
