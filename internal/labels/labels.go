package labels

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dgallion1/pchreport/internal/table"
	"gopkg.in/yaml.v3"
)

// Map resolves node identifiers to display labels.
type Map struct {
	names map[table.NodeID]string
}

type fileFormat struct {
	Nodes map[string]string `yaml:"nodes"`
}

// Default returns the labels shipped with the standard vehicle model.
func Default() Map {
	return Map{names: map[table.NodeID]string{
		"8000001": "Engine Mount Front Top LH",
	}}
}

// Load decodes a YAML label file of the form:
//
//	nodes:
//	  8000001: Engine Mount Front Top LH
func Load(r io.Reader) (Map, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fileFormat
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Map{}, fmt.Errorf("decode labels: %w", err)
	}

	m := Map{names: make(map[table.NodeID]string, len(f.Nodes))}
	for id, name := range f.Nodes {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return Map{}, fmt.Errorf("decode labels: node id %q is not numeric", id)
		}
		m.names[table.NodeID(id)] = name
	}
	return m, nil
}

// LoadFile reads a label file; an empty path yields the defaults.
func LoadFile(path string) (Map, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Map{}, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Label returns the display label of a node, or "Node {id}" when unknown.
func (m Map) Label(id table.NodeID) string {
	if name, ok := m.names[id]; ok && name != "" {
		return name
	}
	return "Node " + string(id)
}

// Len returns the number of labelled nodes.
func (m Map) Len() int {
	return len(m.names)
}
