package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// structureFile is the on-disk shape of a field definition list
type structureFile struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

// LoadStructure reads a field definition list from a YAML or JSON file.
// The file holds either a bare list or an object with a "fields" key.
func LoadStructure(path string) ([]Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure file %s: %w", path, err)
	}
	fields, err := ParseStructure(raw, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, fmt.Errorf("structure file %s: %w", path, err)
	}
	return fields, nil
}

// ParseStructure decodes a field definition list from JSON or YAML text
func ParseStructure(raw []byte, isJSON bool) ([]Field, error) {
	trimmed := strings.TrimSpace(string(raw))

	var fields []Field
	var err error
	if isJSON {
		if strings.HasPrefix(trimmed, "[") {
			err = json.Unmarshal(raw, &fields)
		} else {
			var sf structureFile
			err = json.Unmarshal(raw, &sf)
			fields = sf.Fields
		}
	} else {
		var node yaml.Node
		if err = yaml.Unmarshal(raw, &node); err == nil && len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err = node.Decode(&fields)
		} else if err == nil {
			var sf structureFile
			err = yaml.Unmarshal(raw, &sf)
			fields = sf.Fields
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse structure: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("structure has no fields")
	}
	return fields, nil
}
