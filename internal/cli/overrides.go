package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk form of column type overrides:
//
//	columns:
//	  Email: Email
//	  Customer Code: Alphanumeric Only
//	  Notes: None
type schemaFile struct {
	Columns map[string]string `yaml:"columns"`
}

// override assigns a field type name to a header name.
type override struct {
	Column string
	Type   string
}

// readSchemaFile loads overrides sorted by column name so they apply in a
// stable order.
func readSchemaFile(path string) ([]override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse schema file %s: %w", path, err)
	}

	out := make([]override, 0, len(f.Columns))
	for col, typ := range f.Columns {
		out = append(out, override{Column: col, Type: typ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out, nil
}

// parseTypeFlags splits repeated COLUMN=TYPE flags. The split is on the last
// '=' so header names may contain one.
func parseTypeFlags(values []string) ([]override, error) {
	out := make([]override, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q", errBadTypeFlag, v)
		}
		out = append(out, override{Column: v[:i], Type: v[i+1:]})
	}
	return out, nil
}
