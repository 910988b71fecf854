// Package store persists extraction results: as JSON or YAML documents,
// and in a SQLite database that keeps every run.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document formats accepted by WriteDocument.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteDocument encodes v to w. JSON output is indented and keeps
// non-ASCII text as is.
func WriteDocument(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown document format %q (want json or yaml)", format)
}
