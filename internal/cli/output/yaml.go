package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// PrintYAML writes data as one YAML document.
func PrintYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// PrintYAMLDocument writes data as the next document of a multi-document
// stream: every document but the first is preceded by a "---" marker, so
// the reports of several targets still parse as YAML.
func PrintYAMLDocument(w io.Writer, data any, first bool) error {
	if !first {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}
	return PrintYAML(w, data)
}
