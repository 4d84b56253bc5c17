package output

import (
	"encoding/json"
	"io"
)

// PrintJSON writes data as indented JSON. UNC paths and share names are
// written as-is: HTML escaping is off.
func PrintJSON(w io.Writer, data any) error {
	return encodeJSON(w, data, "  ")
}

// PrintJSONLine writes data as a single line of JSON, the unit of the
// streamed browse output.
func PrintJSONLine(w io.Writer, data any) error {
	return encodeJSON(w, data, "")
}

func encodeJSON(w io.Writer, data any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(data)
}
