package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON. HTML escaping is off so payment URLs
// print verbatim.
type JSONFormatter struct {
	// Indent is the per-level indent. Empty means two spaces.
	Indent string
}

// Format writes the machine-readable form of data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	indent := f.Indent
	if indent == "" {
		indent = "  "
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	return enc.Encode(machineValue(data))
}
