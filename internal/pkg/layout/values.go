package layout

import "strings"

// Placeholder is drawn wherever a field has no value.
const Placeholder = "[não informado]"

// Values maps field ids to caller supplied strings.
type Values map[string]string

// Get returns the trimmed value for id, or Placeholder when it is absent or blank.
func (v Values) Get(id string) string {
	return v.Or(id, Placeholder)
}

// Or returns the trimmed value for id, or fallback when it is absent or blank.
func (v Values) Or(id, fallback string) string {
	if s := strings.TrimSpace(v[id]); s != "" {
		return s
	}
	return fallback
}

// Has reports whether id carries a non-blank value.
func (v Values) Has(id string) bool {
	return strings.TrimSpace(v[id]) != ""
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
