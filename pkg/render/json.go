package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dkoosis/ptrmux/pkg/pattern"
)

// JSONVersion is the schema version of the JSON envelope.
const JSONVersion = "1.0"

// JSON emits the report as one indented document for scripts and CI.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

type envelope struct {
	Tool     string   `json:"tool"`
	Version  string   `json:"version"`
	Patterns []tagged `json:"patterns"`
}

// tagged pairs a pattern with its type so consumers can dispatch on it.
type tagged struct {
	Type pattern.PatternType `json:"type"`
	Data pattern.Pattern     `json:"data"`
}

// Render encodes patterns in order. Test names are written verbatim, so
// HTML escaping is off.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	env := envelope{Tool: "ptrmux", Version: JSONVersion, Patterns: make([]tagged, len(patterns))}
	for i, p := range patterns {
		env.Patterns[i] = tagged{Type: p.Type(), Data: p}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Sprintf("{\"tool\":\"ptrmux\",\"error\":%q}\n", err.Error())
	}
	return buf.String()
}
