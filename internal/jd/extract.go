package jd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/prompts"
)

// jdSchemaDocument is the JSON Schema the LLM extraction output must satisfy
// before it is unmarshaled. Struct validation alone would coerce wrong types
// (e.g. skills as a string) into zero values instead of rejecting them.
const jdSchemaDocument = `{
  "type": "object",
  "required": ["company", "role"],
  "properties": {
    "company": {"type": "string"},
    "role": {"type": "string"},
    "location": {"type": "string"},
    "experience_required": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "description": {"type": "string"}
  }
}`

// Extract uses the LLM to pull a structured JD out of raw posting text and
// validates the result. The returned usage covers the extraction call only.
func Extract(ctx context.Context, client llm.Client, rawText string) (Schema, llm.Usage, error) {
	system := prompts.MustLoad("inbox.json", "jd_extract", 1)

	resp, err := client.Complete(ctx, system, rawText, true)
	if err != nil {
		return Schema{}, llm.Usage{}, fmt.Errorf("JD extraction call failed: %w", err)
	}

	schema, err := ParseJSON(resp.Text)
	if err != nil {
		return Schema{}, resp.Usage, err
	}
	return schema, resp.Usage, nil
}

// ParseJSON validates raw LLM JSON against the JD schema document and
// unmarshals it into a Schema.
func ParseJSON(raw string) (Schema, error) {
	raw = llm.CleanJSONBlock(raw)
	if strings.TrimSpace(raw) == "" {
		return Schema{}, fmt.Errorf("LLM returned empty JD JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(jdSchemaDocument),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return Schema{}, fmt.Errorf("LLM returned invalid JSON: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Schema{}, fmt.Errorf("JD JSON failed schema validation: %s", strings.Join(details, "; "))
	}

	var schema Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return Schema{}, fmt.Errorf("failed to decode JD JSON: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return Schema{}, err
	}
	return schema, nil
}
