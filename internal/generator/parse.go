package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"photoframe/internal/textcache"
)

const entrySchema = `{
  "type": "object",
  "required": ["content", "type"],
  "additionalProperties": false,
  "properties": {
    "content": {"type": "string", "minLength": 1},
    "type": {"type": "string", "enum": ["poem", "quote"]},
    "author": {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(entrySchema)

// Parse decodes a model reply. Markdown code fences around the JSON are
// tolerated. Anything that does not validate wraps ErrMalformed.
func Parse(raw string) (textcache.Entry, error) {
	body := stripFences(raw)
	if body == "" {
		return textcache.Entry{}, fmt.Errorf("%w: empty reply", ErrMalformed)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return textcache.Entry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return textcache.Entry{}, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var entry textcache.Entry
	if err := dec.Decode(&entry); err != nil {
		return textcache.Entry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	entry.Content = strings.TrimSpace(entry.Content)
	if entry.Content == "" {
		return textcache.Entry{}, fmt.Errorf("%w: blank content", ErrMalformed)
	}
	if entry.Author != nil && strings.TrimSpace(*entry.Author) == "" {
		entry.Author = nil
	}

	return entry, nil
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag on the opening fence.
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
