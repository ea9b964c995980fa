package catalog

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// questionSchema is what one question bank entry must look like to be
// studied. Extra fields are allowed.
const questionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["question", "options", "answers"],
  "properties": {
    "question":   {"type": "string", "minLength": 1},
    "options":    {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "answers":    {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "numOptions": {"type": "integer", "minimum": 0}
  }
}`

const questionSchemaURL = "mem://studydeck/question.json"

var compiledQuestion = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(questionSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(questionSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(questionSchemaURL)
})

// ValidateEntry checks one raw question bank entry.
func ValidateEntry(raw string) error {
	sch, err := compiledQuestion()
	if err != nil {
		return errors.Wrap(err, "compile question schema")
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "parse entry")
	}
	return sch.Validate(inst)
}
