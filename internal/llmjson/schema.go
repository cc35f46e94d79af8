package llmjson

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names accepted by Validate.
const (
	SchemaProfile       = "profile"
	SchemaSearchResults = "search_results"
	SchemaCompany       = "company"
	SchemaEnrichment    = "enrichment"
	SchemaRelevance     = "relevance"
	SchemaRationale     = "rationale"
)

var (
	schemaOnce sync.Once
	schemas    map[string]*gojsonschema.Schema
	schemaErr  error
)

// ValidationError reports which fields of a model response failed
// schema validation.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

// FieldError is a single validation failure at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "llmjson: response failed %s schema:", e.Schema)
	for _, f := range e.Fields {
		fmt.Fprintf(&sb, " %s: %s;", f.Field, f.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

func compileSchemas() {
	schemas = make(map[string]*gojsonschema.Schema)
	names := []string{
		SchemaProfile, SchemaSearchResults, SchemaCompany,
		SchemaEnrichment, SchemaRelevance, SchemaRationale,
	}
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			schemaErr = eris.Wrapf(err, "llmjson: reading embedded schema %q", name)
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			schemaErr = eris.Wrapf(err, "llmjson: compiling schema %q", name)
			return
		}
		schemas[name] = s
	}
}

// Validate checks a JSON document (as returned by Extract) against the
// named embedded schema. A failed validation returns *ValidationError.
func Validate(name, doc string) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	s, ok := schemas[name]
	if !ok {
		return eris.Errorf("llmjson: unknown schema %q", name)
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return ErrUnparsed
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Fields = append(verr.Fields, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// ExtractValidated combines Extract and Validate: it recovers the first
// JSON document from a raw model response and checks it against the
// named schema before returning it.
func ExtractValidated(name, raw string) (string, error) {
	doc, err := Extract(raw)
	if err != nil {
		return "", err
	}
	if err := Validate(name, doc); err != nil {
		return "", err
	}
	return doc, nil
}
