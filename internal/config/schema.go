package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "pagesmith.schema.json"

//go:embed schema/config.schema.json
var schemaJSON []byte

var messages = message.NewPrinter(language.English)

var projectSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding config schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("registering config schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Issue is one place where a project file breaks the config schema.
type Issue struct {
	Path    string // JSON pointer into the file, e.g. "/detail_groups/0/list"; empty for the top level
	Message string
}

// InvalidError lists the schema violations found in a project file.
type InvalidError struct {
	Path   string
	Issues []Issue
}

func (e *InvalidError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config %s:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		if issue.Path != "" {
			b.WriteString(issue.Path + ": ")
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Validate checks the project file read from path against the config schema.
// Violations are returned as an *InvalidError; any other error means data
// could not be read as YAML.
func Validate(path string, data []byte) error {
	schema, err := projectSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc == nil {
		// An empty file keeps every default.
		doc = map[string]any{}
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	err = schema.Validate(inst)
	var verr *jsonschema.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return newInvalidError(path, verr)
	default:
		return fmt.Errorf("validating %s: %w", path, err)
	}
}

// newInvalidError flattens the validator's cause tree into one issue per
// failing leaf keyword. Repeats of the same path and message collapse.
func newInvalidError(path string, verr *jsonschema.ValidationError) *InvalidError {
	e := &InvalidError{Path: path}
	seen := make(map[Issue]bool)

	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) > 0 {
			for _, cause := range v.Causes {
				walk(cause)
			}
			return
		}
		if v.ErrorKind == nil {
			return
		}
		keywords := v.ErrorKind.KeywordPath()
		if len(keywords) == 0 {
			return
		}
		// allOf and $ref only group the failures beneath them.
		if last := keywords[len(keywords)-1]; last == "allOf" || last == "$ref" {
			return
		}
		issue := Issue{Message: v.ErrorKind.LocalizedString(messages)}
		if len(v.InstanceLocation) > 0 {
			issue.Path = "/" + strings.Join(v.InstanceLocation, "/")
		}
		if !seen[issue] {
			seen[issue] = true
			e.Issues = append(e.Issues, issue)
		}
	}
	walk(verr)

	if len(e.Issues) == 0 {
		e.Issues = []Issue{{Message: verr.Error()}}
	}
	return e
}
