// SPDX-License-Identifier: Apache-2.0

package results

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing results schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("loading results schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Schema returns the JSON Schema of the results file.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// Validate checks a YAML or JSON results document against the schema.
func Validate(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	asJSON, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("parsing results: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return fmt.Errorf("parsing results: %w", err)
	}
	return sch.Validate(doc)
}
