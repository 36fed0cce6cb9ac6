// Command schema exports the JSON schema for catalog documents so authoring
// tooling can validate unit definitions before they reach the simulation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"hollowmarch/sim/catalog"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schema: missing -out path")
	}

	schema, err := buildSchema()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("schema: marshal: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schema: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schema: write: %v", err)
	}
}

func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	docSchema := reflector.ReflectFromType(reflect.TypeOf(catalog.Document{}))
	if docSchema == nil {
		return nil, fmt.Errorf("failed to reflect document schema")
	}
	docSchema.Title = "Hollowmarch Unit Catalog"
	docSchema.Description = "Designer-authored unit and enemy stat records consumed by the combat simulation."
	return docSchema, nil
}
