package handler

import (
	"embed"

	"github.com/cjscheller/serverless-api-framework/internal/validation"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// mustSchema compiles an embedded schema. A broken schema is a build defect.
func mustSchema(name string) *validation.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}

	return validation.MustCompile(raw)
}
