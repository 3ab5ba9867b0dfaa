// Package swagger serves the OpenAPI document and the Swagger UI.
package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

const SpecRoute = "/openapi.yml"

// Spec is a loaded and validated OpenAPI document.
type Spec struct {
	Raw []byte
	Doc *openapi3.T
}

// Load reads the document at path and validates it so a broken contract
// fails at startup instead of in the UI.
func Load(ctx context.Context, path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi spec: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}
	return &Spec{Raw: raw, Doc: doc}, nil
}

// OperationCount is used in the startup log line.
func (s *Spec) OperationCount() int {
	n := 0
	if s.Doc.Paths == nil {
		return 0
	}
	for _, item := range s.Doc.Paths.Map() {
		n += len(item.Operations())
	}
	return n
}

func (s *Spec) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.Raw)
}

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecRoute),
	)
}
