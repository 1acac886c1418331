package api

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var apiDescription []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the embedded API description, parsed and validated once.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()

		doc, err := loader.LoadFromData(apiDescription)
		if err != nil {
			swaggerErr = fmt.Errorf("error loading api description: %w", err)
			return
		}

		err = doc.Validate(context.Background())
		if err != nil {
			swaggerErr = fmt.Errorf("invalid api description: %w", err)
			return
		}

		swagger = doc
	})

	return swagger, swaggerErr
}
