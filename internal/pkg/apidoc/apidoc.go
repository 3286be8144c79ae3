// Package apidoc loads the embedded OpenAPI document of the JSON API and
// validates incoming requests against it.
package apidoc

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"lead-chat/internal/pkg/web"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/rs/zerolog/log"
)

//go:embed openapi.yaml
var document []byte

type Document struct {
	spec   *openapi3.T
	router routers.Router
	json   []byte
}

func Load(ctx context.Context) (*Document, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("openapi3.Loader.LoadFromData() failed: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi document is invalid: %w", err)
	}

	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("legacy.NewRouter() failed: %w", err)
	}

	content, err := spec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi3.T.MarshalJSON() failed: %w", err)
	}

	return &Document{spec: spec, router: router, json: content}, nil
}

func (instance *Document) Paths() []string {
	return instance.spec.Paths.InMatchingOrder()
}

func (instance *Document) Handler(request *http.Request, simulatedDelay int) *web.Response {
	return &web.Response{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Content:     instance.json,
	}
}

// Middleware rejects requests whose parameters don't match the document.
// Request bodies are not checked; paths the document doesn't know pass through.
func (instance *Document) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		route, pathParams, err := instance.router.FindRoute(request)
		if err != nil {
			next.ServeHTTP(responseWriter, request)
			return
		}

		err = openapi3filter.ValidateRequest(request.Context(), &openapi3filter.RequestValidationInput{
			Request:    request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				ExcludeRequestBody: true,
				MultiError:         false,
			},
		})
		if err != nil {
			log.Debug().Err(err).Str("path", request.URL.Path).Msg("request validation failed")
			web.TextResponse(http.StatusBadRequest, err.Error(), nil).Write(responseWriter)
			return
		}

		next.ServeHTTP(responseWriter, request)
	})
}
