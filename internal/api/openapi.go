package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"

	"github.com/pixelgenesis/credential-node/internal/log"
)

//go:embed api.yaml
var apiSpec []byte

// GetSwagger parses the embedded OpenAPI document
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apiSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading api spec: %w", err)
	}
	return doc, nil
}

// requestValidator validates requests against the operations of the OpenAPI document. Routing
// is done by chi so each handler is bound to its operation explicitly.
type requestValidator struct {
	doc *openapi3.T
}

func newRequestValidator(ctx context.Context) (*requestValidator, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid api spec: %w", err)
	}
	return &requestValidator{doc: doc}, nil
}

// operation returns a middleware validating parameters and body of the operation found at
// path for method. It panics if the document does not declare it.
func (v *requestValidator) operation(method, path string) func(http.Handler) http.Handler {
	pathItem := v.doc.Paths.Value(path)
	if pathItem == nil || pathItem.GetOperation(method) == nil {
		panic(fmt.Sprintf("operation %s %s not found in api spec", method, path))
	}
	route := &routers.Route{
		Spec:      v.doc,
		Path:      path,
		PathItem:  pathItem,
		Method:    method,
		Operation: pathItem.GetOperation(method),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams(r),
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				log.Debug(r.Context(), "request does not match the api spec", "err", err, "operation", route.Operation.OperationID)
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func pathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
