package httpapi

import (
	_ "embed"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// openAPIDocument holds the embedded document in both served encodings.
type openAPIDocument struct {
	yaml []byte
	json []byte
}

func loadOpenAPI(raw []byte) (*openAPIDocument, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if _, ok := doc["openapi"]; !ok {
		return nil, fmt.Errorf("openapi document is missing the openapi version field")
	}

	encoded, err := sonic.ConfigStd.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	return &openAPIDocument{yaml: raw, json: encoded}, nil
}

func mustLoadOpenAPI() *openAPIDocument {
	doc, err := loadOpenAPI(openAPISpec)
	if err != nil {
		panic(err)
	}
	return doc
}

// jsonCompatible rewrites map[any]any nodes, which yaml produces for
// non-string keys, into string-keyed maps.
func jsonCompatible(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = jsonCompatible(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = jsonCompatible(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = jsonCompatible(child)
		}
		return node
	default:
		return v
	}
}

func (h *Handler) OpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	_, span := startSpan(r.Context(), "httpapi.Handler.OpenAPIYAML")
	defer span.End()

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(h.openAPI.yaml)
}

func (h *Handler) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	_, span := startSpan(r.Context(), "httpapi.Handler.OpenAPIJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.openAPI.json)
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	_, span := startSpan(r.Context(), "httpapi.Handler.SwaggerUI")
	defer span.End()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(swaggerHTML))
}

const swaggerHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Infantry Community API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>
      html, body { margin: 0; padding: 0; }
      #swagger-ui { max-width: 1200px; margin: 0 auto; }
    </style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
      });
    </script>
  </body>
</html>`
