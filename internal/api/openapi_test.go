package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	OpenAPI string                          `yaml:"openapi"`
	Paths   map[string]map[string]yaml.Node `yaml:"paths"`
}

func TestOpenAPIServedWithoutToken(t *testing.T) {
	a := assert.New(t)
	c := newClient(t, "s3cret")
	c.token = ""

	rec := c.do(http.MethodGet, "/api/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a.Equal("application/yaml", rec.Header().Get("Content-Type"))

	var doc openAPIDoc
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	a.True(strings.HasPrefix(doc.OpenAPI, "3."))
}

func TestOpenAPIDocumentsEveryRoute(t *testing.T) {
	var doc openAPIDoc
	require.NoError(t, yaml.Unmarshal(openAPI, &doc))

	c := newClient(t, "")
	seen := 0
	err := c.router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := rt.GetPathTemplate()
		if err != nil || !strings.HasPrefix(tpl, "/api/devices") {
			return nil
		}
		methods, err := rt.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			ops, ok := doc.Paths[tpl]
			if assert.True(t, ok, "missing path %s", tpl) {
				_, ok = ops[strings.ToLower(m)]
				assert.True(t, ok, "missing %s %s", m, tpl)
			}
			seen++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, seen)
}
