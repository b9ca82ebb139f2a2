package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Equal(t, "v2", NewRouter(gin.New(), WithAPIVersion("v2")).apiVersion)
}

func TestRouter_SetupMountsUnderVersion(t *testing.T) {
	engine := gin.New()
	orders := NewDomainGroup("orders", "/orders").GET("/:id", reply("order"))

	NewRouter(engine, WithAPIVersion("v2")).Register(orders).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/orders/42").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/orders/42").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("orders", "/orders").
		GET("", reply("list")).
		POST("/checkout", reply("checkout")).
		PATCH("/:id/status", reply("status")).
		DELETE("/:id", reply("delete")).
		Handle(http.MethodPut, "/:id", reply("replace"))
	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/orders", "list"},
		{http.MethodPost, "/api/v1/orders/checkout", "checkout"},
		{http.MethodPatch, "/api/v1/orders/7/status", "status"},
		{http.MethodDelete, "/api/v1/orders/7", "delete"},
		{http.MethodPut, "/api/v1/orders/7", "replace"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestDomainGroup_SubgroupInheritsMiddleware(t *testing.T) {
	engine := gin.New()
	products := NewDomainGroup("catalog", "/catalog/products").
		Use(func(c *gin.Context) {
			c.Header("X-Group", "catalog")
			c.Next()
		}).
		GET("/:id", reply("product"))
	products.Group("catalog-admin", "").
		Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusForbidden)
		}).
		DELETE("/:id", reply("deleted"))
	NewRouter(engine).Register(products).Setup()

	read := serve(engine, http.MethodGet, "/api/v1/catalog/products/9")
	assert.Equal(t, http.StatusOK, read.Code)
	assert.Equal(t, "catalog", read.Header().Get("X-Group"))

	del := serve(engine, http.MethodDelete, "/api/v1/catalog/products/9")
	assert.Equal(t, http.StatusForbidden, del.Code)
	assert.Equal(t, "catalog", del.Header().Get("X-Group"))
}

func TestDomainGroup_NestedPrefixes(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("analytics", "/analytics")
	g.Group("reports", "/reports").GET("/revenue", reply("revenue"))

	assert.Equal(t, "analytics", g.Name())
	assert.Equal(t, "/analytics", g.Prefix())

	NewRouter(engine).Register(g, NewDomainGroup("health", "/health").GET("", reply("ok"))).Setup()

	assert.Equal(t, "revenue", serve(engine, http.MethodGet, "/api/v1/analytics/reports/revenue").Body.String())
	assert.Equal(t, "ok", serve(engine, http.MethodGet, "/api/v1/health").Body.String())
}
