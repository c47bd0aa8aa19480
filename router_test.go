package hubconsole

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sfi2k7/hubconsole/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareOrder(t *testing.T) {
	r := NewRouter(nil, nil)
	var trace []string
	r.Use(func(c *Context) bool { trace = append(trace, "root-use"); return true })
	r.Must(func(c *Context) bool { trace = append(trace, "root-must"); return true })

	g := r.Group("/v1")
	g.Use(func(c *Context) bool { trace = append(trace, "group-use"); return true })
	g.Must(func(c *Context) bool { trace = append(trace, "group-must"); return true })
	g.Get("/items/:id", func(c *Context) {
		trace = append(trace, "handler:"+c.Param("id"))
	})

	rec := do(t, r, http.MethodGet, "/v1/items/7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"root-use", "group-use", "handler:7", "group-must", "root-must"}, trace)
}

func TestMiddlewareStopsChain(t *testing.T) {
	r := NewRouter(nil, nil)
	mustRan := false
	r.Use(func(c *Context) bool {
		c.HTTPError(http.StatusUnauthorized, "login required")
		return false
	})
	r.Must(func(c *Context) bool { mustRan = true; return true })
	r.Get("/", func(c *Context) { t.Fatal("handler must not run") })

	rec := do(t, r, http.MethodGet, "/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"errors":[{"status":"401","title":"Unauthorized","detail":"login required"}]}`, rec.Body.String())
	assert.True(t, mustRan)
}

func TestRequestValues(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Use(func(c *Context) bool {
		c.Set("user", "admin")
		c.Set("tmp", 1)
		return true
	})
	r.Get("/", func(c *Context) {
		c.Del("tmp")
		user, ok := Value[string](c, "user")
		assert.True(t, ok)
		assert.Equal(t, "admin", user)

		_, ok = Value[int](c, "user")
		assert.False(t, ok, "wrong type")
		assert.Nil(t, c.Get("tmp"))
		c.String(user)
	})

	assert.Equal(t, "admin", do(t, r, http.MethodGet, "/").Body.String())
}

func TestGroupSkipMiddlewares(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Use(func(c *Context) bool { c.Status(http.StatusTeapot); return false })

	open := r.Group("/open")
	open.GroupOptions().SkipMiddlewares()
	open.Get("/", func(c *Context) { c.String("ok") })

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/open/").Code)
}

func TestRequestID(t *testing.T) {
	r := NewRouter(nil, nil)
	var seen string
	r.Get("/", func(c *Context) { seen = c.RequestID })

	rec := do(t, r, http.MethodGet, "/", api.RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(api.RequestIDHeader))

	rec = do(t, r, http.MethodGet, "/")
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))
	assert.Equal(t, seen, rec.Header().Get(api.RequestIDHeader))
}

func TestContextQuery(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Get("/images", func(c *Context) {
		p := c.Query("page", "page_size")
		_ = c.Json(map[string]interface{}{
			"page":  p.Int("page", 1),
			"query": p.Encode(),
		})
	})

	rec := do(t, r, http.MethodGet, "/images?page=3&tag=a&tag=b&page_size=oops")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"page":3,"query":"page=3&tag=a&tag=b"}`, rec.Body.String())
}

func TestQueryStrict(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Get("/", func(c *Context) {
		if _, err := c.QueryStrict("page"); err != nil {
			c.Error(&HTTPError{Code: http.StatusBadRequest, Message: "bad query", Err: err})
			return
		}
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodGet, "/?page=2").Code)
	rec := do(t, r, http.MethodGet, "/?page=two")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "page")
}

func TestParseBody(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Post("/echo", func(c *Context) {
		var in struct {
			Name string `json:"name"`
		}
		if err := c.ParseBody(&in); err != nil {
			c.Error(err)
			return
		}
		c.String(in.Name)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"community"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "community", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Get("/boom", func(c *Context) { panic("boom") })

	rec := do(t, r, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "Internal Server Error")
}

func TestNotFoundRunsMiddlewares(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Use(func(c *Context) bool { c.SetHeader("X-Seen", "yes"); return true })
	r.NotFound(func(c *Context) { c.HTTPError(http.StatusNotFound, "nope") })

	rec := do(t, r, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Seen"))

	assert.Panics(t, func() { r.Group("/g").NotFound(func(c *Context) {}) })
}

func TestMetricsObserveRoutes(t *testing.T) {
	m := NewMetrics()
	r := NewRouter(nil, m)
	r.Get("/items/:id", func(c *Context) {})
	r.Handle(http.MethodGet, "/metrics", m.Handler())

	do(t, r, http.MethodGet, "/items/1")
	do(t, r, http.MethodGet, "/items/2")

	rec := do(t, r, http.MethodGet, "/metrics")
	assert.Contains(t, rec.Body.String(), `hubconsole_http_requests_total{code="200",method="GET",route="/items/:id"} 2`)
}

func TestCORS(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Use(CORS(CORSConfig{
		AllowOrigins:  []string{"http://localhost:8002"},
		AllowMethods:  []string{"GET", "PUT"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        600,
	}))
	r.Get("/x", func(c *Context) { c.String("x") })
	r.Options("/x", func(c *Context) { t.Fatal("preflight must not reach the handler") })

	rec := do(t, r, http.MethodOptions, "/x",
		"Origin", "http://localhost:8002",
		"Access-Control-Request-Method", "PUT",
		"Access-Control-Request-Headers", "Content-Type")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8002", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PUT", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	rec = do(t, r, http.MethodGet, "/x", "Origin", "http://localhost:8002")
	assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))

	rec = do(t, r, http.MethodGet, "/x", "Origin", "http://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "x", rec.Body.String())
}
