package hubconsole

import (
	"fmt"
	"net/http"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/logger"
	"go.uber.org/zap"
)

// Middleware runs before (Use) or after (Must) a handler. Returning false
// stops the chain.
type Middleware func(c *Context) bool
type Handler func(c *Context)

type groupoptions struct {
	skipmiddlewares bool
	skipmusts       bool
}

type Router struct {
	mux             *httprouter.Router
	prefix          string
	parent          *Router
	middlewares     []Middleware
	mustmiddlewares []Middleware
	gopt            *groupoptions
	log             *zap.Logger
	metrics         *Metrics
}

type GroupOptions struct {
	r *Router
}

// NewRouter creates a root router. Both log and m may be nil.
func NewRouter(log *zap.Logger, m *Metrics) *Router {
	mux := httprouter.New()
	mux.RedirectFixedPath = true

	r := &Router{
		mux:     mux,
		gopt:    &groupoptions{},
		log:     logger.OrNop(log),
		metrics: m,
	}
	mux.PanicHandler = func(w http.ResponseWriter, req *http.Request, v interface{}) {
		r.log.Error("panic serving request", zap.String("path", req.URL.Path), zap.Any("panic", v))
		writeError(w, &HTTPError{Code: http.StatusInternalServerError, Message: "Internal Server Error"})
	}
	return r
}

// GroupOptions allows you to set options for a group of routes.
func (r *Router) GroupOptions() *GroupOptions {
	if r.parent == nil {
		panic("Group Options can only be called on a group router")
	}

	return &GroupOptions{r: r}
}

// SkipMiddlewares skips the middlewares of the group and its parents.
func (g *GroupOptions) SkipMiddlewares() *GroupOptions {
	g.r.gopt.skipmiddlewares = true
	return g
}

// SkipMusts skips the must middlewares of the group.
func (g *GroupOptions) SkipMusts() *GroupOptions {
	g.r.gopt.skipmusts = true
	return g
}

// Group returns a router registering its routes below prefix.
func (r *Router) Group(prefix string) *Router {
	return &Router{
		mux:     r.mux,
		prefix:  path.Join(r.prefix, prefix),
		parent:  r,
		gopt:    &groupoptions{},
		log:     r.log,
		metrics: r.metrics,
	}
}

func (r *Router) Get(pattern string, fn Handler) {
	r.add(http.MethodGet, pattern, fn)
}

func (r *Router) Post(pattern string, fn Handler) {
	r.add(http.MethodPost, pattern, fn)
}

func (r *Router) Put(pattern string, fn Handler) {
	r.add(http.MethodPut, pattern, fn)
}

func (r *Router) Delete(pattern string, fn Handler) {
	r.add(http.MethodDelete, pattern, fn)
}

func (r *Router) Patch(pattern string, fn Handler) {
	r.add(http.MethodPatch, pattern, fn)
}

func (r *Router) Options(pattern string, fn Handler) {
	r.add(http.MethodOptions, pattern, fn)
}

// Handle mounts a plain http.Handler behind the router middlewares.
func (r *Router) Handle(method, pattern string, h http.Handler) {
	r.add(method, pattern, func(c *Context) {
		h.ServeHTTP(c.ResponseWriter, c.Request)
	})
}

// Any mounts h for every method a proxied API can receive.
func (r *Router) Any(pattern string, h http.Handler) {
	for _, m := range []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	} {
		r.Handle(m, pattern, h)
	}
}

// NotFound handles every request no route matches.
func (r *Router) NotFound(fn Handler) {
	if r.parent != nil {
		panic("NotFound can only be set on the root router")
	}
	h := r.middleware("not_found", fn)
	r.mux.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h(w, req, nil)
	})
}

// Use adds a middleware run before the handler.
func (r *Router) Use(fn Middleware) {
	r.middlewares = append(r.middlewares, fn)
}

// Must adds a middleware run after the handler, even when a Use
// middleware stopped the chain.
func (r *Router) Must(fn Middleware) {
	r.mustmiddlewares = append(r.mustmiddlewares, fn)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) add(method, pattern string, fn Handler) {
	full := path.Join(r.prefix, pattern)
	if strings.HasSuffix(pattern, "/") && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	r.mux.Handle(method, full, r.middleware(full, fn))
}

func (r *Router) runMust(c *Context) {
	// Bottom up: parent musts run last.
	if !r.gopt.skipmusts {
		for _, middle := range r.mustmiddlewares {
			if !middle(c) {
				break
			}
		}
	}

	if r.parent != nil {
		r.parent.runMust(c)
	}
}

func (r *Router) runMiddlewares(c *Context) bool {
	if r.gopt.skipmiddlewares {
		return true
	}

	if r.parent != nil {
		if !r.parent.runMiddlewares(c) {
			return false
		}
	}

	for _, middle := range r.middlewares {
		if !middle(c) {
			return false
		}
	}

	return true
}

// middleware wraps fn with the context setup, the middleware chains,
// panic recovery and the access log.
func (r *Router) middleware(route string, fn Handler) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, p httprouter.Params) {
		start := time.Now()

		id := req.Header.Get(api.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		sw := &statusWriter{ResponseWriter: w}
		sw.Header().Set(api.RequestIDHeader, id)

		c := &Context{
			ResponseWriter: sw,
			Request:        req,
			RequestID:      id,
			IsWebsocket:    strings.EqualFold(req.Header.Get("Upgrade"), "websocket"),
			params:         p,
			log:            r.log.With(zap.String("request_id", id)),
		}

		defer func() {
			if v := recover(); v != nil {
				c.log.Error("panic serving request",
					zap.String("path", req.URL.Path),
					zap.String("panic", fmt.Sprint(v)),
					zap.ByteString("stack", debug.Stack()))
				if sw.status == 0 {
					writeError(sw, &HTTPError{Code: http.StatusInternalServerError, Message: "Internal Server Error"})
				}
			}

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			r.metrics.observe(route, req.Method, status, elapsed)
			c.log.Debug("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("size", sw.size),
				zap.Duration("elapsed", elapsed))
		}()

		if r.runMiddlewares(c) {
			fn(c)
		}
		r.runMust(c)
	}
}
