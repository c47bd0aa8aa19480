package hubconsole

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/params"
	"go.uber.org/zap"
)

// Context carries one request through the middlewares and its handler.
type Context struct {
	ResponseWriter http.ResponseWriter
	Request        *http.Request
	RequestID      string
	IsWebsocket    bool

	params httprouter.Params
	values values
	log    *zap.Logger
}

func (c *Context) Set(k string, v interface{}) {
	c.values.set(k, v)
}

// Get returns the value a middleware stored under k, or nil.
func (c *Context) Get(k string) interface{} {
	v, _ := c.values.get(k)
	return v
}

func (c *Context) Del(k string) {
	c.values.del(k)
}

// Logger is the access logger annotated with the request ID.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Param returns the named path parameter.
func (c *Context) Param(name string) string {
	return c.params.ByName(name)
}

// Query parses the request query into a parameter set. Keys listed in
// numeric are read as numbers.
func (c *Context) Query(numeric ...string) params.Params {
	return params.Parse(c.Request.URL.RawQuery, numeric...)
}

// QueryStrict is Query reporting the numeric values that were dropped.
func (c *Context) QueryStrict(numeric ...string) (params.Params, error) {
	return params.ParseStrict(c.Request.URL.RawQuery, numeric...)
}

func (c *Context) Body() ([]byte, error) {
	return io.ReadAll(c.Request.Body)
}

func (c *Context) ParseBody(target interface{}) error {
	bts, err := c.Body()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(bts, target); err != nil {
		return &HTTPError{Code: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return nil
}

func (c *Context) Method() string {
	return c.Request.Method
}

func (c *Context) Header(key string) string {
	return c.Request.Header.Get(key)
}

func (c *Context) SetHeader(key string, value string) {
	c.ResponseWriter.Header().Set(key, value)
}

func (c *Context) Path() string {
	return c.Request.URL.Path
}

func (c *Context) URL() *url.URL {
	return c.Request.URL
}

func (c *Context) HasPrefix(prefix string) bool {
	return strings.HasPrefix(c.Request.URL.Path, prefix)
}

// IsStatic reports whether the last path segment has a file extension.
func (c *Context) IsStatic() bool {
	return path.Ext(path.Base(c.Request.URL.Path)) != ""
}

func (c *Context) String(str string) {
	fmt.Fprint(c.ResponseWriter, str)
}

func (c *Context) Status(statusCode int) {
	c.ResponseWriter.WriteHeader(statusCode)
}

func (c *Context) Json(data interface{}) error {
	return c.JsonStatus(http.StatusOK, data)
}

func (c *Context) JsonStatus(code int, data interface{}) error {
	jsoned, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding response")
	}

	c.SetHeader("Content-Type", "application/json")
	c.ResponseWriter.WriteHeader(code)
	_, err = c.ResponseWriter.Write(jsoned)
	return err
}

// Error writes err as a JSON error response.
func (c *Context) Error(err error) {
	if err == nil {
		return
	}

	var httpErr *HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}
	errorLevel(code, c.log)("request failed", zap.Error(err), zap.Int("status", code))
	writeError(c.ResponseWriter, err)
}

func (c *Context) HTTPError(code int, message string) {
	c.Error(&HTTPError{Code: code, Message: message})
}

func (c *Context) Redirect(url string, code int) {
	http.Redirect(c.ResponseWriter, c.Request, url, code)
}

// StatusCode is the status written so far, 0 before the first write.
func (c *Context) StatusCode() int {
	if sw, ok := c.ResponseWriter.(*statusWriter); ok {
		return sw.status
	}
	return 0
}
