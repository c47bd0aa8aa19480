package hubconsole

import (
	"net/http"
	"strconv"
	"strings"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// DefaultCORSConfig allows any origin, the way the development server
// answers the UI running on another port.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins:  []string{"*"},
	AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
	AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-CSRFToken"},
	ExposeHeaders: []string{"X-Request-ID"},
	MaxAge:        86400,
}

// CORS returns a middleware setting the CORS headers of cfg. Preflight
// requests are answered with 204 and stop the chain.
func CORS(cfg CORSConfig) Middleware {
	return func(c *Context) bool {
		origin := c.Header("Origin")
		if origin == "" {
			return true
		}

		allowOrigin := "*"
		if len(cfg.AllowOrigins) > 0 && cfg.AllowOrigins[0] != "*" {
			allowOrigin = ""
			for _, o := range cfg.AllowOrigins {
				if o == origin {
					allowOrigin = origin
					break
				}
			}
			if allowOrigin == "" {
				return true
			}
		}

		header := c.ResponseWriter.Header()
		header.Set("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			header.Add("Vary", "Origin")
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		preflight := c.Method() == http.MethodOptions && c.Header("Access-Control-Request-Method") != ""
		if !preflight {
			if len(cfg.ExposeHeaders) > 0 {
				header.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
			}
			return true
		}

		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		if len(cfg.AllowMethods) > 0 {
			header.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
		}
		if reqHeaders := c.Header("Access-Control-Request-Headers"); reqHeaders != "" {
			header.Set("Access-Control-Allow-Headers", reqHeaders)
		} else if len(cfg.AllowHeaders) > 0 {
			header.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
		}
		c.Status(http.StatusNoContent)
		return false
	}
}
